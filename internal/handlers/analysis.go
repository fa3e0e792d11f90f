package handlers

import (
	"net/http"

	"github.com/Mojelloul/doqcm/internal/services"

	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	analysisService *services.AnalysisService
}

func NewAnalysisHandler(analysisService *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

type AnalysisRequest struct {
	Title      string   `json:"title" binding:"required" example:"Les fondamentaux du droit du travail"`
	Text       string   `json:"text" binding:"required" example:"Le contrat de travail est une convention par laquelle..."`
	Summary    string   `json:"summary" example:"Rappel des notions essentielles"`
	Recipients []string `json:"recipients" binding:"required" example:"paul@example.com"`
	Consent    bool     `json:"consent" example:"true"`
}

// Analyze godoc
// @Summary      Analyze a text and distribute its quiz
// @Description  Generate an MCQ from the submitted text and share it with the recipients
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body AnalysisRequest true "Document and recipients"
// @Success      201 {object} services.AnalysisResult
// @Failure      400 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /api/v1/analysis [post]
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	userID := c.GetString("user_id")

	var req AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	result, err := h.analysisService.Analyze(c.Request.Context(), userID, services.AnalysisInput{
		Title:      req.Title,
		Text:       req.Text,
		Summary:    req.Summary,
		Recipients: req.Recipients,
		Consent:    req.Consent,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
