package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Mojelloul/doqcm/internal/services"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// Export godoc
// @Summary      Export account data
// @Description  JSON dump of the user's account, documents, shares and quizzes
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} services.AccountExport
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/account/export [get]
func (h *AccountHandler) Export(c *gin.Context) {
	userID := c.GetString("user_id")

	export, err := h.accountService.ExportData(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("mes-donnees-doqcm-%s.json", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(http.StatusOK, export)
}

// Delete godoc
// @Summary      Delete the account
// @Description  Cascading delete of owned documents, the user's shares and the account itself
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} MessageResponse
// @Failure      401 {object} ErrorResponse
// @Router       /api/v1/account [delete]
func (h *AccountHandler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")

	if err := h.accountService.DeleteAccount(userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "account deleted"})
}
