package handlers

import (
	"log"
	"net/http"

	"github.com/Mojelloul/doqcm/internal/services"
	"github.com/Mojelloul/doqcm/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	hub             *ws.Hub
	authService     *services.AuthService
	documentService *services.DocumentService
}

func NewWSHandler(hub *ws.Hub, authService *services.AuthService, documentService *services.DocumentService) *WSHandler {
	return &WSHandler{hub: hub, authService: authService, documentService: documentService}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleResults godoc
// @Summary      Live results for an owned document
// @Description  WebSocket pushing score_submitted events as recipients finish the quiz
// @Tags         websocket
// @Param        id path string true "Document ID"
// @Param        token query string true "JWT token"
// @Router       /ws/documents/{id}/results [get]
func (h *WSHandler) HandleResults(c *gin.Context) {
	documentID := c.Param("id")

	// Browsers cannot set an Authorization header on a ws handshake, so the
	// token travels as a query parameter.
	userID, err := h.authService.ValidateToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid or expired token"})
		return
	}

	if !h.documentService.OwnsDocument(userID, documentID) {
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "you do not own this document"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	h.hub.AddConnection(documentID, conn)
	defer h.hub.RemoveConnection(documentID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
