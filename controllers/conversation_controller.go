package controllers

import (
	"net/http"

	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConversationController serves the bot's conversation log.
type ConversationController struct {
	Conversations repository.ConversationRepository
	Logger        *zap.Logger
}

// GetConversations returns the 50 most recent exchanges.
func (ctrl *ConversationController) GetConversations(c *gin.Context) {
	convs, err := ctrl.Conversations.FindRecent(c.Request.Context(), 50)
	if err != nil {
		ctrl.Logger.Error("Failed to fetch conversations", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao listar conversas"})
		return
	}
	if convs == nil {
		convs = []models.Conversation{}
	}
	c.JSON(http.StatusOK, convs)
}
