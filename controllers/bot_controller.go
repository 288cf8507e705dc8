package controllers

import (
	"errors"
	"net/http"

	"github.com/Majorzinnn/botDC/models"
	"github.com/Majorzinnn/botDC/repository"
	"github.com/Majorzinnn/botDC/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// BotController manages the bot worker lifecycle and per-guild settings.
type BotController struct {
	Manager *services.BotManager
	Configs repository.BotConfigRepository
	Logger  *zap.Logger
}

// GetStatus reports whether the bot worker is running.
func (ctrl *BotController) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": ctrl.Manager.Running()})
}

// Start launches the bot worker. Starting a running worker is a no-op.
func (ctrl *BotController) Start(c *gin.Context) {
	if ctrl.Manager.Start() {
		c.JSON(http.StatusOK, gin.H{"message": "Bot iniciando..."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bot já está rodando"})
}

// Stop shuts the bot worker down. Stopping a stopped worker is a no-op.
func (ctrl *BotController) Stop(c *gin.Context) {
	if ctrl.Manager.Stop() {
		c.JSON(http.StatusOK, gin.H{"message": "Bot desligado com sucesso"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bot já está desligado"})
}

// GetConfig returns the stored configuration for a guild.
func (ctrl *BotController) GetConfig(c *gin.Context) {
	guildID := c.Param("guild_id")

	cfg, err := ctrl.Configs.FindByGuildID(c.Request.Context(), guildID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Configuração não encontrada"})
			return
		}
		ctrl.Logger.Error("Failed to fetch bot config", zap.String("guild_id", guildID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao buscar configuração"})
		return
	}

	c.JSON(http.StatusOK, cfg)
}

// UpdateConfig upserts guild configuration; only provided fields change.
func (ctrl *BotController) UpdateConfig(c *gin.Context) {
	guildID := c.Param("guild_id")

	var req models.BotConfigUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	updates := bson.M{}
	if req.AIChannelID != nil {
		updates["ai_channel_id"] = *req.AIChannelID
	}
	if req.ShopChannelID != nil {
		updates["shop_channel_id"] = *req.ShopChannelID
	}
	if req.WelcomeMessage != nil {
		updates["welcome_message"] = *req.WelcomeMessage
	}
	if req.AIEnabled != nil {
		updates["ai_enabled"] = *req.AIEnabled
	}
	if req.ShopEnabled != nil {
		updates["shop_enabled"] = *req.ShopEnabled
	}

	if err := ctrl.Configs.Upsert(c.Request.Context(), guildID, updates); err != nil {
		ctrl.Logger.Error("Failed to update bot config", zap.String("guild_id", guildID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao atualizar configuração"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Configuração atualizada"})
}
