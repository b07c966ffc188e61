package handlers

import (
	"net/http"

	"rpsserver/game"
	"rpsserver/models"
	"rpsserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GamerInfoHandler は認証済みゲーマーのプロフィールを返します。
func GamerInfoHandler(c *gin.Context, st store.Store, logger *zap.Logger) {
	email, ok := requireEmail(c, logger)
	if !ok {
		return
	}

	gamer, err := game.GetGamerInfo(c.Request.Context(), st, logger, email)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "gamer": gamer})
}

// UpdateGamerNameHandler は表示名を変更します。
func UpdateGamerNameHandler(c *gin.Context, st store.Store, logger *zap.Logger) {
	email, ok := requireEmail(c, logger)
	if !ok {
		return
	}

	var request models.UpdateNameRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"status": "validation_error", "error": "Request binding error"})
		return
	}

	if err := game.UpdateGamerName(c.Request.Context(), st, logger, email, request.Name); err != nil {
		respondError(c, logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}
