package handlers

import (
	"net/http"
	"strings"

	"rpsserver/game"
	"rpsserver/middlewares"
	"rpsserver/models"
	"rpsserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenHandler はJWTトークンを発行するハンドラです。
// 初回の発行時にはゲーマープロフィールも作成します（2回目以降は既存を返す）。
func TokenHandler(c *gin.Context, st store.Store, logger *zap.Logger) {
	var request models.TokenRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Request binding error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"status": "validation_error", "error": "Request binding error"})
		return
	}

	email := strings.TrimSpace(request.Email)
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "validation_error", "error": "email: must not be empty"})
		return
	}

	gamer, err := game.CreateGamerOnFirstAuth(c.Request.Context(), st, logger, email)
	if err != nil {
		respondError(c, logger, err)
		return
	}

	token, err := middlewares.GenerateToken(email)
	if err != nil {
		logger.Error("Token generation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "internal_error", "error": "トークンの発行に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"token":  token,
		"gamer":  gamer,
	})
}
