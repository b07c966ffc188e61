package handlers

import (
	"errors"
	"net/http"

	"rpsserver/game"
	"rpsserver/middlewares"
	"rpsserver/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError はエラー分類をHTTPステータスへ写像してレスポンスします。
// 認証 401 / 検証 400 / 状態矛盾 409 / 不在 404 / その他 500。
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var validationErr *game.ValidationError
	var stateErr *game.StateError
	switch {
	case errors.Is(err, game.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"status": "unauthenticated", "error": "認証に失敗しました"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"status": "validation_error", "error": validationErr.Error()})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"status": "state_conflict", "error": stateErr.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "not_found", "error": err.Error()})
	default:
		logger.Error("Internal error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": "internal_error", "error": "内部エラーが発生しました"})
	}
}

// requireEmail はトークンから認証済みメールアドレスを取り出します。
// 失敗時はレスポンス済みなので呼び出し側はそのままreturnしてください。
func requireEmail(c *gin.Context, logger *zap.Logger) (string, bool) {
	email, err := middlewares.GetEmailFromToken(c, logger)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "unauthenticated", "error": "認証に失敗しました"})
		return "", false
	}
	return email, true
}
