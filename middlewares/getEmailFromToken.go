package middlewares

import (
	"fmt"
	"strings"

	"rpsserver/auth"
	"rpsserver/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetEmailFromToken はリクエストのJWTトークンを解析し、
// 認証済みゲーマーのメールアドレスを返します。
func GetEmailFromToken(c *gin.Context, logger *zap.Logger) (string, error) {
	tokenString := c.GetHeader("Authorization")

	// Bearerトークンのプレフィックスを確認し、存在する場合は削除
	if strings.HasPrefix(tokenString, "Bearer ") {
		tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	}

	if tokenString == "" {
		return "", fmt.Errorf("token is required")
	}

	return ParseTokenEmail(tokenString, logger)
}

// ParseTokenEmail はトークン文字列からメールアドレスを取り出します。
// Websocket接続のようにヘッダー以外からトークンが来る経路と共用します。
func ParseTokenEmail(tokenString string, logger *zap.Logger) (string, error) {
	claims := &models.MyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return auth.JwtKey, nil
	})
	if err != nil {
		logger.Error("Failed to parse JWT token", zap.Error(err))
		return "", err
	}
	if !token.Valid || claims.Email == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Email, nil
}
