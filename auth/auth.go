package auth

import (
	"os"

	"rpsserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// JwtKey はトークンの署名鍵です。本番環境では必ず環境変数 JWT_KEY を設定してください。
var JwtKey = loadJwtKey()

func loadJwtKey() []byte {
	if key := os.Getenv("JWT_KEY"); key != "" {
		return []byte(key)
	}
	return []byte("rpsserver-dev-key")
}

// IsValidToken はトークン文字列の有効性だけを確認します。
func IsValidToken(tokenString string) (bool, error) {
	claims := &models.MyClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})

	if err != nil {
		return false, err
	}

	return token.Valid, nil
}
