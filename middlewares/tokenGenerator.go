package middlewares

import (
	"time"

	"rpsserver/auth"
	"rpsserver/models"

	jwt "github.com/dgrijalva/jwt-go"
)

const tokenLifetime = 72 * time.Hour

// GenerateToken はゲーマーのメールアドレスを内包したJWTトークンを発行します。
func GenerateToken(email string) (string, error) {
	claims := &models.MyClaims{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenLifetime).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(auth.JwtKey)
}
