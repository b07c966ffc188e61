package middlewares

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WsSession はWebsocket再接続用のセッション情報です。Redisに保持します。
type WsSession struct {
	Email  string `json:"email"`
	RoomID string `json:"roomId"`
}

// GenerateAndStoreSessionID はセッション情報をRedisへ保存し、セッションIDを返します。
func GenerateAndStoreSessionID(ctx context.Context, rdb *redis.Client, session WsSession, logger *zap.Logger) (string, error) {
	sessionID := uuid.NewString()

	sessionJSON, err := json.Marshal(session)
	if err != nil {
		logger.Error("Error encoding session info", zap.Error(err))
		return "", err
	}

	// 24時間の有効期限
	if err := rdb.Set(ctx, "session:"+sessionID, sessionJSON, 24*time.Hour).Err(); err != nil {
		logger.Error("Error storing session info in Redis", zap.Error(err))
		return "", err
	}
	return sessionID, nil
}

// ValidateSessionID はRedis上のセッション情報を検証して返します。
// 無効・期限切れの場合は nil を返します。
func ValidateSessionID(ctx context.Context, rdb *redis.Client, sessionID string, logger *zap.Logger) *WsSession {
	if sessionID == "" {
		return nil
	}

	sessionJSON, err := rdb.Get(ctx, "session:"+sessionID).Result()
	if err != nil {
		logger.Error("Failed to retrieve session info", zap.String("sessionId", sessionID), zap.Error(err))
		return nil
	}

	var session WsSession
	if err := json.Unmarshal([]byte(sessionJSON), &session); err != nil {
		logger.Error("Failed to decode session info", zap.Error(err))
		return nil
	}
	if session.Email == "" || session.RoomID == "" {
		logger.Error("Invalid session info", zap.String("sessionId", sessionID))
		return nil
	}
	return &session
}
