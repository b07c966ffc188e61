package handlers

import (
	"net/http"

	"rpsserver/middlewares"
	"rpsserver/models"
	"rpsserver/notify"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WsHandler はルームイベント配信用のWebsocket接続を受け付けます。
// 接続時は token + roomId、再接続時は sessionId のどちらかで認証します。
func WsHandler(c *gin.Context, rdb *redis.Client, hub *notify.Hub, upgrader websocket.Upgrader, logger *zap.Logger) {
	ctx := c.Request.Context()

	var email, roomID string
	if sessionID := c.Query("sessionId"); sessionID != "" {
		session := middlewares.ValidateSessionID(ctx, rdb, sessionID, logger)
		if session == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "unauthenticated", "error": "セッションが無効です"})
			return
		}
		email, roomID = session.Email, session.RoomID
	} else {
		parsed, err := middlewares.ParseTokenEmail(c.Query("token"), logger)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"status": "unauthenticated", "error": "認証に失敗しました"})
			return
		}
		email = parsed
		roomID = c.Query("roomId")
		if roomID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"status": "validation_error", "error": "roomId: must not be empty"})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Websocket接続のアップグレードに失敗しました", zap.Error(err))
		return
	}

	client := &models.Client{Conn: conn, Email: email, RoomID: roomID}
	hub.Register(client)

	// 再接続用のセッションIDを最初のメッセージとして返す
	sessionID, err := middlewares.GenerateAndStoreSessionID(ctx, rdb, middlewares.WsSession{Email: email, RoomID: roomID}, logger)
	if err == nil {
		if err := conn.WriteJSON(gin.H{"type": "session", "sessionId": sessionID}); err != nil {
			logger.Error("セッションIDの送信に失敗しました", zap.Error(err))
		}
	}

	// 読み取りループは切断検知のためだけに回す
	go func() {
		defer func() {
			hub.Unregister(client)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				logger.Info("Websocket接続が閉じられました", zap.String("email", email), zap.String("roomId", roomID))
				return
			}
		}
	}()
}
