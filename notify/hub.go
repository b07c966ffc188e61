package notify

import (
	"context"
	"encoding/json"
	"sync"

	"rpsserver/models"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Hub は接続中のWebsocketクライアントを保持し、Redisから届いた
// ルームイベントを該当ルームの監視クライアントへ転送します。
type Hub struct {
	mu      sync.Mutex
	clients map[*models.Client]bool
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHub(rdb *redis.Client, logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*models.Client]bool),
		rdb:     rdb,
		logger:  logger,
	}
}

// Register はクライアントを配信対象に加えます。
func (h *Hub) Register(client *models.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
}

// Unregister はクライアントを配信対象から外します。接続は呼び出し側が閉じます。
func (h *Hub) Unregister(client *models.Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, client)
}

// Run はRedisのルームイベントチャンネルを購読し続けます。
// ctx のキャンセルで購読を終了します。ゴルーチンで起動してください。
func (h *Hub) Run(ctx context.Context) {
	sub := h.rdb.Subscribe(ctx, RoomEventsChannel)
	defer sub.Close()
	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var event models.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				h.logger.Error("ルームイベントの解析に失敗しました", zap.Error(err))
				continue
			}
			h.broadcast(event, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(event models.RoomEvent, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if client.RoomID != event.RoomID {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Error("ルームイベントの配信に失敗しました",
				zap.String("email", client.Email),
				zap.String("roomId", client.RoomID),
				zap.Error(err),
			)
			client.Conn.Close()
			delete(h.clients, client)
		}
	}
}
