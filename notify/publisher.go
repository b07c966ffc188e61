// Package notify はルームで起きた出来事をRedisのpub/sub経由で
// Websocketクライアントへ配信します。ゲームロジックの成否には影響させず、
// 配信失敗はログに記録するだけです。
package notify

import (
	"context"
	"encoding/json"

	"rpsserver/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RoomEventsChannel はルームイベントを流すRedisチャンネル名です。
const RoomEventsChannel = "room-events"

// Publisher はルームイベントの発行側です。
type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewPublisher(rdb *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{rdb: rdb, logger: logger}
}

// PublishRoomEvent はイベントをRedisへ発行します。
func (p *Publisher) PublishRoomEvent(ctx context.Context, event models.RoomEvent) {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("ルームイベントのエンコードに失敗しました", zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, RoomEventsChannel, eventJSON).Err(); err != nil {
		p.logger.Error("ルームイベントの発行に失敗しました",
			zap.String("roomId", event.RoomID),
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}
