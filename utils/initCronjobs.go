package utils

import (
	"context"
	"time"

	"rpsserver/game"
	"rpsserver/models"
	"rpsserver/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CronCleaner は放置されたルームの定期クリーンナップを起動します。
func CronCleaner(st store.Store, logger *zap.Logger) {
	c := cron.New()

	// 24時間動きのない待機ルームを削除するジョブ（毎日実行）
	c.AddFunc("@daily", func() {
		logger.Info("待機ルームのクリーンナップを開始")
		deleted := game.SweepStaleRooms(context.Background(), st, logger, models.RoomStateWaiting, 24*time.Hour)
		logger.Info("待機ルームのクリーンナップ完了", zap.Int("rooms_deleted", deleted))
	})

	// 終了から48時間経過したルームを削除するジョブ（"分 時 日 月 曜日"）
	c.AddFunc("0 3 * * *", func() {
		logger.Info("終了済みルームのクリーンナップを開始")
		deleted := game.SweepStaleRooms(context.Background(), st, logger, models.RoomStateEnd, 48*time.Hour)
		logger.Info("終了済みルームのクリーンナップ完了", zap.Int("rooms_deleted", deleted))
	})

	c.Start()
}
