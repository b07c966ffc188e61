package game

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"rpsserver/models"
	"rpsserver/store"

	"go.uber.org/zap"
)

// SweepStaleRooms は指定状態のまま olderThan を超えて放置されたルームを
// 名簿・手・所属参照ごと片付けます。削除したルーム数を返します。
// 定期クリーンナップのジョブから呼ばれます。
func SweepStaleRooms(ctx context.Context, st store.Store, logger *zap.Logger, state string, olderThan time.Duration) int {
	docs, err := st.List(ctx, colRooms, store.ListOptions{})
	if err != nil {
		logger.Error("クリーンナップ対象の取得に失敗しました", zap.Error(err))
		return 0
	}

	cutoff := time.Now().Add(-olderThan).Unix()
	deleted := 0
	for _, doc := range docs {
		var room models.Room
		if err := json.Unmarshal(doc.Data, &room); err != nil {
			logger.Error("ルームドキュメントの解析に失敗しました", zap.String("roomId", doc.ID), zap.Error(err))
			continue
		}
		if room.State != state || room.Timestamp > cutoff {
			continue
		}
		if err := deleteRoomCascade(ctx, st, room.RoomID); err != nil {
			logger.Error("ルームの削除に失敗しました", zap.String("roomId", room.RoomID), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted
}

// deleteRoomCascade はルームと配下のドキュメント、メンバーの所属参照を
// 1トランザクションで削除します。
func deleteRoomCascade(ctx context.Context, st store.Store, roomID string) error {
	return st.RunTransaction(ctx, func(tx store.Tx) error {
		roster, err := tx.List(ctx, roomGamersCol(roomID), store.ListOptions{})
		if err != nil {
			return err
		}
		for _, member := range roster {
			var gamer models.Gamer
			err := tx.Get(ctx, colGamers, member.ID, &gamer)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			if err == nil && gamer.JoinedRoomID == roomID {
				if err := tx.Update(colGamers, member.ID, map[string]interface{}{"joinedRoomId": ""}); err != nil {
					return err
				}
			}
			tx.Delete(roomGamersCol(roomID), member.ID)
			tx.Delete(roomChoosesCol(roomID), member.ID)
		}
		tx.Delete(colRooms, roomID)
		return nil
	})
}
