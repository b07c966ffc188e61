package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rpsserver/models"
	"rpsserver/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListWaitingRooms は待機中のルーム一覧を作成時刻の新しい順に返します。
// 各ルームの現在の参加人数も名簿コレクションを読んで付加します。
func ListWaitingRooms(ctx context.Context, st store.Store, logger *zap.Logger) ([]models.RoomSummary, error) {
	docs, err := st.List(ctx, colRooms, store.ListOptions{OrderBy: "timestamp", Descending: true})
	if err != nil {
		logger.Error("ルーム一覧の取得に失敗しました", zap.Error(err))
		return nil, err
	}

	summaries := make([]models.RoomSummary, 0, len(docs))
	for _, doc := range docs {
		var room models.Room
		if err := json.Unmarshal(doc.Data, &room); err != nil {
			logger.Error("ルームドキュメントの解析に失敗しました", zap.String("roomId", doc.ID), zap.Error(err))
			return nil, err
		}
		if room.State != models.RoomStateWaiting {
			continue
		}
		roster, err := st.List(ctx, roomGamersCol(room.RoomID), store.ListOptions{})
		if err != nil {
			logger.Error("名簿の取得に失敗しました", zap.String("roomId", room.RoomID), zap.Error(err))
			return nil, err
		}
		summaries = append(summaries, models.RoomSummary{Room: room, GamerCount: len(roster)})
	}
	return summaries, nil
}

// CreateRoom は新しいルームを作成します。作成者は自動では名簿に入りません。
// 参加は JoinGameRoom による明示的な操作です。
func CreateRoom(ctx context.Context, st store.Store, logger *zap.Logger, email string, req models.CreateRoomRequest) (*models.Room, error) {
	if email == "" {
		return nil, ErrUnauthenticated
	}
	if req.RoomName == "" {
		return nil, &ValidationError{Field: "roomName", Reason: "must not be empty"}
	}
	if ParseCondition(req.GameConditionKey) == ConditionUnknown {
		return nil, &ValidationError{Field: "gameConditionKey", Reason: "unknown game condition"}
	}
	if req.GameConditionValue < 1 {
		return nil, &ValidationError{Field: "gameConditionValue", Reason: "must be 1 or greater"}
	}
	if req.LoserAward == "" {
		return nil, &ValidationError{Field: "loserAward", Reason: "must not be empty"}
	}
	if req.WinnerAward == "" {
		return nil, &ValidationError{Field: "winnerAward", Reason: "must not be empty"}
	}

	room := models.Room{
		RoomID:             uuid.NewString(),
		RoomName:           req.RoomName,
		GameConditionKey:   req.GameConditionKey,
		GameConditionValue: req.GameConditionValue,
		LoserAward:         req.LoserAward,
		WinnerAward:        req.WinnerAward,
		Winners:            []string{},
		Timestamp:          time.Now().Unix(),
		RoomMaster:         "",
		State:              models.RoomStateWaiting,
	}
	err := st.RunTransaction(ctx, func(tx store.Tx) error {
		return tx.Set(colRooms, room.RoomID, &room)
	})
	if err != nil {
		logger.Error("ルームの作成に失敗しました", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	logger.Info("ルームを作成しました", zap.String("roomId", room.RoomID), zap.String("email", email))
	return &room, nil
}

// JoinGameRoom はゲーマーをルームの名簿に加えます。
// 同じルームへの再参加はべき等に成功し、別ルーム所属中の参加は拒否します。
// 名簿エントリと手ドキュメントの作成、マスター未定時の就任までを
// 1つのコミットで行います。
func JoinGameRoom(ctx context.Context, st store.Store, logger *zap.Logger, email, roomID string) error {
	if email == "" {
		return ErrUnauthenticated
	}
	if roomID == "" {
		return &ValidationError{Field: "roomId", Reason: "must not be empty"}
	}

	err := st.RunTransaction(ctx, func(tx store.Tx) error {
		var room models.Room
		if err := tx.Get(ctx, colRooms, roomID, &room); err != nil {
			return fmt.Errorf("room %s: %w", roomID, err)
		}
		var gamer models.Gamer
		if err := tx.Get(ctx, colGamers, email, &gamer); err != nil {
			return fmt.Errorf("gamer %s: %w", email, err)
		}
		if room.State != models.RoomStateWaiting {
			return &StateError{Reason: "room is not accepting gamers"}
		}
		if gamer.JoinedRoomID == roomID {
			// 再試行はそのまま成功扱い
			return nil
		}
		if gamer.JoinedRoomID != "" {
			return &StateError{Reason: "already joined another room"}
		}

		if room.RoomMaster == "" {
			if err := tx.Update(colRooms, roomID, map[string]interface{}{"roomMaster": email}); err != nil {
				return err
			}
		}
		if err := tx.Update(colGamers, email, map[string]interface{}{"joinedRoomId": roomID}); err != nil {
			return err
		}
		entry := models.RoomGamer{Name: gamer.Name, Result: models.ResultGaming}
		if err := tx.Set(roomGamersCol(roomID), email, &entry); err != nil {
			return err
		}
		return tx.Set(roomChoosesCol(roomID), email, &models.RoomGamerChoose{})
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !isDomainError(err) {
			logger.Error("ルーム参加に失敗しました", zap.String("roomId", roomID), zap.String("email", email), zap.Error(err))
		}
		return err
	}
	logger.Info("ルームに参加しました", zap.String("roomId", roomID), zap.String("email", email))
	return nil
}

// LeaveGameRoom はゲーマーをルームの名簿から外します。
// 最後の1人が抜けた場合はルームごと削除し、マスターが抜けた場合は
// 残りのメンバーの先頭へマスターを引き継ぎます。対戦進行中は退室できません。
func LeaveGameRoom(ctx context.Context, st store.Store, logger *zap.Logger, email, roomID string) error {
	if email == "" {
		return ErrUnauthenticated
	}
	if roomID == "" {
		return &ValidationError{Field: "roomId", Reason: "must not be empty"}
	}

	err := st.RunTransaction(ctx, func(tx store.Tx) error {
		var room models.Room
		if err := tx.Get(ctx, colRooms, roomID, &room); err != nil {
			return fmt.Errorf("room %s: %w", roomID, err)
		}
		var gamer models.Gamer
		if err := tx.Get(ctx, colGamers, email, &gamer); err != nil {
			return fmt.Errorf("gamer %s: %w", email, err)
		}
		if room.State == models.RoomStateStart {
			return &StateError{Reason: "cannot leave while a match is in progress"}
		}
		if gamer.JoinedRoomID != roomID {
			return &StateError{Reason: "not a member of this room"}
		}
		roster, err := tx.List(ctx, roomGamersCol(roomID), store.ListOptions{})
		if err != nil {
			return err
		}

		if err := tx.Update(colGamers, email, map[string]interface{}{"joinedRoomId": ""}); err != nil {
			return err
		}
		tx.Delete(roomGamersCol(roomID), email)
		tx.Delete(roomChoosesCol(roomID), email)

		if len(roster) <= 1 {
			// 空になったルームは存在させない
			tx.Delete(colRooms, roomID)
			return nil
		}
		if room.RoomMaster == email {
			for _, doc := range roster {
				if doc.ID != email {
					return tx.Update(colRooms, roomID, map[string]interface{}{"roomMaster": doc.ID})
				}
			}
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) && !isDomainError(err) {
			logger.Error("ルーム退室に失敗しました", zap.String("roomId", roomID), zap.String("email", email), zap.Error(err))
		}
		return err
	}
	logger.Info("ルームから退室しました", zap.String("roomId", roomID), zap.String("email", email))
	return nil
}

func isDomainError(err error) bool {
	var ve *ValidationError
	var se *StateError
	return errors.As(err, &ve) || errors.As(err, &se) || errors.Is(err, ErrUnauthenticated)
}
