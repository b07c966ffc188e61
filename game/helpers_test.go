package game

import (
	"context"
	"testing"

	"rpsserver/models"
	"rpsserver/store"

	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// setupRoom はゲーマー作成→ルーム作成→全員参加までを済ませたルームを返します。
// 最初に参加した emails[0] がルームマスターになります。
func setupRoom(t *testing.T, st store.Store, key string, value int, emails ...string) *models.Room {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()

	for _, email := range emails {
		if _, err := CreateGamerOnFirstAuth(ctx, st, logger, email); err != nil {
			t.Fatalf("create gamer %s: %v", email, err)
		}
	}

	room, err := CreateRoom(ctx, st, logger, emails[0], models.CreateRoomRequest{
		RoomName:           "test room",
		GameConditionKey:   key,
		GameConditionValue: value,
		LoserAward:         "nothing",
		WinnerAward:        "glory",
	})
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	for _, email := range emails {
		if err := JoinGameRoom(ctx, st, logger, email, room.RoomID); err != nil {
			t.Fatalf("join %s: %v", email, err)
		}
	}
	return room
}

func getRoom(t *testing.T, st store.Store, roomID string) *models.Room {
	t.Helper()
	var room models.Room
	if err := st.Get(context.Background(), colRooms, roomID, &room); err != nil {
		t.Fatalf("get room %s: %v", roomID, err)
	}
	return &room
}

func getRoomGamer(t *testing.T, st store.Store, roomID, email string) *models.RoomGamer {
	t.Helper()
	var entry models.RoomGamer
	if err := st.Get(context.Background(), roomGamersCol(roomID), email, &entry); err != nil {
		t.Fatalf("get roster entry %s: %v", email, err)
	}
	return &entry
}

func getGamer(t *testing.T, st store.Store, email string) *models.Gamer {
	t.Helper()
	var gamer models.Gamer
	if err := st.Get(context.Background(), colGamers, email, &gamer); err != nil {
		t.Fatalf("get gamer %s: %v", email, err)
	}
	return &gamer
}

// readyAll は全員分の手を提出します。
func readyAll(t *testing.T, st store.Store, roomID string, chooses map[string]string) {
	t.Helper()
	ctx := context.Background()
	logger := testLogger()
	for email, choose := range chooses {
		if _, err := GameReady(ctx, st, logger, email, roomID, choose); err != nil {
			t.Fatalf("ready %s: %v", email, err)
		}
	}
}
