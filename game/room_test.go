package game

import (
	"context"
	"errors"
	"testing"

	"rpsserver/models"
	"rpsserver/store"
)

func TestCreateRoomValidation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	logger := testLogger()
	if _, err := CreateGamerOnFirstAuth(ctx, st, logger, "alice@example.com"); err != nil {
		t.Fatalf("create gamer: %v", err)
	}

	base := models.CreateRoomRequest{
		RoomName:           "room",
		GameConditionKey:   models.ConditionScoreToWin,
		GameConditionValue: 3,
		LoserAward:         "nothing",
		WinnerAward:        "glory",
	}

	tests := []struct {
		name      string
		mutate    func(*models.CreateRoomRequest)
		wantField string
	}{
		{name: "empty room name", mutate: func(r *models.CreateRoomRequest) { r.RoomName = "" }, wantField: "roomName"},
		{name: "unknown condition", mutate: func(r *models.CreateRoomRequest) { r.GameConditionKey = "best-dressed" }, wantField: "gameConditionKey"},
		{name: "zero condition value", mutate: func(r *models.CreateRoomRequest) { r.GameConditionValue = 0 }, wantField: "gameConditionValue"},
		{name: "empty loser award", mutate: func(r *models.CreateRoomRequest) { r.LoserAward = "" }, wantField: "loserAward"},
		{name: "empty winner award", mutate: func(r *models.CreateRoomRequest) { r.WinnerAward = "" }, wantField: "winnerAward"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := CreateRoom(ctx, st, logger, "alice@example.com", req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if validationErr.Field != tt.wantField {
				t.Fatalf("field = %q, want %q", validationErr.Field, tt.wantField)
			}
		})
	}

	room, err := CreateRoom(ctx, st, logger, "alice@example.com", base)
	if err != nil {
		t.Fatalf("valid create: %v", err)
	}
	if room.State != models.RoomStateWaiting || room.RoomMaster != "" {
		t.Fatalf("new room state = %q master = %q", room.State, room.RoomMaster)
	}
	// 作成者は自動では参加しない
	if got := getGamer(t, st, "alice@example.com").JoinedRoomID; got != "" {
		t.Fatalf("creator auto-joined room %q", got)
	}
}

func TestJoinGameRoom(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	logger := testLogger()
	room := setupRoom(t, st, models.ConditionScoreToWin, 3, "alice@example.com")

	// 最初の参加者がマスターになる
	if got := getRoom(t, st, room.RoomID).RoomMaster; got != "alice@example.com" {
		t.Fatalf("room master = %q, want alice", got)
	}

	// 同じルームへの再参加はべき等
	if err := JoinGameRoom(ctx, st, logger, "alice@example.com", room.RoomID); err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	roster, err := st.List(ctx, roomGamersCol(room.RoomID), store.ListOptions{})
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster) != 1 {
		t.Fatalf("roster size after rejoin = %d, want 1", len(roster))
	}

	// 別ルーム所属中の参加は拒否され、どちらのルームも変化しない
	other, err := CreateRoom(ctx, st, logger, "alice@example.com", models.CreateRoomRequest{
		RoomName:           "other",
		GameConditionKey:   models.ConditionScoreToWin,
		GameConditionValue: 3,
		LoserAward:         "nothing",
		WinnerAward:        "glory",
	})
	if err != nil {
		t.Fatalf("create other: %v", err)
	}
	var stateErr *StateError
	if err := JoinGameRoom(ctx, st, logger, "alice@example.com", other.RoomID); !errors.As(err, &stateErr) {
		t.Fatalf("join elsewhere: got %v, want StateError", err)
	}
	if got := getGamer(t, st, "alice@example.com").JoinedRoomID; got != room.RoomID {
		t.Fatalf("joinedRoomId = %q, want %q", got, room.RoomID)
	}
	otherRoster, err := st.List(ctx, roomGamersCol(other.RoomID), store.ListOptions{})
	if err != nil {
		t.Fatalf("list other roster: %v", err)
	}
	if len(otherRoster) != 0 {
		t.Fatalf("other roster mutated: %d entries", len(otherRoster))
	}

	// 存在しないルーム
	if _, err := CreateGamerOnFirstAuth(ctx, st, logger, "bob@example.com"); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if err := JoinGameRoom(ctx, st, logger, "bob@example.com", "no-such-room"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("missing room: got %v, want ErrNotFound", err)
	}
}

func TestJoinRejectsStartedRoom(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	logger := testLogger()
	room := setupRoom(t, st, models.ConditionScoreToWin, 3, "alice@example.com", "bob@example.com")

	readyAll(t, st, room.RoomID, map[string]string{
		"alice@example.com": models.ChooseRock,
		"bob@example.com":   models.ChooseScissors,
	})
	if _, err := GameStart(ctx, st, logger, "alice@example.com", room.RoomID); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := CreateGamerOnFirstAuth(ctx, st, logger, "carol@example.com"); err != nil {
		t.Fatalf("create carol: %v", err)
	}
	var stateErr *StateError
	if err := JoinGameRoom(ctx, st, logger, "carol@example.com", room.RoomID); !errors.As(err, &stateErr) {
		t.Fatalf("join started room: got %v, want StateError", err)
	}
}

func TestLeaveLastMemberDeletesRoom(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	logger := testLogger()
	room := setupRoom(t, st, models.ConditionScoreToWin, 3, "alice@example.com")

	if err := LeaveGameRoom(ctx, st, logger, "alice@example.com", room.RoomID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	var gone models.Room
	if err := st.Get(ctx, colRooms, room.RoomID, &gone); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("room still exists: %v", err)
	}
	if got := getGamer(t, st, "alice@example.com").JoinedRoomID; got != "" {
		t.Fatalf("joinedRoomId = %q, want empty", got)
	}
	roster, err := st.List(ctx, roomGamersCol(room.RoomID), store.ListOptions{})
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster) != 0 {
		t.Fatalf("orphaned roster entries: %d", len(roster))
	}
}

func TestLeaveReassignsMaster(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	logger := testLogger()
	room := setupRoom(t, st, models.ConditionScoreToWin, 3,
		"alice@example.com", "bob@example.com", "carol@example.com")

	if err := LeaveGameRoom(ctx, st, logger, "alice@example.com", room.RoomID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	// 残りのメンバーの誰かがマスターを引き継いでいればよい
	master := getRoom(t, st, room.RoomID).RoomMaster
	if master == "" || master == "alice@example.com" {
		t.Fatalf("master = %q, want a remaining member", master)
	}
	if _, err := st.List(ctx, roomGamersCol(room.RoomID), store.ListOptions{}); err != nil {
		t.Fatalf("list roster: %v", err)
	}
	var entry models.RoomGamer
	if err := st.Get(ctx, roomGamersCol(room.RoomID), master, &entry); err != nil {
		t.Fatalf("new master %q is not on the roster: %v", master, err)
	}
}

func TestLeaveRejections(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	logger := testLogger()
	room := setupRoom(t, st, models.ConditionScoreToWin, 3, "alice@example.com", "bob@example.com")

	// 所属していないルームからの退室
	if _, err := CreateGamerOnFirstAuth(ctx, st, logger, "carol@example.com"); err != nil {
		t.Fatalf("create carol: %v", err)
	}
	var stateErr *StateError
	if err := LeaveGameRoom(ctx, st, logger, "carol@example.com", room.RoomID); !errors.As(err, &stateErr) {
		t.Fatalf("mismatch leave: got %v, want StateError", err)
	}

	// 対戦進行中は退室できない
	readyAll(t, st, room.RoomID, map[string]string{
		"alice@example.com": models.ChooseRock,
		"bob@example.com":   models.ChooseRock,
	})
	if _, err := GameStart(ctx, st, logger, "alice@example.com", room.RoomID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := LeaveGameRoom(ctx, st, logger, "bob@example.com", room.RoomID); !errors.As(err, &stateErr) {
		t.Fatalf("leave mid-match: got %v, want StateError", err)
	}
}

func TestListWaitingRooms(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	logger := testLogger()

	rooms := []models.Room{
		{RoomID: "room-old", RoomName: "old", State: models.RoomStateWaiting, Timestamp: 100},
		{RoomID: "room-new", RoomName: "new", State: models.RoomStateWaiting, Timestamp: 200},
		{RoomID: "room-started", RoomName: "started", State: models.RoomStateStart, Timestamp: 300},
	}
	err := st.RunTransaction(ctx, func(tx store.Tx) error {
		for i := range rooms {
			if err := tx.Set(colRooms, rooms[i].RoomID, &rooms[i]); err != nil {
				return err
			}
		}
		return tx.Set(roomGamersCol("room-new"), "alice@example.com", &models.RoomGamer{Name: "alice", Result: models.ResultGaming})
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	list, err := ListWaitingRooms(ctx, st, logger)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2 (started room excluded)", len(list))
	}
	if list[0].RoomID != "room-new" || list[1].RoomID != "room-old" {
		t.Fatalf("order = [%s %s], want newest first", list[0].RoomID, list[1].RoomID)
	}
	if list[0].GamerCount != 1 || list[1].GamerCount != 0 {
		t.Fatalf("counts = [%d %d], want [1 0]", list[0].GamerCount, list[1].GamerCount)
	}
}
