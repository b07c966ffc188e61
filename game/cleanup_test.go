package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"rpsserver/models"
	"rpsserver/store"
)

func TestSweepStaleRooms(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	logger := testLogger()

	fresh := setupRoom(t, st, models.ConditionScoreToWin, 2, "alice@example.com")
	stale := setupRoom(t, st, models.ConditionScoreToWin, 2, "bob@example.com")

	// 放置されたルームを偽装するため作成時刻を過去に書き換える
	old := time.Now().Add(-48 * time.Hour).Unix()
	err := st.RunTransaction(ctx, func(tx store.Tx) error {
		return tx.Update(colRooms, stale.RoomID, map[string]interface{}{"timestamp": old})
	})
	if err != nil {
		t.Fatalf("age room: %v", err)
	}

	deleted := SweepStaleRooms(ctx, st, logger, models.RoomStateWaiting, 24*time.Hour)
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	var gone models.Room
	if err := st.Get(ctx, colRooms, stale.RoomID, &gone); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("stale room still exists: %v", err)
	}
	if got := getGamer(t, st, "bob@example.com").JoinedRoomID; got != "" {
		t.Fatalf("bob joinedRoomId = %q, want empty", got)
	}
	roster, err := st.List(ctx, roomGamersCol(stale.RoomID), store.ListOptions{})
	if err != nil {
		t.Fatalf("list roster: %v", err)
	}
	if len(roster) != 0 {
		t.Fatalf("orphaned roster entries: %d", len(roster))
	}

	// 新しいルームはそのまま
	if got := getRoom(t, st, fresh.RoomID); got.State != models.RoomStateWaiting {
		t.Fatalf("fresh room mutated: %+v", got)
	}
}
