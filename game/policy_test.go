package game

import (
	"testing"

	"rpsserver/models"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		key  string
		want GameCondition
	}{
		{key: models.ConditionScoreToWin, want: ScoreToWin},
		{key: models.ConditionSurvivors, want: Survivors},
		{key: "", want: ConditionUnknown},
		{key: "sudden-death", want: ConditionUnknown},
	}
	for _, tt := range tests {
		if got := ParseCondition(tt.key); got != tt.want {
			t.Fatalf("ParseCondition(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func survivorsRoster(results map[string]string) map[string]*models.RoomGamer {
	roster := make(map[string]*models.RoomGamer, len(results))
	for email, result := range results {
		roster[email] = &models.RoomGamer{Name: email, Result: result}
	}
	return roster
}

// survivors ポリシーの累計勝者数のしきい値（N ちょうど / N 未満 / N 超過）を
// 境界値で確認します。
func TestApplySurvivorsThresholds(t *testing.T) {
	gaming := models.ResultGaming

	t.Run("one under threshold keeps the match running", func(t *testing.T) {
		room := &models.Room{GameConditionValue: 3}
		roster := survivorsRoster(map[string]string{
			"w1": models.ResultWinner,
			"a":  gaming, "b": gaming, "c": gaming, "d": gaming,
		})
		ended := Survivors.apply(room, roster, []string{"a"}, []string{"b", "c", "d"})
		if ended {
			t.Fatal("match ended below the winner threshold")
		}
		if roster["a"].Result != models.ResultWinner {
			t.Fatalf("a result = %q, want winner", roster["a"].Result)
		}
		for _, email := range []string{"b", "c", "d"} {
			if roster[email].Result != gaming {
				t.Fatalf("%s result = %q, want gaming", email, roster[email].Result)
			}
		}
	})

	t.Run("exactly at threshold ends the match", func(t *testing.T) {
		room := &models.Room{GameConditionValue: 2}
		roster := survivorsRoster(map[string]string{
			"w1": models.ResultWinner,
			"a":  gaming, "b": gaming, "c": gaming,
		})
		ended := Survivors.apply(room, roster, []string{"a"}, []string{"b", "c"})
		if !ended {
			t.Fatal("match should end when cumulative winners reach N")
		}
		if roster["a"].Result != models.ResultWinner {
			t.Fatalf("a result = %q, want winner", roster["a"].Result)
		}
		// 残りの対戦中メンバーは同じ適用で敗者確定
		for _, email := range []string{"b", "c"} {
			if roster[email].Result != models.ResultLoser {
				t.Fatalf("%s result = %q, want loser", email, roster[email].Result)
			}
		}
	})

	t.Run("one over threshold marks the losers instead", func(t *testing.T) {
		room := &models.Room{GameConditionValue: 2}
		roster := survivorsRoster(map[string]string{
			"w1": models.ResultWinner,
			"a":  gaming, "b": gaming, "c": gaming, "d": gaming,
		})
		// 勝者候補2人を確定させると累計3 > N=2 になるので、敗者側だけを確定する
		ended := Survivors.apply(room, roster, []string{"a", "b"}, []string{"c", "d"})
		if ended {
			t.Fatal("match ended even though the winner slots are not settled")
		}
		for _, email := range []string{"a", "b"} {
			if roster[email].Result != gaming {
				t.Fatalf("%s result = %q, want gaming", email, roster[email].Result)
			}
		}
		for _, email := range []string{"c", "d"} {
			if roster[email].Result != models.ResultLoser {
				t.Fatalf("%s result = %q, want loser", email, roster[email].Result)
			}
		}
	})

}

func TestApplyScoreToWin(t *testing.T) {
	room := &models.Room{GameConditionValue: 2}
	roster := map[string]*models.RoomGamer{
		"a": {Name: "a", Result: models.ResultGaming, Score: 1},
		"b": {Name: "b", Result: models.ResultGaming, Score: 1},
		"c": {Name: "c", Result: models.ResultGaming, Score: 0},
	}

	// a だけが N=2 に到達。b は同点1勝でも敗者として確定する
	if ended := ScoreToWin.apply(room, roster, []string{"a"}, []string{"b", "c"}); !ended {
		t.Fatal("match should end when a score reaches N")
	}
	if roster["a"].Result != models.ResultWinner || roster["a"].Score != 2 {
		t.Fatalf("a = %+v, want winner with score 2", roster["a"])
	}
	for _, email := range []string{"b", "c"} {
		if roster[email].Result != models.ResultLoser {
			t.Fatalf("%s result = %q, want loser", email, roster[email].Result)
		}
	}
	if len(room.Winners) != 1 || room.Winners[0] != "a" {
		t.Fatalf("winner log = %v, want [a]", room.Winners)
	}
}

func TestApplyScoreToWinNoFinish(t *testing.T) {
	room := &models.Room{GameConditionValue: 3}
	roster := map[string]*models.RoomGamer{
		"a": {Name: "a", Result: models.ResultGaming},
		"b": {Name: "b", Result: models.ResultGaming},
	}
	if ended := ScoreToWin.apply(room, roster, []string{"a"}, []string{"b"}); ended {
		t.Fatal("match ended before any score reached N")
	}
	if roster["a"].Score != 1 || roster["a"].Result != models.ResultGaming {
		t.Fatalf("a = %+v, want gaming with score 1", roster["a"])
	}
}
