package game

import (
	"sort"

	"rpsserver/models"
)

// GameCondition は勝利条件ポリシーの列挙です。
// 新しいポリシーは列挙値と apply の分岐を1つ足すだけで追加できます。
type GameCondition int

const (
	ConditionUnknown GameCondition = iota
	// ScoreToWin: 先に N 勝したゲーマーが勝者となり、マッチが終了します。
	ScoreToWin
	// Survivors: ラウンド勝者を順次「勝者」として確定していき、
	// 勝者が累計 N 人に達した時点で残りを敗者としてマッチが終了します。
	Survivors
)

// ParseCondition はルームの gameConditionKey をポリシーに変換します。
func ParseCondition(key string) GameCondition {
	switch key {
	case models.ConditionScoreToWin:
		return ScoreToWin
	case models.ConditionSurvivors:
		return Survivors
	}
	return ConditionUnknown
}

// apply は1ラウンドの勝敗を名簿に反映し、マッチが終了したかを返します。
// winners / losers は今ラウンドの勝者・敗者のメールアドレスです。
func (c GameCondition) apply(room *models.Room, roster map[string]*models.RoomGamer, winners, losers []string) bool {
	switch c {
	case ScoreToWin:
		return applyScoreToWin(room, roster, winners)
	case Survivors:
		return applySurvivors(room, roster, winners, losers)
	}
	return false
}

func applyScoreToWin(room *models.Room, roster map[string]*models.RoomGamer, winners []string) bool {
	n := room.GameConditionValue
	reached := make(map[string]bool)
	for _, email := range winners {
		entry := roster[email]
		entry.Score++
		if entry.Score >= n {
			reached[email] = true
		}
	}
	if len(reached) == 0 {
		return false
	}

	// N勝へ到達したゲーマーを勝者、それ以外は全員同時に敗者として確定する
	for email, entry := range roster {
		if reached[email] {
			entry.Result = models.ResultWinner
		} else {
			entry.Result = models.ResultLoser
		}
	}
	logWinners(room, roster, keysOf(reached))
	return true
}

func applySurvivors(room *models.Room, roster map[string]*models.RoomGamer, winners, losers []string) bool {
	n := room.GameConditionValue
	prevWinner := countResult(roster, models.ResultWinner)

	switch {
	case prevWinner+len(winners) < n:
		// まだ枠が残っているので勝者を確定してマッチ続行
		markAll(roster, winners, models.ResultWinner)
		logWinners(room, roster, winners)
		return false

	case prevWinner+len(winners) == n:
		// 勝者枠がちょうど埋まった。残りの対戦中メンバーは同一コミットで敗者確定
		markAll(roster, winners, models.ResultWinner)
		logWinners(room, roster, winners)
		for _, entry := range roster {
			if entry.Result == models.ResultGaming {
				entry.Result = models.ResultLoser
			}
		}
		return true

	default:
		// 勝者枠を超えてしまうラウンドでは、代わりに今ラウンドの敗者側を確定する。
		// 敗者の累計が (名簿人数 - N) に達したら残りを勝者として終了。
		markAll(roster, losers, models.ResultLoser)
		if countResult(roster, models.ResultLoser) == len(roster)-n {
			var remaining []string
			for email, entry := range roster {
				if entry.Result == models.ResultGaming {
					entry.Result = models.ResultWinner
					remaining = append(remaining, email)
				}
			}
			logWinners(room, roster, remaining)
			return true
		}
		return false
	}
}

func markAll(roster map[string]*models.RoomGamer, emails []string, result string) {
	for _, email := range emails {
		roster[email].Result = result
	}
}

func countResult(roster map[string]*models.RoomGamer, result string) int {
	count := 0
	for _, entry := range roster {
		if entry.Result == result {
			count++
		}
	}
	return count
}

// logWinners は確定した勝者の表示名をルームの勝者ログへ追記します。
func logWinners(room *models.Room, roster map[string]*models.RoomGamer, emails []string) {
	sorted := append([]string(nil), emails...)
	sort.Strings(sorted)
	for _, email := range sorted {
		room.Winners = append(room.Winners, roster[email].Name)
	}
}

func keysOf(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	return keys
}
