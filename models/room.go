package models

// ルームの状態。waiting → start → end の順にのみ進行します
// （判定ポリシーによる waiting へのリセットを除く）。
const (
	RoomStateWaiting = "waiting"
	RoomStateStart   = "start"
	RoomStateEnd     = "end"
)

// 勝利条件の種類
const (
	ConditionScoreToWin = "score-to-win" // 先に N 勝したゲーマーの勝ち
	ConditionSurvivors  = "survivors"    // 勝者が N 人に達するまで続行
)

// Room は1つの対戦ルームを表します。game-rooms コレクションに保存されます。
type Room struct {
	RoomID             string   `json:"roomId"`
	RoomName           string   `json:"roomName"`
	GameConditionKey   string   `json:"gameConditionKey"`
	GameConditionValue int      `json:"gameConditionValue"`
	LoserAward         string   `json:"loserAward"`
	WinnerAward        string   `json:"winnerAward"`
	Winners            []string `json:"winners"`    // 確定した勝者名のログ（古い順）
	Timestamp          int64    `json:"timestamp"`  // 作成時刻（Unix秒）
	RoomMaster         string   `json:"roomMaster"` // 開始権限を持つゲーマーのメールアドレス
	State              string   `json:"state"`
}

// RoomSummary はロビー一覧用のルーム情報＋現在の参加人数です。
type RoomSummary struct {
	Room
	GamerCount int `json:"gamerCount"`
}
