package models

// ラウンドで出せる手
const (
	ChooseRock     = "rock"
	ChoosePaper    = "paper"
	ChooseScissors = "scissors"
)

// ゲーマーの対戦結果
const (
	ResultGaming = "gaming" // まだ対戦中
	ResultWinner = "winner"
	ResultLoser  = "loser"
)

// RoomGamer はルーム名簿の1エントリです。
// game-rooms/{roomID}/gamers コレクションにメールアドレスをキーとして保存されます。
type RoomGamer struct {
	Name       string `json:"name"`
	Ready      bool   `json:"ready"`
	Result     string `json:"result"`
	PrevChoose string `json:"prevChoose"` // 直前に解決されたラウンドの手
	Score      int    `json:"score"`      // score-to-win ポリシーでのみ加算
}

// RoomGamerChoose は現在ラウンドの未解決の手です。
// game-rooms/{roomID}/room-gamers-choose コレクションに保存され、
// ラウンド解決のたびにクリアされます。
type RoomGamerChoose struct {
	NowChoose string `json:"nowChoose"`
}
