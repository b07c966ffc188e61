package models

// TokenRequest はトークン発行リクエストのボディです。
// 既存トークンが有効な場合は同じゲーマーのまま更新されます。
type TokenRequest struct {
	Email string `json:"email"`
}

// UpdateNameRequest は表示名変更リクエストのボディです。
type UpdateNameRequest struct {
	Name string `json:"name"`
}

// CreateRoomRequest はルーム作成リクエストのボディです。
type CreateRoomRequest struct {
	RoomName           string `json:"roomName"`
	GameConditionKey   string `json:"gameConditionKey"`
	GameConditionValue int    `json:"gameConditionValue"`
	LoserAward         string `json:"loserAward"`
	WinnerAward        string `json:"winnerAward"`
}

// ReadyRequest は手の提出（レディ）リクエストのボディです。
type ReadyRequest struct {
	Choose string `json:"choose"`
}
