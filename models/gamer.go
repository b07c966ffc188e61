package models

// Gamer はアカウント単位のプレイヤープロフィールです。
// ドキュメントIDはメールアドレス（認証済みID）を使用します。
type Gamer struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	JoinedRoomID string `json:"joinedRoomId"` // 空文字列 = どのルームにも未参加
}
