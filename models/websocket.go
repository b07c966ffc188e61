package models

import (
	"github.com/gorilla/websocket"
)

// Websocketクライアントを定義
type Client struct {
	Conn   *websocket.Conn
	Email  string // JWTから抽出したゲーマーのメールアドレス
	RoomID string // 監視対象のルーム
}

// RoomEvent はルームで起きた出来事の通知です。
// Redisのpub/sub経由でハブへ届き、該当ルームを監視中のクライアントに配信されます。
type RoomEvent struct {
	Type    string      `json:"type"` // "joined", "left", "round", "ended" など
	RoomID  string      `json:"roomId"`
	Payload interface{} `json:"payload,omitempty"`
}
