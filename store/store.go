// Package store はコレクション/ドキュメントID で鍵付けされた
// トランザクショナルなドキュメントストアを提供します。
// ゲームロジックはこの抽象の上でのみ動作し、
// 1アクション = 1トランザクション（読み取り→検証→一括コミット）の規律を守ります。
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound は対象ドキュメントが存在しない場合に返されます。
var ErrNotFound = errors.New("store: document not found")

// Document は一覧読み取りの1件分です。Data はJSONエンコード済みの本体です。
type Document struct {
	ID   string
	Data json.RawMessage
}

// ListOptions は一覧読み取りの並び順を指定します。
type ListOptions struct {
	OrderBy    string // ドキュメント内のJSONフィールド名。空なら未指定
	Descending bool
}

// Reader はポイントリードと一覧読み取りです。
type Reader interface {
	// Get はドキュメントを読み取り out にデコードします。
	// 存在しない場合は ErrNotFound を返します。
	Get(ctx context.Context, collection, id string, out interface{}) error
	// List はコレクション全体を読み取ります。
	List(ctx context.Context, collection string, opts ListOptions) ([]Document, error)
}

// Tx は1トランザクション内の読み書きです。書き込みはコミットまで
// バッファされるため、読み取りは必ず書き込みより先に行ってください。
type Tx interface {
	Reader
	// Set はドキュメント全体を作成または上書きします。
	Set(collection, id string, value interface{}) error
	// Update は既存ドキュメントへフィールド単位でマージします。
	// 対象が存在しない場合はコミット時に ErrNotFound で失敗します。
	Update(collection, id string, fields map[string]interface{}) error
	// Delete はドキュメントを削除します。存在しなくてもエラーにしません。
	Delete(collection, id string)
}

// Store はドキュメントストア本体です。
// RunTransaction は fn 内の全書き込みを単一のアトミックなバッチとして
// コミットし、fn がエラーを返した場合は何も適用しません。
type Store interface {
	Reader
	RunTransaction(ctx context.Context, fn func(tx Tx) error) error
}
