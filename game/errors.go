package game

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated は呼び出し元の認証情報が欠落・無効な場合のエラーです。
var ErrUnauthenticated = errors.New("game: caller is not authenticated")

// ValidationError は入力フィールドの検証エラーです。状態は一切変更されません。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// StateError は現在のルーム・ゲーマー状態と矛盾する操作のエラーです。
// 呼び出し元は最新状態を取得し直してからリトライすることが期待されます。
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return e.Reason
}
