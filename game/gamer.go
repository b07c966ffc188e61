package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"rpsserver/models"
	"rpsserver/store"

	"go.uber.org/zap"
)

// CreateGamerOnFirstAuth は初回認証時にゲーマープロフィールを作成します。
// 既に存在する場合は何もせず既存のプロフィールを返します（べき等）。
func CreateGamerOnFirstAuth(ctx context.Context, st store.Store, logger *zap.Logger, email string) (*models.Gamer, error) {
	if email == "" {
		return nil, ErrUnauthenticated
	}

	var gamer models.Gamer
	err := st.RunTransaction(ctx, func(tx store.Tx) error {
		err := tx.Get(ctx, colGamers, email, &gamer)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}
		gamer = models.Gamer{
			Email: email,
			Name:  defaultGamerName(email),
		}
		return tx.Set(colGamers, email, &gamer)
	})
	if err != nil {
		logger.Error("ゲーマープロフィールの作成に失敗しました", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	return &gamer, nil
}

// メールアドレスのローカル部を初期表示名にします。
// メール形式でないIDの場合はタイムスタンプから生成します。
func defaultGamerName(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return fmt.Sprintf("gamer%d", time.Now().Unix())
}

// GetGamerInfo はゲーマープロフィールを取得します。
func GetGamerInfo(ctx context.Context, st store.Store, logger *zap.Logger, email string) (*models.Gamer, error) {
	if email == "" {
		return nil, ErrUnauthenticated
	}

	var gamer models.Gamer
	if err := st.Get(ctx, colGamers, email, &gamer); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Error("ゲーマープロフィールの取得に失敗しました", zap.String("email", email), zap.Error(err))
		}
		return nil, fmt.Errorf("gamer %s: %w", email, err)
	}
	return &gamer, nil
}

// UpdateGamerName は表示名を変更します。空文字列は拒否します。
func UpdateGamerName(ctx context.Context, st store.Store, logger *zap.Logger, email, name string) error {
	if email == "" {
		return ErrUnauthenticated
	}
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	err := st.RunTransaction(ctx, func(tx store.Tx) error {
		var gamer models.Gamer
		if err := tx.Get(ctx, colGamers, email, &gamer); err != nil {
			return fmt.Errorf("gamer %s: %w", email, err)
		}
		return tx.Update(colGamers, email, map[string]interface{}{"name": name})
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("表示名の更新に失敗しました", zap.String("email", email), zap.Error(err))
	}
	return err
}
