package repository

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// CartStore はセッションごとのカートをそのまま（エンコード済みで）保存する。
// 形式の解釈は domain/cart 側の責務。
type CartStore interface {
	// 何も保存されていなければ ErrNotFound
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, payload []byte) error
}
