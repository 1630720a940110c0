package repository

import (
	"context"

	"store/internal/domain/model"
)

type CartRepository interface {
	GetOrCreateActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)

	// チェックアウト用。行ロック付きで取得し、
	// 同一ユーザーのカート変更とチェックアウトを直列化する
	LockActiveByUserID(ctx context.Context, userID int64) (model.Cart, error)

	UpdateStatus(ctx context.Context, cartID int64, status model.CartStatus) error
	Clear(ctx context.Context, cartID int64) error
}
