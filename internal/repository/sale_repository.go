package repository

import (
	"context"
	"time"

	"store/internal/domain/model"
)

// 購入者向けの履歴絞り込み
type SaleListFilter struct {
	Page   int
	Limit  int
	Status string
	From   *time.Time
	To     *time.Time
}

// 管理者向けの一覧絞り込み
type AdminSaleListFilter struct {
	Page   int
	Limit  int
	Status string
	UserID *int64
	From   *time.Time
	To     *time.Time
}

// 日次集計の1行
type DailyStat struct {
	Day     time.Time
	Count   int64
	Revenue int64
}

type SaleRepository interface {
	FindByID(ctx context.Context, saleID int64) (model.Sale, error)
	FindByCode(ctx context.Context, code string) (model.Sale, error)
	ListByUserID(ctx context.Context, userID int64, f SaleListFilter) ([]model.Sale, int64, error)
	Create(ctx context.Context, sale model.Sale) (int64, error)

	// fromのときだけtoへ遷移させる条件付き更新。
	// 補償処理を一度きりにするためのガードで、遷移しなかったらfalse
	UpdateStatusIf(ctx context.Context, saleID int64, from model.SaleStatus, to model.SaleStatus) (bool, error)
	UpdateStatus(ctx context.Context, saleID int64, status model.SaleStatus) error

	//決済レスポンスを監査用に添付
	AttachPaymentPayload(ctx context.Context, saleID int64, payload string) error

	//管理者用の一覧
	ListAdmin(ctx context.Context, f AdminSaleListFilter) ([]model.Sale, int64, error)
	//日次レポート用の集計
	DailyStats(ctx context.Context, from time.Time, to time.Time) ([]DailyStat, error)
}
