package model

import "time"

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// 確定済みの販売。チェックアウト成功時に1回だけ作られる。
// 明細はスナップショットなので、後から商品の価格や在庫が変わっても履歴は変わらない。
type Sale struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//外部共有用のコード（URLやレシートに載せる）
	Code string `gorm:"type:varchar(64);uniqueIndex;not null" json:"code"`

	UserID int64      `gorm:"not null;index" json:"user_id"`
	Total  int64      `gorm:"not null" json:"total"`
	Status SaleStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	//決済プロバイダが返したレスポンス。監査用にそのまま保存するだけで中身は見ない
	PaymentPayload string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
