package model

import "time"

// 販売明細。作成後は不変。
type SaleItem struct {
	ID                  int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SaleID              int64     `gorm:"not null;index" json:"sale_id"`
	ProductID           int64     `gorm:"not null;index" json:"product_id"`
	ProductNameSnapshot string    `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	UnitPriceSnapshot   int64     `gorm:"not null" json:"unit_price_snapshot"`
	Quantity            int64     `gorm:"not null" json:"quantity"`
	Subtotal            int64     `gorm:"not null" json:"subtotal"`
	CreatedAt           time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
