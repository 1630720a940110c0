package model

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Price       int64  `gorm:"not null" json:"price"`
	Stock       int64  `gorm:"not null" json:"stock"`

	//商品画像の保存パス
	ImagePath string `gorm:"type:varchar(255)" json:"image_path"`

	CategoryID int64 `gorm:"not null;index" json:"category_id"`
	SupplierID int64 `gorm:"not null;index" json:"supplier_id"`

	//トップページに出すか
	Featured bool `gorm:"not null;default:false" json:"featured"`

	//URL用。名前変更時にusecaseで再計算する（保存フックは使わない）
	Slug string `gorm:"type:varchar(255);uniqueIndex" json:"slug"`

	IsActive  bool           `gorm:"not null;default:false" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
