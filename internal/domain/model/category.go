package model

import "time"

type Category struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	//URL用。名前から明示的に生成する
	Slug string `gorm:"type:varchar(255);uniqueIndex" json:"slug"`

	//トップページに出すカテゴリか
	Featured bool `gorm:"not null;default:false" json:"featured"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
