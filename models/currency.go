package models

import "time"

type Currency struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Symbol    string    `gorm:"size:10" json:"symbol"`
	Code      string    `gorm:"size:10;uniqueIndex" json:"code" binding:"required"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
