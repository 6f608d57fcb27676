package models

import (
	"context"
	"strings"

	"github.com/mmdatafocus/books_quotation/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Publisher struct {
	ID   int    `gorm:"primary_key" json:"id"`
	Name string `gorm:"size:191;not null;uniqueIndex" json:"name" binding:"required"`
}

// resolvePublisher returns the id of the publisher called name, creating it when missing.
// Concurrent callers converge on the same row through the unique name index.
func resolvePublisher(ctx context.Context, tx *gorm.DB, name string) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, utils.ValidationError("publisher name is required")
	}

	publisher := Publisher{Name: name}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&publisher).Error
	if err != nil {
		return 0, err
	}

	existing, found, err := utils.FetchModelWhere[Publisher](ctx, tx, "name = ?", name)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, utils.NotFoundError("Publisher", name)
	}
	return existing.ID, nil
}
