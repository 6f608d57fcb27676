package utils

import (
	"context"
	"reflect"

	"gorm.io/gorm"
)

// ValidateResourceId checks that id exists for T, returning ErrorRecordNotFound otherwise.
func ValidateResourceId[T any](ctx context.Context, db *gorm.DB, id interface{}) error {
	count, err := ResourceCountWhere[T](ctx, db, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return NotFoundError(GetTypeName[T](), id)
	}
	return nil
}

// ValidateUniqueWhere fails with ErrConflict when another row (not exceptId) matches condition.
func ValidateUniqueWhere[T any](ctx context.Context, db *gorm.DB, exceptId interface{}, message string, condition string, value ...interface{}) error {
	var model T
	dbCtx := db.WithContext(ctx).Model(&model).Where(condition, value...)
	if !reflect.ValueOf(exceptId).IsZero() {
		dbCtx = dbCtx.Where("NOT id = ?", exceptId)
	}
	var count int64
	if err := dbCtx.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ConflictError("%s", message)
	}
	return nil
}

// ResourceCountWhere counts T rows matching condition.
func ResourceCountWhere[T any](ctx context.Context, db *gorm.DB, condition string, value ...interface{}) (int64, error) {
	var model T
	var count int64
	if err := db.WithContext(ctx).Model(&model).Where(condition, value...).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]bool, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
