package utils

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

/* DB fetching */

// FetchModel loads T by primary key with the given associations preloaded.
// A missing row is reported as ErrorRecordNotFound.
func FetchModel[T any](ctx context.Context, db *gorm.DB, id int, associations ...string) (*T, error) {
	dbCtx := db.WithContext(ctx)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFoundError(GetTypeName[T](), id)
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchModelWhere loads the first T matching condition; found is false when nothing matches.
func FetchModelWhere[T any](ctx context.Context, db *gorm.DB, condition string, value ...interface{}) (result *T, found bool, err error) {
	var model T
	err = db.WithContext(ctx).Where(condition, value...).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &model, true, nil
}
