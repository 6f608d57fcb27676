package utils

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mmdatafocus/books_quotation/config"
	"gorm.io/gorm"
)

var mutex sync.Mutex

func GetCacheLifespan() time.Duration {
	lifespan, err := strconv.Atoi(os.Getenv("CACHE_LIFESPAN"))
	if err != nil {
		lifespan = 1
	}
	return time.Duration(lifespan) * time.Hour
}

/* generic functions */

func GetTypeName[T any]() string {
	var v T
	return reflect.TypeOf(v).Name()
}

func sequenceCacheKey[T any](column string) string {
	return strings.ToLower(GetTypeName[T]()) + "_" + column + "_seq"
}

// GetSequence returns the next value of an integer column: a redis counter seeded from max(column),
// or max(column)+1 straight from db when redis is not connected.
// The column must carry a unique index; callers retry on gorm.ErrDuplicatedKey after ResetSequence.
func GetSequence[T any](ctx context.Context, db *gorm.DB, column string) (int64, error) {
	mutex.Lock()
	defer mutex.Unlock()

	cacheKey := sequenceCacheKey[T](column)
	for {
		seqNo, ok, err := config.GetRedisCounter(ctx, cacheKey)
		if err != nil {
			return 0, err
		}
		if !ok {
			dbSeq, err := maxColumnValue[T](ctx, db, column)
			if err != nil {
				return 0, err
			}
			return dbSeq + 1, nil
		}
		// counter was just created, align it with db
		if seqNo == 1 {
			dbSeq, err := maxColumnValue[T](ctx, db, column)
			if err != nil {
				return 0, err
			}
			seqNo = dbSeq + 1
			if err := config.SetRedisObject(cacheKey, &seqNo, 0); err != nil {
				return 0, err
			}
		}
		count, err := ResourceCountWhere[T](ctx, db, column+" = ?", seqNo)
		if err != nil {
			return 0, err
		}
		if count == 0 {
			return seqNo, nil
		}
	}
}

// ResetSequence drops the cached counter so the next GetSequence re-reads max(column).
func ResetSequence[T any](column string) error {
	return config.RemoveRedisKey(sequenceCacheKey[T](column))
}

func maxColumnValue[T any](ctx context.Context, db *gorm.DB, column string) (int64, error) {
	var model T
	var dbSeq *int64
	if err := db.WithContext(ctx).Model(&model).Select(fmt.Sprintf("max(%s)", column)).Scan(&dbSeq).Error; err != nil {
		return 0, err
	}
	if dbSeq == nil {
		return 0, nil
	}
	return *dbSeq, nil
}
