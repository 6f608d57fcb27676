package utils

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmdatafocus/books_quotation/config"
	"github.com/sirupsen/logrus"
)

// ObtainLock takes a short redis lock on key and returns its release func.
// Without redis the lock is skipped; a lock held elsewhere is reported as ErrConflict.
func ObtainLock(ctx context.Context, key string, moduleName string, functionName string) (func(), error) {
	logger := config.GetLogger()
	locker := config.GetRedisLock()
	if locker == nil {
		logger.WithFields(logrus.Fields{
			"module":   moduleName,
			"funcName": functionName,
			"lock_key": key,
		}).Debug("redis lock not ready; proceeding without redis lock")
		return func() {}, nil
	}

	lock, err := locker.Obtain(ctx, key, 30*time.Second, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock", key, err)
		return nil, ConflictError("%s is being processed by another request", key)
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock", key, err)
		return nil, err
	}

	return func() {
		if releaseErr := lock.Release(context.WithoutCancel(ctx)); releaseErr != nil && !errors.Is(releaseErr, redislock.ErrLockNotHeld) {
			config.LogError(logger, moduleName, functionName, "Failed to release lock", key, releaseErr)
		}
	}, nil
}
