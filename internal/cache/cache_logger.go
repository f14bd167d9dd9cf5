package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// BatchInvalidate invalidates one pattern across several helpers
func BatchInvalidate(ctx context.Context, helpers []*CacheHelper, pattern string) error {
	var lastErr error
	for _, helper := range helpers {
		if err := helper.InvalidatePattern(ctx, pattern); err != nil {
			lastErr = err
			slog.ErrorContext(ctx, "Failed to invalidate pattern in batch",
				"error", err,
				"pattern", helper.GetCacheKey(pattern))
		}
	}
	return lastErr
}

// IDKey and OwnerKey name the two entries kept per record
func IDKey(id uint) string        { return fmt.Sprintf("id:%d", id) }
func OwnerKey(userID uint) string { return fmt.Sprintf("owner:%d", userID) }

// InvalidateRecordCache drops both lookups of a single record
func InvalidateRecordCache(ctx context.Context, helper *CacheHelper, id, userID uint) {
	SafeDelete(ctx, helper, IDKey(id), OwnerKey(userID))
}

// InvalidateUserCache drops everything cached for an account, including the
// records it owned.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint) {
	SafeDelete(ctx, cm.User, IDKey(userID))
	SafeDelete(ctx, cm.Profile, OwnerKey(userID))
	SafeDelete(ctx, cm.Student, OwnerKey(userID))
}
