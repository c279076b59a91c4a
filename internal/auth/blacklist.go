package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/models"
)

// Blacklist stores revoked tokens until their natural expiry. The cache
// only remembers positives; a miss always goes to the database.
type Blacklist struct {
	db    *gorm.DB
	cache cache.Cache
}

func NewBlacklist(db *gorm.DB, c cache.Cache) *Blacklist {
	if c == nil {
		c = cache.Noop{}
	}
	return &Blacklist{db: db, cache: c}
}

func (b *Blacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	row := models.TokenBlacklist{Token: token, ExpiresAt: expiresAt.UTC()}

	if err := b.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return err
	}

	if ttl := time.Until(expiresAt); ttl > 0 {
		_ = b.cache.Set(ctx, cacheKey(token), "1", ttl)
	}
	return nil
}

func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if _, err := b.cache.Get(ctx, cacheKey(token)); err == nil {
		return true, nil
	}

	var row models.TokenBlacklist
	err := b.db.WithContext(ctx).
		Select("id").
		Where("token = ?", token).
		Take(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired removes rows whose token would be rejected by expiry anyway.
func (b *Blacklist) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := b.db.WithContext(ctx).
		Where("expires_at < ?", now.UTC()).
		Delete(&models.TokenBlacklist{})
	return res.RowsAffected, res.Error
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "blacklist:" + hex.EncodeToString(sum[:])
}
