package repositories

import (
	"context"
	"time"

	"github.com/projectdesk/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevokedTokenRepository stores logged-out token ids
type RevokedTokenRepository struct {
	db *gorm.DB
}

// NewRevokedTokenRepository creates a new revoked token repository instance
func NewRevokedTokenRepository(db *gorm.DB) *RevokedTokenRepository {
	return &RevokedTokenRepository{db: db}
}

// Revoke records a token id. Revoking twice is not an error.
func (r *RevokedTokenRepository) Revoke(ctx context.Context, token *models.RevokedToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(token).Error
}

// IsRevoked checks whether a token id has been revoked
func (r *RevokedTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("id = ?", jti).Count(&count)
	return count > 0, result.Error
}

// DeleteExpired drops revocations for tokens that can no longer be presented
func (r *RevokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", now).Delete(&models.RevokedToken{})
	return result.RowsAffected, result.Error
}
