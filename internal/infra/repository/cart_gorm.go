package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartGormStore struct {
	db *gorm.DB
}

// DI
func NewCartGormStore(db *gorm.DB) *CartGormStore {
	return &CartGormStore{db: db}
}

// セッションのカートを取得
func (s *CartGormStore) Load(ctx context.Context, sessionID string) ([]byte, error) {
	var row model.CartSession

	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		First(&row).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repo.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.Payload), nil
}

// 無ければ作る、あれば payload を上書き
func (s *CartGormStore) Save(ctx context.Context, sessionID string, payload []byte) error {
	now := time.Now()
	row := model.CartSession{
		SessionID: sessionID,
		Payload:   string(payload),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&row).Error
}
