package persistence

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"subtitle-credit/domain/model"
	"subtitle-credit/domain/repository"
)

// WebhookEventRepository is the gateway delivery log, unique on (provider, reference, event).
type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) repository.IWebhookEvent {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Record(ctx context.Context, evt *model.WebhookEvent) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(evt)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 1 {
		return false, nil
	}

	var existing model.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("provider = ? AND reference = ? AND event = ?", evt.Provider, evt.Reference, evt.Event).
		First(&existing).Error
	if err != nil {
		return false, err
	}
	evt.ID = existing.ID
	return existing.ProcessedAt != nil, nil
}

func (r *WebhookEventRepository) MarkProcessed(ctx context.Context, evt *model.WebhookEvent) error {
	now := time.Now().UTC()
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("provider = ? AND reference = ? AND event = ?", evt.Provider, evt.Reference, evt.Event).
		Update("processed_at", now).Error
	if err == nil {
		evt.ProcessedAt = &now
	}
	return err
}
