package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/quantora/coinsentry/internal/entity"
	"github.com/quantora/coinsentry/internal/service/alert"
)

// TriggerLogRepo 触发历史落盘与查询
type TriggerLogRepo interface {
	Append(ctx context.Context, rec alert.TriggerRecord) error
	FindRecent(ctx context.Context, limit int) ([]entity.TriggerLog, error)
	FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.TriggerLog, error)
}

type triggerLogRepo struct {
	db *gorm.DB
}

func NewTriggerLogRepo(db *gorm.DB) TriggerLogRepo {
	return &triggerLogRepo{
		db: db,
	}
}

func (r *triggerLogRepo) Append(ctx context.Context, rec alert.TriggerRecord) error {
	return r.db.WithContext(ctx).Create(&entity.TriggerLog{
		AlertId:     rec.AlertId,
		Symbol:      rec.Symbol,
		AlertType:   string(rec.Type),
		TargetPrice: rec.TargetPrice.String(),
		Price:       rec.Price.String(),
		Repeat:      rec.Repeat,
		TriggeredAt: rec.TriggeredAt,
		CreatedAt:   time.Now(),
	}).Error
}

func (r *triggerLogRepo) FindRecent(ctx context.Context, limit int) ([]entity.TriggerLog, error) {
	var logs []entity.TriggerLog
	err := r.db.WithContext(ctx).Order("triggered_at desc").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *triggerLogRepo) FindBySymbol(ctx context.Context, symbol string, limit int) ([]entity.TriggerLog, error) {
	var logs []entity.TriggerLog
	err := r.db.WithContext(ctx).Where("symbol = ?", symbol).Order("triggered_at desc").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
