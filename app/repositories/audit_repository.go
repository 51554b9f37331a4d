package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/pkg/orm"
)

// AuditRepository persists AuditEntry rows.
type AuditRepository struct {
	entries orm.Table[models.AuditEntry]
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{entries: orm.For[models.AuditEntry](db)}
}

// Create inserts entry and fills its ID.
func (r *AuditRepository) Create(ctx context.Context, entry *models.AuditEntry) error {
	return r.entries.Insert(ctx, entry)
}

// Recent returns the newest entries first. action filters when non-empty.
func (r *AuditRepository) Recent(ctx context.Context, action string, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return r.entries.Find(ctx,
		orm.When(action != "", orm.Where("action = ?", action)),
		orm.Newest("id"),
		orm.Limit(limit),
	)
}
