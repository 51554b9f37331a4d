package services

import (
	"context"
	"errors"

	"github.com/afandal/storeadmin/app/models"
	"github.com/afandal/storeadmin/app/repositories"
	"github.com/afandal/storeadmin/pkg/logger"
	"github.com/afandal/storeadmin/pkg/reqid"
	"github.com/afandal/storeadmin/pkg/workerpool"
)

// Auditor records the outcome of an admin mutation.
type Auditor interface {
	Record(ctx context.Context, action, target string, err error)
}

// ErrAuditDisabled is returned by Recent when no database is configured.
var ErrAuditDisabled = errors.New("audit trail is not configured")

// AuditService writes audit entries through a worker pool so the database
// never delays the admin response. With a nil repository it only logs.
type AuditService struct {
	repo *repositories.AuditRepository
	pool *workerpool.Pool
}

func NewAuditService(repo *repositories.AuditRepository, pool *workerpool.Pool) *AuditService {
	return &AuditService{repo: repo, pool: pool}
}

func (s *AuditService) Record(ctx context.Context, action, target string, err error) {
	entry := &models.AuditEntry{
		Action:    action,
		Target:    target,
		Outcome:   models.AuditSuccess,
		RequestID: reqid.FromCtx(ctx),
	}
	if err != nil {
		entry.Outcome = models.AuditFailed
		entry.Detail = err.Error()
	}

	log := logger.WithCtx(ctx)
	log.Info("audit", "action", action, "target", target, "outcome", entry.Outcome)
	if s.repo == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	write := func() {
		if err := s.repo.Create(detached, entry); err != nil {
			log.Error("audit: write failed", "action", action, "error", err)
		}
	}
	if s.pool == nil {
		write()
		return
	}
	if err := s.pool.Submit(write); err != nil {
		log.Warn("audit: pool unavailable, writing inline", "error", err)
		write()
	}
}

// Recent lists the newest entries, optionally filtered by action.
func (s *AuditService) Recent(ctx context.Context, action string, limit int) ([]models.AuditEntry, error) {
	if s.repo == nil {
		return nil, ErrAuditDisabled
	}
	return s.repo.Recent(ctx, action, limit)
}
