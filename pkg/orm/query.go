// Package orm gives repositories typed gorm access with query latency
// recorded in storeadmin_db_query_duration_seconds.
//
//	rows, err := orm.For[models.AuditEntry](db).Find(ctx, orm.Where("action = ?", a), orm.Newest("id"), orm.Limit(20))
package orm

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/afandal/storeadmin/pkg/metrics"
)

// Scope narrows a query.
type Scope = func(*gorm.DB) *gorm.DB

func Where(cond string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(cond, args...) }
}

// Newest orders by column descending.
func Newest(column string) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Order(column + " desc") }
}

func Limit(n int) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Limit(n) }
}

// When applies s only if cond holds.
func When(cond bool, s Scope) Scope {
	if !cond {
		return func(db *gorm.DB) *gorm.DB { return db }
	}
	return s
}

// Table is a typed handle on the rows of T.
type Table[T any] struct {
	db *gorm.DB
}

func For[T any](db *gorm.DB) Table[T] { return Table[T]{db: db} }

func (t Table[T]) Insert(ctx context.Context, row *T) error {
	defer metrics.ObserveDBQuery("insert", time.Now())
	return t.db.WithContext(ctx).Create(row).Error
}

// Find returns every row matching scopes; never nil on success.
func (t Table[T]) Find(ctx context.Context, scopes ...Scope) ([]T, error) {
	defer metrics.ObserveDBQuery("select", time.Now())
	rows := []T{}
	err := t.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Find(&rows).Error
	return rows, err
}
