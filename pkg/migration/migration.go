// Package migration applies the audit database's schema changes and
// records which ones ran in storeadmin_migrations.
//
//	func init() {
//	    migration.Register("20260301000000_create_audit_entries_table", up, down)
//	}
package migration

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/afandal/storeadmin/pkg/logger"
)

// Step is one direction of a migration. It runs inside a transaction.
type Step func(tx *gorm.DB) error

type entry struct {
	name     string
	up, down Step
}

type applied struct {
	ID    uint      `gorm:"primaryKey;autoIncrement"`
	Name  string    `gorm:"uniqueIndex;size:255;not null"`
	Batch int       `gorm:"not null"`
	RunAt time.Time `gorm:"autoCreateTime"`
}

func (applied) TableName() string { return "storeadmin_migrations" }

var (
	mu       sync.Mutex
	registry = map[string]entry{}
)

// Register adds a migration. Names sort into run order, so prefix them
// with a timestamp. Registering a name twice panics.
func Register(name string, up, down Step) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic("migration: duplicate " + name)
	}
	registry[name] = entry{name: name, up: up, down: down}
}

func sorted() []entry {
	mu.Lock()
	defer mu.Unlock()
	out := make([]entry, 0, len(registry))
	for _, e := range registry {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

var ErrNoMigrations = errors.New("migration: none registered")

// State is one registered migration and, when it ran, its batch.
type State struct {
	Name  string
	Batch int // 0 while pending
	RunAt time.Time
}

type Runner struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Runner { return &Runner{db: db} }

func (r *Runner) applied() (map[string]applied, error) {
	if err := r.db.AutoMigrate(&applied{}); err != nil {
		return nil, fmt.Errorf("migration: tracking table: %w", err)
	}
	var rows []applied
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read tracking table: %w", err)
	}
	out := make(map[string]applied, len(rows))
	for _, row := range rows {
		out[row.Name] = row
	}
	return out, nil
}

// Up applies every pending migration as one new batch and returns the
// names it ran. A failing migration stops the batch; earlier ones stay.
func (r *Runner) Up() ([]string, error) {
	all := sorted()
	if len(all) == 0 {
		return nil, ErrNoMigrations
	}
	done, err := r.applied()
	if err != nil {
		return nil, err
	}

	batch := 1
	for _, a := range done {
		if a.Batch >= batch {
			batch = a.Batch + 1
		}
	}

	var ran []string
	for _, e := range all {
		if _, ok := done[e.name]; ok {
			continue
		}
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := e.up(tx); err != nil {
				return err
			}
			return tx.Create(&applied{Name: e.name, Batch: batch}).Error
		})
		if err != nil {
			return ran, fmt.Errorf("migration: %s: %w", e.name, err)
		}
		logger.Info("migration applied", "name", e.name, "batch", batch)
		ran = append(ran, e.name)
	}
	return ran, nil
}

// Down reverts the newest batch and returns the names it reverted, newest
// first.
func (r *Runner) Down() ([]string, error) {
	done, err := r.applied()
	if err != nil {
		return nil, err
	}
	last := 0
	for _, a := range done {
		last = max(last, a.Batch)
	}
	if last == 0 {
		return nil, nil
	}

	var rows []applied
	if err := r.db.Where("batch = ?", last).Order("name desc").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("migration: read batch %d: %w", last, err)
	}

	mu.Lock()
	byName := make(map[string]entry, len(registry))
	for k, v := range registry {
		byName[k] = v
	}
	mu.Unlock()

	var reverted []string
	for _, row := range rows {
		e, ok := byName[row.Name]
		if !ok {
			return reverted, fmt.Errorf("migration: %s ran but is no longer registered", row.Name)
		}
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := e.down(tx); err != nil {
				return err
			}
			return tx.Delete(&applied{}, row.ID).Error
		})
		if err != nil {
			return reverted, fmt.Errorf("migration: revert %s: %w", row.Name, err)
		}
		logger.Info("migration reverted", "name", row.Name, "batch", last)
		reverted = append(reverted, row.Name)
	}
	return reverted, nil
}

// Status lists every registered migration in run order.
func (r *Runner) Status() ([]State, error) {
	done, err := r.applied()
	if err != nil {
		return nil, err
	}
	all := sorted()
	out := make([]State, len(all))
	for i, e := range all {
		a := done[e.name]
		out[i] = State{Name: e.name, Batch: a.Batch, RunAt: a.RunAt}
	}
	return out, nil
}
