package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"system-mirror/core/database"
	"system-mirror/core/provider"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSchema is returned when the journal table lacks expected columns.
var ErrSchema = errors.New("journal table schema mismatch")

const batchSize = 100

// Journal persists added and removed records for one monitor session.
type Journal struct {
	db      *gorm.DB
	session string
	logger  *zap.Logger
	now     func() time.Time
}

// New migrates the journal table, verifies its columns and starts a new
// session.
func New(db *gorm.DB, logger *zap.Logger) (*Journal, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal: %w", err)
	}

	missing, err := database.MissingColumns(db, Record{}.TableName(), columns)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrSchema, strings.Join(missing, ", "))
	}

	j := &Journal{
		db:      db,
		session: uuid.NewString(),
		logger:  logger.Named("journal"),
		now:     time.Now,
	}
	j.logger.Info("Journal session started", zap.String("session", j.session))
	return j, nil
}

// Session returns the id stamped on every record written by this journal.
func (j *Journal) Session() string {
	return j.session
}

// Write stores records in batches.
func (j *Journal) Write(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		records[i].Session = j.session
	}
	if err := j.db.WithContext(ctx).CreateInBatches(records, batchSize).Error; err != nil {
		return fmt.Errorf("failed to write journal: %w", err)
	}
	return nil
}

// Query filters History. Zero fields match everything.
type Query struct {
	Provider string
	Key      string
	Kind     string
	Session  string
	Since    time.Time
	Limit    int
}

// History returns matching records, newest first.
func (j *Journal) History(ctx context.Context, q Query) ([]Record, error) {
	tx := j.db.WithContext(ctx).Model(&Record{})
	if q.Provider != "" {
		tx = tx.Where("provider = ?", q.Provider)
	}
	if q.Key != "" {
		tx = tx.Where("item_key = ?", q.Key)
	}
	if q.Kind != "" {
		tx = tx.Where("kind = ?", q.Kind)
	}
	if q.Session != "" {
		tx = tx.Where("session = ?", q.Session)
	}
	if !q.Since.IsZero() {
		tx = tx.Where("occurred_at >= ?", q.Since)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var records []Record
	if err := tx.Order("id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return records, nil
}

// Describe renders a key and value into the key, name and detail columns.
type Describe[K comparable, V any] func(key K, value *V) (string, string, string)

// Follow consumes changes of one provider until the channel closes, writing
// added and removed records once per cycle.
func Follow[K comparable, V any](ctx context.Context, j *Journal, name string, changes <-chan provider.Change[K, V], describe Describe[K, V]) {
	var pending []Record

	for c := range changes {
		switch c.Kind {
		case provider.Added, provider.Removed:
			key, label, detail := describe(c.Key, &c.Value)
			kind, at := KindAdded, c.AddedAt
			if c.Kind == provider.Removed {
				kind, at = KindRemoved, c.RemovedAt
			}
			if at.IsZero() {
				at = j.now()
			}
			pending = append(pending, Record{
				Provider:   name,
				ItemKey:    key,
				Kind:       kind,
				Name:       label,
				Detail:     detail,
				Cycle:      c.Cycle,
				OccurredAt: at,
			})
		case provider.Updated:
			if err := j.Write(context.WithoutCancel(ctx), pending); err != nil {
				j.logger.Warn("Dropping journal records", zap.String("provider", name), zap.Int("records", len(pending)), zap.Error(err))
			}
			pending = pending[:0]
		}
	}

	if err := j.Write(context.WithoutCancel(ctx), pending); err != nil {
		j.logger.Warn("Dropping journal records", zap.String("provider", name), zap.Int("records", len(pending)), zap.Error(err))
	}
}
