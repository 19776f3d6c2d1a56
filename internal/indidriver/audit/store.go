// Package audit persists a rolling log of dispatcher decisions for
// post-hoc operational visibility. It is read-only from the driver's
// perspective: a failed write here is logged and swallowed, never
// propagated back into a wire dispatch result, and nothing in
// pkg/indi ever consults it before deciding an outcome.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"github.com/goindi/indidriver/pkg/idgen"
)

// Store is a sqlite-backed append-only log of dispatch outcomes.
type Store struct {
	db  *gorm.DB
	gen *idgen.Generator
	log zerolog.Logger
}

// Open creates (or reuses) the sqlite database at path and migrates
// the dispatch_events table. A single open connection is kept, matching
// modernc.org/sqlite's recommended single-writer usage for an embedded
// database file.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{
		DriverName: "sqlite",
		DSN:        path,
		Conn:       sqlDB,
	}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("open gorm database: %w", err)
	}

	if err := db.AutoMigrate(&Event{}); err != nil {
		return nil, fmt.Errorf("auto migrate audit schema: %w", err)
	}

	return &Store{db: db, gen: idgen.New(), log: log}, nil
}

// Record writes one audit row. A write failure is logged and returned
// to the caller, but callers (the dispatch host) are expected to treat
// it as fire-and-forget: never surface it to the wire client.
func (s *Store) Record(ctx context.Context, device, property string, kind Kind, detail string) error {
	id, err := s.gen.GenerateAuditID()
	if err != nil {
		s.log.Error().Err(err).Msg("generate audit ID")
		return fmt.Errorf("generate audit ID: %w", err)
	}

	event := Event{
		ID:         id,
		Device:     device,
		Property:   property,
		Kind:       kind,
		Detail:     detail,
		OccurredAt: time.Now().UTC(),
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		s.log.Error().Err(err).Str("device", device).Str("kind", string(kind)).Msg("record audit event")
		return fmt.Errorf("record audit event: %w", err)
	}
	return nil
}

// List returns the most recent rows, newest first, optionally filtered
// by device. A zero or negative limit defaults to 100.
func (s *Store) List(ctx context.Context, device string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}

	var events []Event
	q := s.db.WithContext(ctx).Order("occurred_at DESC").Limit(limit)
	if device != "" {
		q = q.Where("device = ?", device)
	}
	if err := q.Find(&events).Error; err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	return events, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
