// Package sqlite implements an audit record store on an SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/okanmail/okan/pkg/config"
	"github.com/okanmail/okan/pkg/extension"
	"github.com/okanmail/okan/pkg/storage"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// visitBatch is the number of records passed to each VisitRecords callback.
const visitBatch = 500

const schema = `
CREATE TABLE IF NOT EXISTS records (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	date INTEGER NOT NULL,
	sender TEXT NOT NULL,
	subject TEXT NOT NULL,
	to_count INTEGER NOT NULL,
	cc_count INTEGER NOT NULL,
	bcc_count INTEGER NOT NULL,
	alert_count INTEGER NOT NULL,
	cannot_send INTEGER NOT NULL,
	reason TEXT NOT NULL,
	needs_confirmation INTEGER NOT NULL,
	checklist BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_date ON records(date);
`

const recordColumns = `id, date, sender, subject, to_count, cc_count, bcc_count, alert_count,
	cannot_send, reason, needs_confirmation, checklist`

// Store keeps records in an SQLite database.
type Store struct {
	db      *sql.DB
	cap     int
	extHost *extension.Host
}

var _ storage.Store = &Store{}

// New opens or creates the database named by the "path" parameter.
func New(cfg config.Storage, extHost *extension.Host) (storage.Store, error) {
	path := cfg.Params["path"]
	if path == "" {
		return nil, errors.New("'path' parameter not specified")
	}
	return Open(path, cfg.MaxRecords, extHost)
}

// Open opens the database at path.  A positive maxRecords drops the oldest records beyond it.
func Open(path string, maxRecords int, extHost *extension.Host) (*Store, error) {
	slog := log.With().Str("module", "storage").Str("path", path).Logger()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open record DB: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		slog.Warn().Err(err).Msg("Failed to set WAL journal mode")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create record schema: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("record DB ping failed: %w", err)
	}
	slog.Info().Str("phase", "startup").Msg("Opened record database")

	return &Store{db: db, cap: maxRecords, extHost: extHost}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddRecord stores r under a new ID.
func (s *Store) AddRecord(r *storage.Record) (string, error) {
	rec := *r
	rec.ID = uuid.NewString()

	_, err := s.db.Exec(`INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Date.UnixNano(), rec.Sender, rec.Subject, rec.ToCount, rec.CcCount,
		rec.BccCount, rec.AlertCount, rec.CannotSend, rec.Reason, rec.NeedsConfirmation,
		[]byte(rec.CheckList))
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	if s.extHost != nil {
		s.extHost.Events.AfterRecordStored.Emit(rec.Metadata())
	}

	if err := s.enforceCap(); err != nil {
		log.Error().Str("module", "storage").Err(err).Msg("Failed to enforce record cap")
	}
	return rec.ID, nil
}

// GetRecord returns the record with id.
func (s *Store) GetRecord(id string) (*storage.Record, error) {
	row := s.db.QueryRow(`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotExist
	}
	return rec, err
}

// GetRecords returns up to limit records, newest first.
func (s *Store) GetRecords(limit int) ([]*storage.Record, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.query(`SELECT `+recordColumns+` FROM records ORDER BY seq DESC LIMIT ?`, limit)
}

// RemoveRecord deletes the record with id.  Removing a missing record is not an error.
func (s *Store) RemoveRecord(id string) error {
	rec, err := s.GetRecord(id)
	if errors.Is(err, storage.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	s.emitDeleted(rec)
	return nil
}

// PurgeRecords deletes every record.
func (s *Store) PurgeRecords() error {
	var removed []*storage.Record
	if s.extHost != nil {
		var err error
		if removed, err = s.GetRecords(0); err != nil {
			return err
		}
	}
	if _, err := s.db.Exec(`DELETE FROM records`); err != nil {
		return fmt.Errorf("failed to purge records: %w", err)
	}
	s.emitDeleted(removed...)
	return nil
}

// VisitRecords calls f with batches of records, oldest first.
func (s *Store) VisitRecords(f func([]*storage.Record) (cont bool)) error {
	after := int64(0)
	for {
		rows, err := s.db.Query(`SELECT seq, `+recordColumns+` FROM records
			WHERE seq > ? ORDER BY seq LIMIT ?`, after, visitBatch)
		if err != nil {
			return fmt.Errorf("failed to query records: %w", err)
		}
		var batch []*storage.Record
		for rows.Next() {
			rec, err := scanRecord(rows, &after)
			if err != nil {
				rows.Close()
				return err
			}
			batch = append(batch, rec)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return err
		}
		if len(batch) == 0 || !f(batch) || len(batch) < visitBatch {
			return nil
		}
	}
}

// enforceCap deletes the oldest records beyond the record cap.
func (s *Store) enforceCap() error {
	if s.cap <= 0 {
		return nil
	}
	excess, err := s.query(`SELECT `+recordColumns+` FROM records ORDER BY seq DESC
		LIMIT -1 OFFSET ?`, s.cap)
	if err != nil {
		return err
	}
	for _, rec := range excess {
		if _, err := s.db.Exec(`DELETE FROM records WHERE id = ?`, rec.ID); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", rec.ID, err)
		}
		s.emitDeleted(rec)
	}
	return nil
}

func (s *Store) query(query string, args ...any) ([]*storage.Record, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]*storage.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) emitDeleted(recs ...*storage.Record) {
	if s.extHost == nil {
		return
	}
	for _, rec := range recs {
		s.extHost.Events.AfterRecordDeleted.Emit(rec.Metadata())
	}
}

type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads the recordColumns of a row, preceded by the seq column when seq is given.
func scanRecord(row scanner, seq ...*int64) (*storage.Record, error) {
	rec := &storage.Record{}
	var date int64
	var checkList []byte
	dest := []any{
		&rec.ID, &date, &rec.Sender, &rec.Subject, &rec.ToCount, &rec.CcCount, &rec.BccCount,
		&rec.AlertCount, &rec.CannotSend, &rec.Reason, &rec.NeedsConfirmation, &checkList,
	}
	if len(seq) > 0 {
		dest = append([]any{seq[0]}, dest...)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	rec.Date = time.Unix(0, date)
	rec.CheckList = checkList
	return rec, nil
}
