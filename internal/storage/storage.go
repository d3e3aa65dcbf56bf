// Package storage provides an on-disk archive of exported battery health
// reports. It uses BoltDB as the underlying storage engine.
//
// Only rendered report documents are kept. Session history itself lives in
// memory and is never written here, so restarting the process always starts
// an empty session.
package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	reportsBucket = "reports"      // Bucket name for rendered report bytes
	indexBucket   = "report_index" // Bucket name for report metadata
)

// ErrReportNotFound is returned by GetReport for an unknown key.
var ErrReportNotFound = errors.New("report not found")

// ReportRecord describes one archived report.
type ReportRecord struct {
	Key       string    `json:"key"`
	SessionID string    `json:"session_id"`
	Format    string    `json:"format"`
	CreatedAt time.Time `json:"created_at"`
	Size      int       `json:"size"`
}

// Store provides persistent storage for exported reports using BoltDB.
type Store struct {
	db *bbolt.DB // BoltDB database instance
}

// New creates a new storage instance with the specified data path.
// It initializes the BoltDB database and creates necessary buckets.
func New(dataPath string) (*Store, error) {
	dbPath := filepath.Join(dataPath, "battery-reports.db")

	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(reportsBucket)); err != nil {
			return fmt.Errorf("create reports bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(indexBucket)); err != nil {
			return fmt.Errorf("create index bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func reportKey(sessionID string, at time.Time, format string) string {
	return fmt.Sprintf("%s_%020d_%s", sessionID, at.UnixNano(), format)
}

// SaveReport stores a rendered report. Keys have the form
// "session_timestamp_format" so a session's reports scan in time order.
func (s *Store) SaveReport(sessionID, format string, at time.Time, data []byte) error {
	if s.db == nil {
		return fmt.Errorf("store is closed")
	}

	key := reportKey(sessionID, at, format)
	rec := ReportRecord{
		Key:       key,
		SessionID: sessionID,
		Format:    format,
		CreatedAt: at,
		Size:      len(data),
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		meta, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal report record: %w", err)
		}
		if err := tx.Bucket([]byte(reportsBucket)).Put([]byte(key), data); err != nil {
			return fmt.Errorf("put report: %w", err)
		}
		return tx.Bucket([]byte(indexBucket)).Put([]byte(key), meta)
	})
}

// ListReports returns the archived reports of a session, oldest first.
func (s *Store) ListReports(sessionID string) ([]ReportRecord, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store is closed")
	}

	var records []ReportRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(indexBucket)).Cursor()
		prefix := []byte(sessionID + "_")

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec ReportRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				continue // Skip malformed records
			}
			records = append(records, rec)
		}
		return nil
	})

	return records, err
}

// GetReport returns the bytes of an archived report.
func (s *Store) GetReport(key string) ([]byte, error) {
	if s.db == nil {
		return nil, fmt.Errorf("store is closed")
	}

	var data []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(reportsBucket)).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("%w: %s", ErrReportNotFound, key)
		}
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}
