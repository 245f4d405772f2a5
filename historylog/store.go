package historylog

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is a thin gorm wrapper around the call_records table.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if necessary) a sqlite-backed Store at path and
// migrates its schema. Pass ":memory:" for an ephemeral in-process store,
// typically used in tests.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("historylog: open %q: %w", path, err)
	}
	if err := db.AutoMigrate(&CallRecord{}); err != nil {
		return nil, fmt.Errorf("historylog: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// RecordInitiated inserts a new in-progress record for a just-started call.
func (s *Store) RecordInitiated(callID, localPeer, remotePeer string) error {
	rec := CallRecord{
		CallID:     callID,
		LocalPeer:  localPeer,
		RemotePeer: remotePeer,
		Status:     StatusInitiated,
		StartedAt:  time.Now(),
	}
	return s.db.Create(&rec).Error
}

// RecordConnected flips an existing record's status to connected.
func (s *Store) RecordConnected(callID string) error {
	return s.db.Model(&CallRecord{}).
		Where("call_id = ?", callID).
		Update("status", StatusConnected).Error
}

// RecordEnded closes out a record with an end timestamp and the last
// quality sample observed, if any.
func (s *Store) RecordEnded(callID string, packetLossPercent, jitterMs, roundTripMs float64) error {
	now := time.Now()
	return s.db.Model(&CallRecord{}).
		Where("call_id = ?", callID).
		Updates(map[string]any{
			"status":              StatusEnded,
			"ended_at":            now,
			"packet_loss_percent": packetLossPercent,
			"jitter_ms":           jitterMs,
			"round_trip_ms":       roundTripMs,
		}).Error
}

// RecordFailed closes out a record as failed with the given reason.
func (s *Store) RecordFailed(callID, reason string) error {
	now := time.Now()
	return s.db.Model(&CallRecord{}).
		Where("call_id = ?", callID).
		Updates(map[string]any{
			"status":         StatusFailed,
			"ended_at":       now,
			"failure_reason": reason,
		}).Error
}

// Get returns a single call's history row.
func (s *Store) Get(callID string) (*CallRecord, error) {
	var rec CallRecord
	err := s.db.Where("call_id = ?", callID).First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListRecent returns the most recent limit records, newest first.
func (s *Store) ListRecent(limit int) ([]CallRecord, error) {
	var recs []CallRecord
	err := s.db.Order("started_at desc").Limit(limit).Find(&recs).Error
	return recs, err
}

// Close releases the underlying sqlite connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
