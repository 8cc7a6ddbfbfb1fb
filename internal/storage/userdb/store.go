// Package userdb implements UserDataStore using BadgerHold.
// It stores all user domain data as generic UserRecord entries.
package userdb

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/andresilva/b3folio/internal/common"
	"github.com/andresilva/b3folio/internal/models"
)

// Store implements interfaces.UserDataStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
}

// NewStore creates a new UserDataStore backed by BadgerHold.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create userdb path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open userdb at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("UserDB opened")
	return &Store{db: db, logger: logger}, nil
}

// keySep is the composite key separator. Using a null byte prevents collisions
// when userID, subject, or key contain ":" characters.
const keySep = "\x00"

// compositeKey builds the storage key: user_id + \x00 + subject + \x00 + key
func compositeKey(userID, subject, key string) string {
	return userID + keySep + subject + keySep + key
}

func (s *Store) Get(_ context.Context, userID, subject, key string) (*models.UserRecord, error) {
	ck := compositeKey(userID, subject, key)
	var rec models.UserRecord
	if err := s.db.Get(ck, &rec); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("%s '%s' not found for user '%s'", subject, key, userID)
		}
		return nil, fmt.Errorf("failed to get %s '%s': %w", subject, key, err)
	}
	return &rec, nil
}

func (s *Store) Put(_ context.Context, record *models.UserRecord) error {
	ck := compositeKey(record.UserID, record.Subject, record.Key)
	now := time.Now()

	// Read existing to increment version
	var existing models.UserRecord
	if err := s.db.Get(ck, &existing); err == nil {
		record.Version = existing.Version + 1
	} else {
		record.Version = 1
	}
	record.DateTime = now

	if err := s.db.Upsert(ck, record); err != nil {
		return fmt.Errorf("failed to put %s '%s': %w", record.Subject, record.Key, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, userID, subject, key string) error {
	ck := compositeKey(userID, subject, key)
	if err := s.db.Delete(ck, models.UserRecord{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete %s '%s': %w", subject, key, err)
	}
	return nil
}

func (s *Store) List(_ context.Context, userID, subject string) ([]*models.UserRecord, error) {
	var all []models.UserRecord
	query := badgerhold.Where("UserID").Eq(userID).And("Subject").Eq(subject)
	if err := s.db.Find(&all, query); err != nil {
		return nil, fmt.Errorf("failed to list %s records: %w", subject, err)
	}
	result := make([]*models.UserRecord, 0, len(all))
	for i := range all {
		rec := all[i]
		result = append(result, &rec)
	}
	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].DateTime.After(result[j].DateTime)
	})
	return result, nil
}

// Close shuts down the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
