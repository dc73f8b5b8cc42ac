package enrollment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists enrollment entries.
type Store interface {
	// Insert creates entry unless (user, course) already exists; inserted is false on a duplicate.
	Insert(ctx context.Context, entry *Entry) (inserted bool, err error)
	// Complete locks the entry for (user, course) and lets mutate update it. The entry is
	// persisted, and lessonID mirrored to the legacy user list, only when mutate reports a change.
	Complete(ctx context.Context, userID, courseID, lessonID uuid.UUID, mutate func(*Entry) bool) (Entry, bool, error)
	// ListForUser returns every entry of userID.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Entry, error)
}

// GormStore is the postgres Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Insert implements Store.
func (s *GormStore) Insert(ctx context.Context, entry *Entry) (bool, error) {
	result := insertUnlessEnrolled(s.db.WithContext(ctx), entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Complete implements Store.
func (s *GormStore) Complete(ctx context.Context, userID, courseID, lessonID uuid.UUID, mutate func(*Entry) bool) (Entry, bool, error) {
	var (
		entry   Entry
		changed bool
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockEntry(tx, userID, courseID, &entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotEnrolled
			}
			return err
		}

		if changed = mutate(&entry); !changed {
			return nil
		}

		if err := tx.Model(&entry).
			Select("progress", "completed_lessons", "last_access", "updated_at").
			Updates(&entry).Error; err != nil {
			return err
		}

		return appendLegacyCompletion(tx, userID, lessonID).Error
	})
	if err != nil {
		return Entry{}, false, err
	}

	return entry, changed, nil
}

// ListForUser implements Store.
func (s *GormStore) ListForUser(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	return ListForUser(s.db.WithContext(ctx), userID)
}

// ListForUser returns the enrollments of a user, oldest first.
func ListForUser(db *gorm.DB, userID uuid.UUID) ([]Entry, error) {
	entries := make([]Entry, 0)
	err := db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func insertUnlessEnrolled(db *gorm.DB, entry *Entry) *gorm.DB {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoNothing: true,
	}).Create(entry)
}

func lockEntry(tx *gorm.DB, userID, courseID uuid.UUID, entry *Entry) *gorm.DB {
	return tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Take(entry)
}

// appendLegacyCompletion mirrors lessonID into users.completed_lessons when absent.
func appendLegacyCompletion(db *gorm.DB, userID, lessonID uuid.UUID) *gorm.DB {
	return db.Exec(`UPDATE users
		SET completed_lessons = array_append(COALESCE(completed_lessons, '{}'::uuid[]), ?::uuid)
		WHERE id = ? AND NOT (?::uuid = ANY(COALESCE(completed_lessons, '{}'::uuid[])))`,
		lessonID, userID, lessonID)
}
