package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"huskytrack/advisor/internal/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrVersionConflict = errors.New("profile was modified concurrently")
)

type ProfileRepository interface {
	FindByUserID(userID string) (*models.ProfileRecord, error)
	Create(userID string, profile models.UserProfile) (*models.ProfileRecord, error)
	// Update replaces the stored profile if its version still equals
	// expectedVersion, and bumps the version.
	Update(userID string, profile models.UserProfile, expectedVersion int64) (*models.ProfileRecord, error)
	// Replace overwrites the stored profile unconditionally, creating it when absent.
	Replace(userID string, profile models.UserProfile) (*models.ProfileRecord, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByUserID(userID string) (*models.ProfileRecord, error) {
	var record models.ProfileRecord
	if err := r.db.Where("user_id = ?", userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &record, nil
}

func (r *profileRepository) Create(userID string, profile models.UserProfile) (*models.ProfileRecord, error) {
	var count int64
	if err := r.db.Model(&models.ProfileRecord{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check profile: %w", err)
	}
	if count > 0 {
		return nil, ErrProfileExists
	}

	now := time.Now()
	record := &models.ProfileRecord{
		UserID:    userID,
		Profile:   datatypes.NewJSONType(profile),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := r.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	return record, nil
}

func (r *profileRepository) Update(userID string, profile models.UserProfile, expectedVersion int64) (*models.ProfileRecord, error) {
	now := time.Now()
	result := r.db.Model(&models.ProfileRecord{}).
		Where("user_id = ? AND version = ?", userID, expectedVersion).
		Updates(map[string]interface{}{
			"profile":    datatypes.NewJSONType(profile),
			"version":    expectedVersion + 1,
			"updated_at": now,
		})

	if result.Error != nil {
		return nil, fmt.Errorf("failed to update profile: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		if _, err := r.FindByUserID(userID); err != nil {
			return nil, err
		}
		return nil, ErrVersionConflict
	}

	return r.FindByUserID(userID)
}

func (r *profileRepository) Replace(userID string, profile models.UserProfile) (*models.ProfileRecord, error) {
	var out *models.ProfileRecord
	err := r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &profileRepository{db: tx}

		existing, err := txRepo.FindByUserID(userID)
		if errors.Is(err, ErrProfileNotFound) {
			out, err = txRepo.Create(userID, profile)
			return err
		}
		if err != nil {
			return err
		}

		out, err = txRepo.Update(userID, profile, existing.Version)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
