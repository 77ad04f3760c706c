package repositories

import (
	"github.com/clearforum/backend/internal/models"
	"gorm.io/gorm"
)

// ProfileRepository defines the interface for profile lookups
type ProfileRepository interface {
	GetProfileByID(id uint) (*models.Profile, error)
	GetProfileByEmail(email string) (*models.Profile, error)
	CreateProfile(profile *models.Profile) error
}

// PostgresProfileRepository implements ProfileRepository for PostgreSQL
type PostgresProfileRepository struct {
	db *gorm.DB
}

// NewPostgresProfileRepository creates a new PostgresProfileRepository
func NewPostgresProfileRepository(db *gorm.DB) *PostgresProfileRepository {
	return &PostgresProfileRepository{db: db}
}

func (r *PostgresProfileRepository) GetProfileByID(id uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) GetProfileByEmail(email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.Where("email = ?", email).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresProfileRepository) CreateProfile(profile *models.Profile) error {
	return r.db.Create(profile).Error
}
