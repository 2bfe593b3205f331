package repositories

import (
	"fmt"

	"lapak/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMSellerRepository is a GORM implementation of SellerRepository.
type GORMSellerRepository struct {
	db *gorm.DB
}

// NewGORMSellerRepository creates a new instance of GORMSellerRepository.
func NewGORMSellerRepository(db *gorm.DB) *GORMSellerRepository {
	return &GORMSellerRepository{
		db: db,
	}
}

// GetByID retrieves a seller by ID.
func (r *GORMSellerRepository) GetByID(id string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.First(&seller, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("seller with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get seller by ID %s: %w", id, err)
	}
	return &seller, nil
}

// GetByUsername retrieves a seller by username.
func (r *GORMSellerRepository) GetByUsername(username string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.First(&seller, "username = ?", username).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("seller with username %s %w", username, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get seller by username %s: %w", username, err)
	}
	return &seller, nil
}

// GetByEmail retrieves a seller by email.
func (r *GORMSellerRepository) GetByEmail(email string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.First(&seller, "email = ?", email).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("seller with email %s %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get seller by email %s: %w", email, err)
	}
	return &seller, nil
}

// Create inserts a new seller account.
func (r *GORMSellerRepository) Create(seller *models.Seller) error {
	if seller.ID == "" {
		seller.ID = uuid.New().String()
	}
	if err := r.db.Create(seller).Error; err != nil {
		return fmt.Errorf("failed to create seller: %w", err)
	}
	return nil
}
