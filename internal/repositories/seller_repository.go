package repositories

import (
	"lapak/internal/models"
)

// SellerRepository defines the interface for seller account data access.
type SellerRepository interface {
	GetByID(id string) (*models.Seller, error)
	GetByUsername(username string) (*models.Seller, error)
	GetByEmail(email string) (*models.Seller, error)
	Create(seller *models.Seller) error
}
