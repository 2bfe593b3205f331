package services

import (
	"fmt"
	"log"
	"time"

	"lapak/internal/models"
	"lapak/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for seller authentication.
type AuthService struct {
	sellerRepo repositories.SellerRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(sellerRepo repositories.SellerRepository, jwtSecret string) *AuthService {
	return &AuthService{
		sellerRepo: sellerRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterSeller registers a new seller, hashes their password, and saves
// them to the database.
func (s *AuthService) RegisterSeller(seller *models.Seller) error {
	// Check if username or email already exists
	if existing, err := s.sellerRepo.GetByUsername(seller.Username); err == nil && existing != nil {
		return fmt.Errorf("username '%s' already taken", seller.Username)
	}
	if existing, err := s.sellerRepo.GetByEmail(seller.Email); err == nil && existing != nil {
		return fmt.Errorf("email '%s' already registered", seller.Email)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(seller.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	seller.Password = string(hashedPassword)

	if err := s.sellerRepo.Create(seller); err != nil {
		return fmt.Errorf("failed to register seller: %w", err)
	}
	return nil
}

// LoginSeller authenticates a seller and returns a JWT token if successful.
func (s *AuthService) LoginSeller(username, password string) (string, error) {
	seller, err := s.sellerRepo.GetByUsername(username)
	if err != nil {
		// Do not reveal whether the username exists
		return "", fmt.Errorf("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(seller.Password), []byte(password)); err != nil {
		return "", fmt.Errorf("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"seller_id": seller.ID,
		"username":  seller.Username,
		"exp":       time.Now().Add(s.tokenDurat).Unix(),
		"iat":       time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}
