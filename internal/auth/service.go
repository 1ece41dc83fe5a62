package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/localnerve/fabrica/internal/models"
	"github.com/localnerve/fabrica/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultRole is assigned to self-registered users.
const DefaultRole = "User"

// Service manages local user accounts for the JWT auth mode.
type Service struct {
	DB *gorm.DB
}

// NewService returns an account service over db.
func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Register creates a user. The requested role is honored only while the
// users table is empty, so the first account can bootstrap as Admin;
// afterwards self-registration always gets the default role.
func (s *Service) Register(ctx context.Context, email, name, password, role string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, types.InvalidSchema("Email and password are required")
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, types.Collaborator(err)
	}
	if count > 0 || role == "" {
		role = DefaultRole
	}

	var existing models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, types.InvalidSchema("User '%s' already exists", email)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, types.Collaborator(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, types.Collaborator(err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		Role:         role,
		PasswordHash: string(hash),
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, types.Collaborator(err)
	}

	return &user, nil
}

// Login verifies the credentials and returns the user.
func (s *Service) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, types.Unauthenticated("Invalid email or password")
	}
	if err != nil {
		return nil, types.Collaborator(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, types.Unauthenticated("Invalid email or password")
	}

	return &user, nil
}

// IdentityFor maps a stored user onto the caller identity.
func IdentityFor(user *models.User) *Identity {
	return &Identity{ID: user.ID, Role: user.Role, Email: user.Email, Name: user.Name}
}
