package service

import (
	"context"
	"fmt"
	"strings"

	"nyamalink/internal/models"
	"nyamalink/internal/store"
	"nyamalink/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService handles account registration and admin queries. Token issuance
// is handled by the auth gateway, not here.
type UserService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(store *store.Store) *UserService {
	return &UserService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// RegisterRequest represents a new account
type RegisterRequest struct {
	Name        string          `json:"name" binding:"required"`
	Email       string          `json:"email" binding:"required,email"`
	Password    string          `json:"password" binding:"required,min=8"`
	PhoneNumber string          `json:"phone_number"`
	Role        string          `json:"role" binding:"required"`
	Location    models.GeoPoint `json:"location"`
}

var validRoles = map[string]bool{
	models.RoleCustomer: true,
	models.RoleButcher:  true,
	models.RoleAgent:    true,
}

// Register creates an account with a bcrypt password hash. Admin accounts
// are provisioned out of band, never through this endpoint.
func (us *UserService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if !validRoles[req.Role] {
		return nil, fmt.Errorf("%w: role must be customer, butcher or agent", ErrValidation)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err := us.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		PhoneNumber:  req.PhoneNumber,
		Role:         req.Role,
		Longitude:    req.Location.Longitude,
		Latitude:     req.Location.Latitude,
	}

	if err := us.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	us.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("role", user.Role))
	return user, nil
}

// GetProfile retrieves the caller's own account
func (us *UserService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := us.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return user, nil
}

// ListUsers retrieves accounts for the admin dashboard
func (us *UserService) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	if role != "" && !validRoles[role] && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}
	return us.store.ListUsers(ctx, role)
}

// PlatformCounts returns per-role account counts for the admin dashboard
func (us *UserService) PlatformCounts(ctx context.Context) (map[string]int64, error) {
	return us.store.CountUsersByRole(ctx)
}
