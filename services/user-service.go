package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"time"

	"trello-project/microservices/task-manager/logging"
	"trello-project/microservices/task-manager/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	GenerateToken(userID, username, email, role string) (string, error)
}

type UserService struct {
	users  UserStore
	tokens TokenIssuer
	now    func() time.Time
}

func NewUserService(users UserStore, tokens TokenIssuer) *UserService {
	return &UserService{users: users, tokens: tokens, now: time.Now}
}

type RegisterRequest struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return validationf("password must be at least 8 characters long")
	}
	if !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		return validationf("password must contain at least one uppercase letter")
	}
	if !strings.ContainsAny(password, "0123456789") {
		return validationf("password must contain at least one number")
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if len(username) < 3 || len(username) > 30 {
		return nil, validationf("username must be between 3 and 30 characters")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationf("invalid email address")
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return nil, validationf("invalid role %q", role)
	}
	if role == models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin accounts cannot self-register", ErrForbidden)
	}
	return s.create(ctx, username, email, req.Password, role)
}

func (s *UserService) create(ctx context.Context, username, email, password string, role models.Role) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		ID:        primitive.NewObjectID(),
		Username:  html.EscapeString(username),
		Email:     email,
		Password:  string(hashed),
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrDuplicate) {
			return nil, validationf("username or email already in use")
		}
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User '%s' registered with role %s", user.Username, user.Role)
	return user, nil
}

// EnsureAdmin creates the configured administrator when it does not exist yet.
func (s *UserService) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if username == "" {
		return nil
	}
	_, err := s.users.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if _, err := s.create(ctx, username, strings.ToLower(email), password, models.RoleAdmin); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: ADMIN_SEEDED, Description: Administrator '%s' created", username)
	return nil
}

// Login checks credentials and returns the user with a signed token.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, string, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Wrong password for user '%s'", user.Username)
		return nil, "", fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}
	token, err := s.tokens.GenerateToken(user.ID.Hex(), user.Username, user.Email, string(user.Role))
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), err)
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, actor Actor) ([]models.User, error) {
	if actor.Role != models.RoleTeamManager && !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
