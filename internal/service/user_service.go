package service

import (
	"context"
	"time"

	"backend/internal/apperror"
	"backend/internal/logging"
	"backend/internal/model"
	"backend/internal/password"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

// DTOs for Request validation
type CreateUserRequest struct {
	CustomerID uint   `json:"customer_id" binding:"required"`
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	FirstName  string `json:"first_name" binding:"required"`
	LastName   string `json:"last_name" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// UserResponse is the public projection of an AppUser. Credential material
// never appears here.
type UserResponse struct {
	UserID     uint   `json:"user_id"`
	CustomerID uint   `json:"customer_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// UserService is the credential store: user provisioning, password policy and
// credential verification.
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest, actor string) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	// VerifyCredentials checks a username/password pair. A wrong password is
	// (nil, false, nil); a corrupt stored hash is an error and is audited.
	VerifyCredentials(ctx context.Context, username, plaintext string) (*UserResponse, bool, error)
	GetUserByID(ctx context.Context, id uint) (*UserResponse, error)
	ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error)
}

// UserServiceConfig carries the externally supplied credential settings
type UserServiceConfig struct {
	PasswordPolicy password.Policy
	JWTSecret      []byte
	TokenTTL       time.Duration
}

type userService struct {
	repo         repository.UserRepository
	customerRepo repository.CustomerRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	logs         *logging.Loggers
	cfg          UserServiceConfig
}

// NewUserService returns a new instance of UserService
func NewUserService(
	repo repository.UserRepository,
	customerRepo repository.CustomerRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	logs *logging.Loggers,
	cfg UserServiceConfig,
) UserService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	return &userService{
		repo:         repo,
		customerRepo: customerRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		logs:         logs,
		cfg:          cfg,
	}
}

// Helper: parse model to standard json API response
func mapUserToResponse(user *model.AppUser) *UserResponse {
	return &UserResponse{
		UserID:     user.UserID,
		CustomerID: user.CustomerID,
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		CreatedAt:  user.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  user.UpdatedAt.Format(time.RFC3339),
	}
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest, actor string) (*UserResponse, error) {
	if req.Username == "" || req.FirstName == "" || req.LastName == "" || req.CustomerID == 0 {
		return nil, apperror.Validation("username, first_name, last_name and customer_id are required")
	}

	if !password.IsComplex(req.Password, s.cfg.PasswordPolicy) {
		return nil, apperror.PasswordPolicy("password must be at least %d characters", s.cfg.PasswordPolicy.MinimumCharacters)
	}

	// The owning customer must exist before we hand it a user
	if _, err := s.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
		return nil, apperror.NotFound("customer %d not found", req.CustomerID)
	}

	// Exact-match pre-check; the unique index is the concurrent backstop
	if existing, err := s.repo.GetByUsername(ctx, req.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperror.Validation("username '%s' already exists", req.Username)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.AppUser{
		CustomerID: req.CustomerID,
		Username:   req.Username,
		Password:   hash,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, user); err != nil {
			return err
		}
		return s.auditRepo.Log(txCtx, &model.AuditLog{
			Action:     model.ActionCreateUser,
			EntityID:   user.Username,
			EntityName: user.FirstName + " " + user.LastName,
			Details:    `{"customer_id":` + uitoa(user.CustomerID) + `}`,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logs.Actions.Info().
		Str("action", model.ActionCreateUser).
		Str("username", user.Username).
		Uint("customer_id", user.CustomerID).
		Str("actor", actor).
		Msg("user created")

	return mapUserToResponse(user), nil
}

func (s *userService) VerifyCredentials(ctx context.Context, username, plaintext string) (*UserResponse, bool, error) {
	user, err := s.repo.GetByUsernameWithCredentials(ctx, username)
	if err != nil {
		return nil, false, err
	}
	if user == nil {
		// Unknown principals fail closed without leaking their absence
		s.logs.Auth.Info().Str("username", username).Bool("success", false).Msg("verification attempt for unknown user")
		return nil, false, nil
	}

	ok, err := password.Verify(user.Password, plaintext)
	if err != nil {
		// A hash we cannot parse is a security-relevant event, not a
		// routine failure. Record it before surfacing.
		s.logs.Auth.Error().Str("username", username).Err(err).Msg("stored credential is corrupt")
		_ = s.auditRepo.Log(ctx, &model.AuditLog{
			UserID:   &user.UserID,
			Action:   model.ActionCorruptCredential,
			EntityID: user.Username,
		})
		return nil, false, err
	}

	s.logs.Auth.Info().Str("username", username).Bool("success", ok).Msg("verification attempt")
	if !ok {
		return nil, false, nil
	}
	return mapUserToResponse(user), true, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, ok, err := s.VerifyCredentials(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	if !ok {
		_ = s.auditRepo.Log(ctx, &model.AuditLog{
			Action:   model.ActionLoginFailed,
			EntityID: req.Username,
		})
		return nil, apperror.Validation("invalid username or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      uitoa(user.UserID),
		"username": user.Username,
		"exp":      time.Now().Add(s.cfg.TokenTTL).Unix(),
	})
	tokenString, err := token.SignedString(s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:   &user.UserID,
		Action:   model.ActionLoginSuccess,
		EntityID: user.Username,
	})

	return &TokenResponse{Token: tokenString}, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*UserResponse, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("user %d not found", id)
	}
	return mapUserToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, page, limit int) ([]UserResponse, int64, error) {
	users, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, *mapUserToResponse(&users[i]))
	}
	return responses, total, nil
}
