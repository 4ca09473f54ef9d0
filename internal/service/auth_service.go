package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/center-cms-api/internal/models"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

type tokenSigner interface {
	Sign(userID, centerID string) (string, time.Time, error)
	Expiry() time.Duration
}

// AuthService issues bearer tokens to center staff.
type AuthService struct {
	users     authUserRepository
	audit     auditRepository
	tokens    tokenSigner
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, audit auditRepository, tokens tokenSigner, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &AuthService{users: users, audit: audit, tokens: tokens, validator: validate, logger: logger}
}

// Login authenticates an Active, Granted user by email and password.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, "invalid login payload")
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}
	if user.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrUserUnavailable, "")
	}
	switch user.Access {
	case models.AccessSuspended:
		return nil, appErrors.Clone(appErrors.ErrAccessSuspended, "")
	case models.AccessRevoked:
		return nil, appErrors.Clone(appErrors.ErrAccessRevoked, "")
	}

	accessToken, _, err := s.tokens.Sign(user.ID, user.CenterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create access token")
	}

	now := time.Now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	if s.audit != nil {
		if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
			CenterID:   &user.CenterID,
			UserID:     &user.ID,
			Action:     models.AuditActionLogin,
			Resource:   "auth",
			ResourceID: &user.ID,
			NewValues:  []byte(`{"status":"success"}`),
			IPAddress:  req.IP,
			UserAgent:  req.UserAgent,
		}); err != nil {
			s.logger.Warn("failed to record login audit log", zap.Error(err))
		}
	}

	return &models.LoginResponse{
		AccessToken: accessToken,
		ExpiresIn:   int64(s.tokens.Expiry().Seconds()),
		IssuedAt:    now,
		User: models.UserInfo{
			ID:       user.ID,
			CenterID: user.CenterID,
			Email:    user.Email,
			FullName: user.FullName,
			Role:     user.Role,
		},
	}, nil
}
