package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/center-cms-api/internal/models"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
)

type apiKeyRepository interface {
	FindByKey(ctx context.Context, key string) (*models.APIKey, error)
}

type principalUserRepository interface {
	FindByIDWithRoles(ctx context.Context, id string, roles []models.UserRole) (*models.User, error)
}

type tokenVerifier interface {
	Verify(raw string) (*models.TokenIdentity, error)
}

// AllRoles is the role set used when any known role is acceptable.
var AllRoles = []models.UserRole{models.RoleAdministrator, models.RoleStaff, models.RoleStudent}

// IdentityResolver turns raw credentials into principals. Its only side
// effects are the key and user lookups.
type IdentityResolver struct {
	keys   apiKeyRepository
	users  principalUserRepository
	tokens tokenVerifier
	logger *zap.Logger
}

// NewIdentityResolver constructs an IdentityResolver.
func NewIdentityResolver(keys apiKeyRepository, users principalUserRepository, tokens tokenVerifier, logger *zap.Logger) *IdentityResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityResolver{keys: keys, users: users, tokens: tokens, logger: logger}
}

// ResolveKey looks up raw and checks it against the allowed classes. An empty
// allowed set accepts any class.
func (r *IdentityResolver) ResolveKey(ctx context.Context, raw string, allowed ...models.KeyClass) (*models.KeyPrincipal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingKey, "")
	}

	key, err := r.keys.FindByKey(ctx, raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrWrongKeyClass, wrongClassMessage(allowed))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load api key")
	}
	if key.Status == models.KeyStatusRevoked {
		return nil, appErrors.Clone(appErrors.ErrKeyUnavailable, "")
	}
	if len(allowed) > 0 && !classAllowed(key.Class, allowed) {
		return nil, appErrors.Clone(appErrors.ErrWrongKeyClass, wrongClassMessage(allowed))
	}

	return &models.KeyPrincipal{KeyID: key.ID, Class: key.Class, Status: key.Status}, nil
}

// ResolveToken verifies raw and returns the subject and center it carries.
func (r *IdentityResolver) ResolveToken(raw string) (*models.TokenIdentity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, appErrors.Clone(appErrors.ErrMissingToken, "")
	}
	return r.tokens.Verify(raw)
}

// ResolveUser loads the token's subject restricted to roles and checks that
// the account may still act. The returned principal carries the user's own
// center, which callers must prefer over anything the client sent.
func (r *IdentityResolver) ResolveUser(ctx context.Context, identity *models.TokenIdentity, roles []models.UserRole) (*models.UserPrincipal, error) {
	if identity == nil || identity.SubjectUserID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidTokenPayload, "")
	}

	user, err := r.users.FindByIDWithRoles(ctx, identity.SubjectUserID, roles)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrRoleMismatch, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if user.Status == models.StatusSoftDeleted {
		return nil, appErrors.Clone(appErrors.ErrUserUnavailable, "")
	}
	switch user.Access {
	case models.AccessSuspended:
		return nil, appErrors.Clone(appErrors.ErrAccessSuspended, "")
	case models.AccessRevoked:
		return nil, appErrors.Clone(appErrors.ErrAccessRevoked, "")
	}

	if identity.CenterID != "" && identity.CenterID != user.CenterID {
		r.logger.Info("token center differs from account center",
			zap.String("user_id", user.ID),
			zap.String("token_center_id", identity.CenterID),
			zap.String("center_id", user.CenterID),
		)
	}

	return &models.UserPrincipal{
		UserID:   user.ID,
		Role:     user.Role,
		Access:   user.Access,
		CenterID: user.CenterID,
	}, nil
}

// Resolve classifies whatever credentials are present without requiring
// any. No credentials resolve to the anonymous principal; a token takes
// precedence over a key when both are sent.
func (r *IdentityResolver) Resolve(ctx context.Context, rawKey, rawToken string) (*models.ResolvedContext, error) {
	resolved := &models.ResolvedContext{Principal: models.Anonymous()}

	if strings.TrimSpace(rawKey) != "" {
		key, err := r.ResolveKey(ctx, rawKey)
		if err != nil {
			return nil, err
		}
		resolved.Principal = models.Principal{Kind: models.PrincipalAPIKey, APIKey: key}
	}

	if strings.TrimSpace(rawToken) != "" {
		identity, err := r.ResolveToken(rawToken)
		if err != nil {
			return nil, err
		}
		user, err := r.ResolveUser(ctx, identity, AllRoles)
		if err != nil {
			return nil, err
		}
		resolved.Token = identity
		resolved.Principal.Kind = models.PrincipalUser
		resolved.Principal.User = user
	}

	return resolved, nil
}

func classAllowed(class models.KeyClass, allowed []models.KeyClass) bool {
	for _, c := range allowed {
		if c == class {
			return true
		}
	}
	return false
}

func wrongClassMessage(allowed []models.KeyClass) string {
	if len(allowed) == 0 {
		return ""
	}
	names := make([]string, len(allowed))
	for i, c := range allowed {
		names[i] = strings.ToLower(string(c))
	}
	return "api key must be one of: " + strings.Join(names, ", ")
}
