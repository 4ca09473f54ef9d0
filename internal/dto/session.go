package dto

import "github.com/noah-isme/center-cms-api/internal/models"

// SessionResponse describes the caller as the server sees it.
type SessionResponse struct {
	Kind     models.PrincipalKind `json:"kind"`
	KeyClass models.KeyClass      `json:"key_class,omitempty"`
	UserID   string               `json:"user_id,omitempty"`
	Role     models.UserRole      `json:"role,omitempty"`
	CenterID string               `json:"center_id,omitempty"`
}

// NewSessionResponse flattens a resolved context for the wire.
func NewSessionResponse(resolved *models.ResolvedContext) SessionResponse {
	out := SessionResponse{Kind: models.PrincipalAnonymous}
	if resolved == nil {
		return out
	}
	out.Kind = resolved.Principal.Kind
	out.CenterID = resolved.CenterID()
	if key := resolved.Principal.APIKey; key != nil {
		out.KeyClass = key.Class
	}
	if user := resolved.Principal.User; user != nil {
		out.UserID = user.UserID
		out.Role = user.Role
	}
	return out
}
