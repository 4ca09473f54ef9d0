package models

// PrincipalKind tags the variant held by a Principal.
type PrincipalKind string

const (
	PrincipalAnonymous PrincipalKind = "anonymous"
	PrincipalAPIKey    PrincipalKind = "api_key"
	PrincipalUser      PrincipalKind = "user"
)

// Principal is the resolved identity of a caller. Exactly one of APIKey and
// User is set unless Kind is PrincipalAnonymous.
type Principal struct {
	Kind   PrincipalKind
	APIKey *KeyPrincipal
	User   *UserPrincipal
}

// KeyPrincipal is the service identity behind a validated API key.
type KeyPrincipal struct {
	KeyID  string
	Class  KeyClass
	Status KeyStatus
}

// UserPrincipal is the staff identity behind a validated token and role check.
type UserPrincipal struct {
	UserID   string
	Role     UserRole
	Access   UserAccess
	CenterID string
}

// Anonymous returns the principal of an unauthenticated caller.
func Anonymous() Principal {
	return Principal{Kind: PrincipalAnonymous}
}

// Elevated reports whether the principal carries rights beyond anonymous access.
func (p Principal) Elevated() bool {
	return p.Kind == PrincipalAPIKey || p.Kind == PrincipalUser
}

// ResolvedContext is the outcome of resolving raw credentials: the caller's
// principal and, when a token was presented, what it asserted.
type ResolvedContext struct {
	Principal Principal
	Token     *TokenIdentity
}

// CenterID returns the tenant bound to the principal, if any.
func (r ResolvedContext) CenterID() string {
	if r.Principal.User != nil {
		return r.Principal.User.CenterID
	}
	if r.Token != nil {
		return r.Token.CenterID
	}
	return ""
}
