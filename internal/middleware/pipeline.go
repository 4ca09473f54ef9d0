package middleware

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/center-cms-api/internal/models"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
	"github.com/noah-isme/center-cms-api/pkg/logger"
	"github.com/noah-isme/center-cms-api/pkg/response"
)

// Gin context keys set by an authorized request.
const (
	ContextPrincipalKey = "principal"
	ContextCenterKey    = "centerID"
)

// Stage orders gates. Credential checks must run before anything that
// dereferences what they resolved.
type Stage int

const (
	StageKey Stage = iota
	StageToken
	StageRole
)

// GateFunc checks one condition against the accumulated context and returns
// the context to hand to the next gate.
type GateFunc func(ctx context.Context, ac AuthContext) (AuthContext, error)

// Gate is a named, staged check. Needs lists gates that must appear earlier
// in the same pipeline.
type Gate struct {
	Name  string
	Stage Stage
	Needs []string
	Check GateFunc
}

// AuthContext is what the gates of one request have resolved so far.
type AuthContext struct {
	lookup func(field string) string

	RawKey string
	Key    *models.KeyPrincipal
	Token  *models.TokenIdentity
	User   *models.UserPrincipal
}

// NewAuthContext starts a context that reads credentials through lookup.
func NewAuthContext(lookup func(field string) string) AuthContext {
	if lookup == nil {
		lookup = func(string) string { return "" }
	}
	return AuthContext{lookup: lookup}
}

// Principal returns the most specific identity resolved.
func (a AuthContext) Principal() models.Principal {
	switch {
	case a.User != nil:
		return models.Principal{Kind: models.PrincipalUser, APIKey: a.Key, User: a.User}
	case a.Key != nil:
		return models.Principal{Kind: models.PrincipalAPIKey, APIKey: a.Key}
	default:
		return models.Anonymous()
	}
}

// CenterID is the server-trusted tenant: the user's own center once a role
// gate passed, otherwise the center the token asserted.
func (a AuthContext) CenterID() string {
	if a.User != nil {
		return a.User.CenterID
	}
	if a.Token != nil {
		return a.Token.CenterID
	}
	return ""
}

// Pipeline is an ordered list of gates folded left to right, stopping at the
// first failure.
type Pipeline struct {
	gates []Gate
}

// NewPipeline validates gate ordering.
func NewPipeline(gates ...Gate) (*Pipeline, error) {
	seen := make(map[string]bool, len(gates))
	for i, g := range gates {
		if g.Check == nil {
			return nil, fmt.Errorf("gate %d (%s) has no check", i, g.Name)
		}
		if i > 0 && g.Stage < gates[i-1].Stage {
			return nil, fmt.Errorf("gate %s must run before %s", g.Name, gates[i-1].Name)
		}
		for _, need := range g.Needs {
			if !seen[need] {
				return nil, fmt.Errorf("gate %s requires %s earlier in the pipeline", g.Name, need)
			}
		}
		seen[g.Name] = true
	}
	return &Pipeline{gates: append([]Gate(nil), gates...)}, nil
}

// MustPipeline is NewPipeline for route registration; it panics on a
// misordered pipeline.
func MustPipeline(gates ...Gate) *Pipeline {
	p, err := NewPipeline(gates...)
	if err != nil {
		panic(err)
	}
	return p
}

// Run applies every gate in order.
func (p *Pipeline) Run(ctx context.Context, ac AuthContext) (AuthContext, error) {
	var err error
	for _, g := range p.gates {
		if ac, err = g.Check(ctx, ac); err != nil {
			return ac, err
		}
	}
	return ac, nil
}

type rejectionRecorder interface {
	RecordAuthRejection(code string)
}

// Handler adapts the pipeline into gin middleware. On success the principal
// and the trusted center id are stored on the gin context; on failure the
// request is aborted with the classified error.
func (p *Pipeline) Handler(log *zap.Logger, metrics rejectionRecorder) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		ac := NewAuthContext(func(field string) string { return Credential(c, field) })
		out, err := p.Run(c.Request.Context(), ac)
		if err != nil {
			appErr := appErrors.FromError(err)
			if metrics != nil {
				metrics.RecordAuthRejection(appErr.Code)
			}
			c.Set(logger.RejectionKey, appErr.Code)
			log.Info("request rejected by authorization",
				zap.String("code", appErr.Code),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
			response.Abort(c, appErr)
			return
		}

		principal := out.Principal()
		c.Set(ContextPrincipalKey, principal)
		c.Set(logger.PrincipalKindKey, string(principal.Kind))
		if center := out.CenterID(); center != "" {
			c.Set(ContextCenterKey, center)
			c.Set(logger.CenterIDKey, center)
		}
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by an authorized request.
func PrincipalFrom(c *gin.Context) models.Principal {
	if v, ok := c.Get(ContextPrincipalKey); ok {
		if p, ok := v.(models.Principal); ok {
			return p
		}
	}
	return models.Anonymous()
}

// CenterFrom returns the server-trusted center id, if any.
func CenterFrom(c *gin.Context) string {
	return c.GetString(ContextCenterKey)
}
