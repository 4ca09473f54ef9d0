package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/center-cms-api/internal/dto"
	"github.com/noah-isme/center-cms-api/internal/middleware"
	"github.com/noah-isme/center-cms-api/internal/models"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
	"github.com/noah-isme/center-cms-api/pkg/response"
)

type loginService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

type sessionResolver interface {
	Resolve(ctx context.Context, rawKey, rawToken string) (*models.ResolvedContext, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service  loginService
	resolver sessionResolver
	fields   middleware.CredentialConfig
}

// NewAuthHandler creates a new handler. fields must name the same request
// fields the authorization pipeline reads.
func NewAuthHandler(svc loginService, resolver sessionResolver, fields middleware.CredentialConfig) *AuthHandler {
	return &AuthHandler{service: svc, resolver: resolver, fields: fields}
}

// Login godoc
// @Summary Authenticate staff user
// @Description Authenticate user by email and password and issue an access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security ApiKeyAuth
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Session godoc
// @Summary Describe the current caller
// @Description Resolves whatever credentials are present; none yields an anonymous session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	rawKey := middleware.Credential(c, h.fields.KeyField)
	rawToken := middleware.Credential(c, h.fields.TokenField)

	resolved, err := h.resolver.Resolve(c.Request.Context(), rawKey, rawToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.NewSessionResponse(resolved), nil)
}
