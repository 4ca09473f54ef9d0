package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/center-cms-api/internal/dto"
	"github.com/noah-isme/center-cms-api/internal/middleware"
	"github.com/noah-isme/center-cms-api/internal/models"
	"github.com/noah-isme/center-cms-api/internal/service"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
	"github.com/noah-isme/center-cms-api/pkg/export"
	"github.com/noah-isme/center-cms-api/pkg/response"
)

type contentService interface {
	List(ctx context.Context, kind models.ContentKind, centerID string, params dto.ListContentParams) (*service.ContentPage, error)
	Get(ctx context.Context, kind models.ContentKind, lookup models.ContentLookup) (*models.Content, error)
	Create(ctx context.Context, kind models.ContentKind, scope dto.TenantScope, actor dto.Actor, req dto.CreateContentRequest) (*models.Content, error)
	Update(ctx context.Context, kind models.ContentKind, scope dto.TenantScope, actor dto.Actor, id string, req dto.UpdateContentRequest) (*models.Content, error)
	Delete(ctx context.Context, kind models.ContentKind, scope dto.TenantScope, actor dto.Actor, id string) error
	Purge(ctx context.Context, kind models.ContentKind, scope dto.TenantScope, actor dto.Actor, id string) error
	Export(ctx context.Context, kind models.ContentKind, centerID string, format export.Format) (*dto.ExportResult, error)
}

// ContentHandler serves one content kind. Routes register one handler per
// kind, all backed by the same service.
type ContentHandler struct {
	service contentService
	kind    models.ContentKind
}

// NewContentHandler constructs a handler bound to kind.
func NewContentHandler(svc contentService, kind models.ContentKind) *ContentHandler {
	return &ContentHandler{service: svc, kind: kind}
}

// Kind returns the content kind the handler serves.
func (h *ContentHandler) Kind() models.ContentKind {
	return h.kind
}

// PublicList godoc
// @Summary List published content of a center
// @Tags Public
// @Produce json
// @Param centerId path string true "Center ID"
// @Param kind path string true "Content kind"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security ApiKeyAuth
// @Router /centers/{centerId}/{kind} [get]
func (h *ContentHandler) PublicList(c *gin.Context) {
	h.list(c, strings.TrimSpace(c.Param("centerId")))
}

// PublicGet godoc
// @Summary Get published content of a center
// @Tags Public
// @Produce json
// @Param centerId path string true "Center ID"
// @Param kind path string true "Content kind"
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security ApiKeyAuth
// @Router /centers/{centerId}/{kind}/{id} [get]
func (h *ContentHandler) PublicGet(c *gin.Context) {
	h.get(c, models.ContentLookup{
		ID:       c.Param("id"),
		CenterID: strings.TrimSpace(c.Param("centerId")),
		Filter:   models.FilterActive,
	})
}

// AdminList godoc
// @Summary List content of the caller's center
// @Tags Admin
// @Produce json
// @Param kind path string true "Content kind"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security ApiKeyAuth
// @Security AccessToken
// @Router /admin/{kind} [get]
func (h *ContentHandler) AdminList(c *gin.Context) {
	h.list(c, middleware.CenterFrom(c))
}

// AdminGet godoc
// @Summary Get content of the caller's center
// @Tags Admin
// @Produce json
// @Param kind path string true "Content kind"
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security ApiKeyAuth
// @Security AccessToken
// @Router /admin/{kind}/{id} [get]
func (h *ContentHandler) AdminGet(c *gin.Context) {
	h.get(c, models.ContentLookup{
		ID:       c.Param("id"),
		CenterID: middleware.CenterFrom(c),
		Filter:   models.FilterActive,
	})
}

// InternalGet godoc
// @Summary Get content regardless of center or status
// @Tags Internal
// @Produce json
// @Param kind path string true "Content kind"
// @Param id path string true "Content ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security ApiKeyAuth
// @Router /internal/{kind}/{id} [get]
func (h *ContentHandler) InternalGet(c *gin.Context) {
	h.get(c, models.ContentLookup{ID: c.Param("id"), Filter: models.FilterAny})
}

// Create godoc
// @Summary Create content in the caller's center
// @Tags Admin
// @Accept json
// @Produce json
// @Param kind path string true "Content kind"
// @Param payload body dto.CreateContentRequest true "Content payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security ApiKeyAuth
// @Security AccessToken
// @Router /admin/{kind} [post]
func (h *ContentHandler) Create(c *gin.Context) {
	var req dto.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	scope := dto.TenantScope{ClientSupplied: req.CenterID, ServerTrusted: middleware.CenterFrom(c)}
	content, err := h.service.Create(c.Request.Context(), h.kind, scope, actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, content)
}

// Update godoc
// @Summary Update content in the caller's center
// @Tags Admin
// @Accept json
// @Produce json
// @Param kind path string true "Content kind"
// @Param id path string true "Content ID"
// @Param payload body dto.UpdateContentRequest true "Content payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security ApiKeyAuth
// @Security AccessToken
// @Router /admin/{kind}/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	var req dto.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	scope := dto.TenantScope{ClientSupplied: req.CenterID, ServerTrusted: middleware.CenterFrom(c)}
	content, err := h.service.Update(c.Request.Context(), h.kind, scope, actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content, nil)
}

// Delete godoc
// @Summary Soft delete content in the caller's center
// @Tags Admin
// @Param kind path string true "Content kind"
// @Param id path string true "Content ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security ApiKeyAuth
// @Security AccessToken
// @Router /admin/{kind}/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	scope := dto.TenantScope{ServerTrusted: middleware.CenterFrom(c)}
	if err := h.service.Delete(c.Request.Context(), h.kind, scope, actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Purge godoc
// @Summary Permanently remove soft-deleted content
// @Tags Admin
// @Param kind path string true "Content kind"
// @Param id path string true "Content ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Security ApiKeyAuth
// @Security AccessToken
// @Router /admin/{kind}/{id}/purge [delete]
func (h *ContentHandler) Purge(c *gin.Context) {
	scope := dto.TenantScope{ServerTrusted: middleware.CenterFrom(c)}
	if err := h.service.Purge(c.Request.Context(), h.kind, scope, actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export content of the caller's center
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param kind path string true "Content kind"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Security ApiKeyAuth
// @Security AccessToken
// @Router /admin/{kind}/export [get]
func (h *ContentHandler) Export(c *gin.Context) {
	format := export.Format(strings.ToLower(c.DefaultQuery("format", string(export.FormatCSV))))
	result, err := h.service.Export(c.Request.Context(), h.kind, middleware.CenterFrom(c), format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

func (h *ContentHandler) list(c *gin.Context, centerID string) {
	params := dto.ListContentParams{
		Page: queryInt(c, "page"),
		Size: queryInt(c, "size"),
	}
	page, err := h.service.List(c.Request.Context(), h.kind, centerID, params)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, page.Cached)
	response.JSON(c, http.StatusOK, page.Items, &response.Page{Window: page.Window, Total: page.Total}, middleware.ResponseMeta(c))
}

func (h *ContentHandler) get(c *gin.Context, lookup models.ContentLookup) {
	content, err := h.service.Get(c.Request.Context(), h.kind, lookup)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, content, nil)
}

// queryInt returns nil for a missing or malformed value so pagination falls
// back to its defaults instead of rejecting the request.
func queryInt(c *gin.Context, name string) *int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
