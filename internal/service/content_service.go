package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/center-cms-api/internal/dto"
	"github.com/noah-isme/center-cms-api/internal/models"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
	"github.com/noah-isme/center-cms-api/pkg/export"
	"github.com/noah-isme/center-cms-api/pkg/pagination"
	"github.com/noah-isme/center-cms-api/pkg/titles"
)

// maxExportRows bounds a single export.
const maxExportRows = 10000

// pqUniqueViolation is the SQLSTATE raised by the stripped-title index.
const pqUniqueViolation = "23505"

type contentRepository interface {
	FindOne(ctx context.Context, kind models.ContentKind, lookup models.ContentLookup) (*models.Content, error)
	CountActive(ctx context.Context, kind models.ContentKind, centerID string) (int, error)
	SliceActive(ctx context.Context, kind models.ContentKind, centerID string, offset, limit int) ([]models.Content, error)
	Create(ctx context.Context, kind models.ContentKind, content *models.Content) error
	Update(ctx context.Context, kind models.ContentKind, content *models.Content) error
	SoftDelete(ctx context.Context, kind models.ContentKind, centerID, id string) error
	Purge(ctx context.Context, kind models.ContentKind, centerID, id string) error
}

type contentConstraints interface {
	AssertExists(ctx context.Context, kind models.ContentKind, lookup models.ContentLookup) error
	AssertUniqueTitle(ctx context.Context, kind models.ContentKind, rawTitle, centerID, excludeID string) error
	AssertCenter(ctx context.Context, centerID string) error
}

type auditRepository interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type assetScheduler interface {
	Schedule(ctx context.Context, assetID string)
}

type exportRenderer interface {
	Render(format export.Format, data export.Dataset) ([]byte, error)
}

// ContentPage is one page of a center's listing.
type ContentPage struct {
	Items  []models.Content  `json:"items"`
	Window pagination.Window `json:"window"`
	Total  uint              `json:"total"`
	Cached bool              `json:"-"`
}

// ContentService implements listing and writes for every content kind.
type ContentService struct {
	repo        contentRepository
	constraints contentConstraints
	audit       auditRepository
	assets      assetScheduler
	cache       *CacheService
	paginator   pagination.Paginator
	renderer    exportRenderer
	validator   *validator.Validate
	logger      *zap.Logger
}

// ContentServiceDeps bundles the collaborators of ContentService.
type ContentServiceDeps struct {
	Repo        contentRepository
	Constraints contentConstraints
	Audit       auditRepository
	Assets      assetScheduler
	Cache       *CacheService
	Paginator   pagination.Paginator
	Renderer    exportRenderer
	Validator   *validator.Validate
	Logger      *zap.Logger
}

// NewContentService constructs a ContentService.
func NewContentService(deps ContentServiceDeps) *ContentService {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Validator == nil {
		deps.Validator = NewValidator()
	}
	if deps.Renderer == nil {
		deps.Renderer = export.NewRenderer()
	}
	if deps.Assets == nil {
		deps.Assets = (*AssetCleanupService)(nil)
	}
	return &ContentService{
		repo:        deps.Repo,
		constraints: deps.Constraints,
		audit:       deps.Audit,
		assets:      deps.Assets,
		cache:       deps.Cache,
		paginator:   deps.Paginator,
		renderer:    deps.Renderer,
		validator:   deps.Validator,
		logger:      deps.Logger,
	}
}

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// List returns one page of a center's Active records, newest first.
func (s *ContentService) List(ctx context.Context, kind models.ContentKind, centerID string, params dto.ListContentParams) (*ContentPage, error) {
	if err := s.constraints.AssertCenter(ctx, centerID); err != nil {
		return nil, err
	}

	total, err := s.repo.CountActive(ctx, kind, centerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to count %s", kind))
	}
	window := s.paginator.Paginate(params.Page, params.Size, uint(total))
	page := &ContentPage{Items: []models.Content{}, Window: window, Total: uint(total)}
	if window.Limit == 0 {
		return page, nil
	}

	key := ContentListKey(kind, centerID, window)
	var cached []models.Content
	if s.cache.Get(ctx, key, &cached) {
		page.Items = cached
		page.Cached = true
		return page, nil
	}

	items, err := s.repo.SliceActive(ctx, kind, centerID, window.Offset(), window.Size())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to list %s", kind))
	}
	if items != nil {
		page.Items = items
	}
	s.cache.Set(ctx, key, page.Items, 0)
	return page, nil
}

// Get returns the record matching lookup.
func (s *ContentService) Get(ctx context.Context, kind models.ContentKind, lookup models.ContentLookup) (*models.Content, error) {
	content, err := s.repo.FindOne(ctx, kind, lookup)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", kind.Singular()))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load %s", kind.Singular()))
	}
	return content, nil
}

// Create stores a new Active record in the scope's center.
func (s *ContentService) Create(ctx context.Context, kind models.ContentKind, scope dto.TenantScope, actor dto.Actor, req dto.CreateContentRequest) (*models.Content, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, fmt.Sprintf("invalid %s payload", kind.Singular()))
	}
	centerID, err := s.centerFor(kind, scope, actor)
	if err != nil {
		return nil, err
	}
	if err := s.constraints.AssertUniqueTitle(ctx, kind, req.Title, centerID, ""); err != nil {
		return nil, err
	}

	title := titles.Clean(req.Title)
	content := &models.Content{
		CenterID:      centerID,
		Title:         title,
		StrippedTitle: titles.Strip(title),
		Summary:       strings.TrimSpace(req.Summary),
		Body:          req.Body,
		AssetID:       nonEmpty(req.AssetID),
		AssetURL:      nonEmpty(req.AssetURL),
		Status:        models.StatusActive,
		CreatedBy:     nonEmpty(&actor.UserID),
	}
	if err := s.repo.Create(ctx, kind, content); err != nil {
		return nil, s.writeError(kind, err, "create")
	}

	s.record(ctx, kind, actor, models.AuditActionContentCreate, content.CenterID, content.ID, nil, content)
	s.cache.InvalidateContent(ctx, kind, centerID)
	return content, nil
}

// Update replaces the mutable fields of an Active record. A nil asset id
// keeps the current asset; a different one schedules the old asset for
// deletion once the write succeeds.
func (s *ContentService) Update(ctx context.Context, kind models.ContentKind, scope dto.TenantScope, actor dto.Actor, id string, req dto.UpdateContentRequest) (*models.Content, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidation(err, fmt.Sprintf("invalid %s payload", kind.Singular()))
	}
	centerID, err := s.centerFor(kind, scope, actor)
	if err != nil {
		return nil, err
	}

	lookup := models.ContentLookup{ID: id, CenterID: centerID, Filter: models.FilterActive}
	if err := s.constraints.AssertExists(ctx, kind, lookup); err != nil {
		return nil, err
	}
	existing, err := s.Get(ctx, kind, lookup)
	if err != nil {
		return nil, err
	}
	if err := s.constraints.AssertUniqueTitle(ctx, kind, req.Title, centerID, id); err != nil {
		return nil, err
	}

	before := *existing
	updated := *existing
	updated.Title = titles.Clean(req.Title)
	updated.StrippedTitle = titles.Strip(updated.Title)
	updated.Summary = strings.TrimSpace(req.Summary)
	updated.Body = req.Body
	if req.AssetID != nil {
		updated.AssetID = nonEmpty(req.AssetID)
		updated.AssetURL = nonEmpty(req.AssetURL)
	} else if req.AssetURL != nil {
		updated.AssetURL = nonEmpty(req.AssetURL)
	}

	if err := s.repo.Update(ctx, kind, &updated); err != nil {
		return nil, s.writeError(kind, err, "update")
	}

	if orphaned := replacedAsset(before.AssetID, updated.AssetID); orphaned != "" {
		s.assets.Schedule(ctx, orphaned)
	}
	s.record(ctx, kind, actor, models.AuditActionContentUpdate, centerID, id, &before, &updated)
	s.cache.InvalidateContent(ctx, kind, centerID)
	return &updated, nil
}

// Delete flips an Active record to SoftDeleted. Its asset is kept so the
// record can still be restored out of band.
func (s *ContentService) Delete(ctx context.Context, kind models.ContentKind, scope dto.TenantScope, actor dto.Actor, id string) error {
	centerID, err := s.centerFor(kind, scope, actor)
	if err != nil {
		return err
	}
	if err := s.constraints.AssertExists(ctx, kind, models.ContentLookup{ID: id, CenterID: centerID, Filter: models.FilterActive}); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, kind, centerID, id); err != nil {
		return s.writeError(kind, err, "delete")
	}

	s.record(ctx, kind, actor, models.AuditActionContentDelete, centerID, id, nil, nil)
	s.cache.InvalidateContent(ctx, kind, centerID)
	return nil
}

// Purge physically removes a SoftDeleted record and schedules its asset for
// deletion.
func (s *ContentService) Purge(ctx context.Context, kind models.ContentKind, scope dto.TenantScope, actor dto.Actor, id string) error {
	centerID, err := s.centerFor(kind, scope, actor)
	if err != nil {
		return err
	}
	lookup := models.ContentLookup{ID: id, CenterID: centerID, Filter: models.FilterSoftDeleted}
	if err := s.constraints.AssertExists(ctx, kind, lookup); err != nil {
		return err
	}
	existing, err := s.Get(ctx, kind, lookup)
	if err != nil {
		return err
	}
	if err := s.repo.Purge(ctx, kind, centerID, id); err != nil {
		return s.writeError(kind, err, "purge")
	}

	if existing.AssetID != nil {
		s.assets.Schedule(ctx, *existing.AssetID)
	}
	s.record(ctx, kind, actor, models.AuditActionContentPurge, centerID, id, existing, nil)
	return nil
}

// Export renders every Active record of a center.
func (s *ContentService) Export(ctx context.Context, kind models.ContentKind, centerID string, format export.Format) (*dto.ExportResult, error) {
	if format != export.FormatCSV && format != export.FormatPDF {
		return nil, appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "unsupported export format"), []appErrors.FieldError{
			{Field: "format", Rule: "oneof", Message: "format must be csv or pdf"},
		})
	}

	total, err := s.repo.CountActive(ctx, kind, centerID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to count %s", kind))
	}
	if total > maxExportRows {
		total = maxExportRows
	}
	items := []models.Content{}
	if total > 0 {
		items, err = s.repo.SliceActive(ctx, kind, centerID, 0, total)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to list %s", kind))
		}
	}

	dataset := export.Dataset{
		Title:   string(kind),
		Headers: []string{"id", "title", "summary", "asset_url", "created_at"},
		Rows:    make([][]string, 0, len(items)),
	}
	for _, item := range items {
		assetURL := ""
		if item.AssetURL != nil {
			assetURL = *item.AssetURL
		}
		dataset.Rows = append(dataset.Rows, []string{item.ID, item.Title, item.Summary, assetURL, item.CreatedAt.UTC().Format(time.RFC3339)})
	}

	data, err := s.renderer.Render(format, dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &dto.ExportResult{
		Filename:    fmt.Sprintf("%s-%s-%s.%s", kind, centerID, time.Now().UTC().Format("20060102"), format),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}

// centerFor resolves the tenant of a write. The pipeline-resolved center
// always wins over the body's center_id.
func (s *ContentService) centerFor(kind models.ContentKind, scope dto.TenantScope, actor dto.Actor) (string, error) {
	if scope.Overridden() {
		s.logger.Info("client center_id overridden",
			zap.String("kind", string(kind)),
			zap.String("user_id", actor.UserID),
			zap.String("client_center_id", scope.ClientSupplied),
			zap.String("center_id", scope.ServerTrusted),
		)
	}
	centerID := scope.Resolve()
	if centerID == "" {
		return "", appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "center is required"), []appErrors.FieldError{
			{Field: "center_id", Rule: "required", Message: "center_id is required"},
		})
	}
	return centerID, nil
}

func (s *ContentService) writeError(kind models.ContentKind, err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", kind.Singular()))
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		msg := fmt.Sprintf("a %s with a similar title already exists", kind.Singular())
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrConflict, msg), []appErrors.FieldError{
			{Field: "title", Rule: "unique", Message: msg},
		})
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to %s %s", op, kind.Singular()))
}

func (s *ContentService) record(ctx context.Context, kind models.ContentKind, actor dto.Actor, action, centerID, id string, before, after *models.Content) {
	if s.audit == nil {
		return
	}
	entry := &models.AuditLog{
		CenterID:   &centerID,
		UserID:     nonEmpty(&actor.UserID),
		Action:     action,
		Resource:   string(kind),
		ResourceID: &id,
		IPAddress:  actor.IP,
		UserAgent:  actor.UserAgent,
	}
	if before != nil {
		entry.OldValues, _ = json.Marshal(before)
	}
	if after != nil {
		entry.NewValues, _ = json.Marshal(after)
	}
	if err := s.audit.CreateAuditLog(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.String("resource_id", id), zap.Error(err))
	}
}

func replacedAsset(before, after *string) string {
	if before == nil || *before == "" {
		return ""
	}
	if after != nil && *after == *before {
		return ""
	}
	return *before
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
