package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/noah-isme/center-cms-api/internal/models"
	appErrors "github.com/noah-isme/center-cms-api/pkg/errors"
	"github.com/noah-isme/center-cms-api/pkg/titles"
)

type constraintRepository interface {
	Exists(ctx context.Context, kind models.ContentKind, lookup models.ContentLookup) (bool, error)
	FindTitleCandidates(ctx context.Context, kind models.ContentKind, q models.TitleQuery) ([]models.Content, error)
}

type centerRepository interface {
	FindActiveByID(ctx context.Context, id string) (*models.Center, error)
}

// ConstraintService holds the tenant-scoped predicates every content write
// runs before touching storage. It does not make check-then-write atomic;
// the partial unique index on (center_id, stripped_title) backs it up.
type ConstraintService struct {
	content constraintRepository
	centers centerRepository
}

// NewConstraintService constructs a ConstraintService.
func NewConstraintService(content constraintRepository, centers centerRepository) *ConstraintService {
	return &ConstraintService{content: content, centers: centers}
}

// AssertExists fails with NotFound unless a record matches the lookup.
func (s *ConstraintService) AssertExists(ctx context.Context, kind models.ContentKind, lookup models.ContentLookup) error {
	ok, err := s.content.Exists(ctx, kind, lookup)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to look up %s", kind.Singular()))
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", kind.Singular()))
	}
	return nil
}

// AssertUniqueTitle fails with Conflict when another Active record of the
// same kind and center has the same stripped title, or a title containing
// rawTitle. excludeID skips the record being updated.
func (s *ConstraintService) AssertUniqueTitle(ctx context.Context, kind models.ContentKind, rawTitle, centerID, excludeID string) error {
	title := titles.Clean(rawTitle)
	if title == "" {
		return appErrors.WithFields(appErrors.Clone(appErrors.ErrValidation, "title is required"), []appErrors.FieldError{
			{Field: "title", Rule: "required", Message: "title is required"},
		})
	}

	candidates, err := s.content.FindTitleCandidates(ctx, kind, models.TitleQuery{
		CenterID:      centerID,
		Title:         title,
		StrippedTitle: titles.Strip(title),
		ExcludeID:     excludeID,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check title uniqueness")
	}

	for _, existing := range candidates {
		if existing.CenterID != centerID || existing.Status != models.StatusActive {
			continue
		}
		if excludeID != "" && existing.ID == excludeID {
			continue
		}
		if titles.Collides(title, existing.Title, existing.StrippedTitle) {
			msg := fmt.Sprintf("a %s with a similar title already exists", kind.Singular())
			return appErrors.WithFields(appErrors.Clone(appErrors.ErrConflict, msg), []appErrors.FieldError{
				{Field: "title", Rule: "unique", Message: msg},
			})
		}
	}
	return nil
}

// AssertCenter fails with NotFound unless centerID names an Active center.
func (s *ConstraintService) AssertCenter(ctx context.Context, centerID string) error {
	if centerID == "" {
		return appErrors.Clone(appErrors.ErrNotFound, "center not found")
	}
	if _, err := s.centers.FindActiveByID(ctx, centerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "center not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load center")
	}
	return nil
}
