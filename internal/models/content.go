package models

import "time"

// ContentKind names one family of tenant-scoped content. Every kind shares
// the same columns and lives in its own table.
type ContentKind string

const (
	KindPosts         ContentKind = "posts"
	KindJournals      ContentKind = "journals"
	KindPolicies      ContentKind = "policies"
	KindPresentations ContentKind = "presentations"
	KindProjects      ContentKind = "projects"
	KindResearch      ContentKind = "research"
	KindGalleries     ContentKind = "galleries"
	KindTeams         ContentKind = "teams"
)

// ContentKinds lists every kind in route registration order.
var ContentKinds = []ContentKind{
	KindPosts,
	KindJournals,
	KindPolicies,
	KindPresentations,
	KindProjects,
	KindResearch,
	KindGalleries,
	KindTeams,
}

// Valid reports whether k is a known kind.
func (k ContentKind) Valid() bool {
	for _, known := range ContentKinds {
		if k == known {
			return true
		}
	}
	return false
}

// Table returns the backing table name. Kinds are a closed set, so the
// value is safe to interpolate into SQL.
func (k ContentKind) Table() string {
	return "content_" + string(k)
}

// Singular is used in user-facing messages.
func (k ContentKind) Singular() string {
	switch k {
	case KindPolicies:
		return "policy"
	case KindGalleries:
		return "gallery"
	case KindResearch:
		return "research"
	default:
		s := string(k)
		if len(s) > 1 && s[len(s)-1] == 's' {
			return s[:len(s)-1]
		}
		return s
	}
}

// Content is a tenant-scoped entity of any kind.
type Content struct {
	ID            string    `db:"id" json:"id"`
	CenterID      string    `db:"center_id" json:"center_id"`
	Title         string    `db:"title" json:"title"`
	StrippedTitle string    `db:"stripped_title" json:"stripped_title"`
	Summary       string    `db:"summary" json:"summary"`
	Body          string    `db:"body" json:"body"`
	AssetID       *string   `db:"asset_id" json:"asset_id,omitempty"`
	AssetURL      *string   `db:"asset_url" json:"asset_url,omitempty"`
	Status        Status    `db:"status" json:"status"`
	CreatedBy     *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ContentLookup identifies one record for existence checks and reads.
// An empty CenterID skips the tenant filter.
type ContentLookup struct {
	ID       string
	CenterID string
	Filter   StatusFilter
}

// TitleQuery narrows candidate rows for the uniqueness check.
type TitleQuery struct {
	CenterID      string
	Title         string
	StrippedTitle string
	ExcludeID     string
}
