package dto

// CreateContentRequest is the payload shared by every content kind on create.
// CenterID is accepted for compatibility but never trusted.
type CreateContentRequest struct {
	CenterID string  `json:"center_id"`
	Title    string  `json:"title" validate:"required,max=255"`
	Summary  string  `json:"summary" validate:"max=1000"`
	Body     string  `json:"body"`
	AssetID  *string `json:"asset_id" validate:"omitempty,max=255"`
	AssetURL *string `json:"asset_url" validate:"omitempty,url"`
}

// UpdateContentRequest replaces the mutable fields of a content record.
type UpdateContentRequest struct {
	CenterID string  `json:"center_id"`
	Title    string  `json:"title" validate:"required,max=255"`
	Summary  string  `json:"summary" validate:"max=1000"`
	Body     string  `json:"body"`
	AssetID  *string `json:"asset_id" validate:"omitempty,max=255"`
	AssetURL *string `json:"asset_url" validate:"omitempty,url"`
}

// ListContentParams carries raw paging input; nil means "not supplied".
type ListContentParams struct {
	Page *int
	Size *int
}

// ExportResult is a rendered export ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}
