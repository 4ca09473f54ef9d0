package dto

// Actor identifies who performed a write, for the audit trail.
type Actor struct {
	UserID    string
	IP        string
	UserAgent string
}
