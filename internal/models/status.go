package models

// Status is the record lifecycle shared by users and tenant-scoped content.
type Status int

const (
	StatusSoftDeleted Status = 0
	StatusActive      Status = 1
	// StatusPending is reserved; no operation transitions into it.
	StatusPending Status = 2
)

// StatusFilter selects which lifecycle states a lookup accepts.
type StatusFilter int

const (
	// FilterActive accepts only Active records. Normal reads and edits use it.
	FilterActive StatusFilter = iota
	// FilterSoftDeleted accepts only SoftDeleted records, for purge flows.
	FilterSoftDeleted
	// FilterAny ignores status, for internal lookups.
	FilterAny
)

// Matches reports whether s passes the filter.
func (f StatusFilter) Matches(s Status) bool {
	switch f {
	case FilterActive:
		return s == StatusActive
	case FilterSoftDeleted:
		return s == StatusSoftDeleted
	default:
		return true
	}
}

// Status returns the single status the filter pins, or false for FilterAny.
func (f StatusFilter) Status() (Status, bool) {
	switch f {
	case FilterActive:
		return StatusActive, true
	case FilterSoftDeleted:
		return StatusSoftDeleted, true
	default:
		return 0, false
	}
}
