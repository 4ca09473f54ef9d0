package models

import "time"

// KeyClass is the trust tier of an API key.
type KeyClass string

const (
	KeyClassRoot     KeyClass = "ROOT"
	KeyClassInternal KeyClass = "INTERNAL"
	KeyClassExternal KeyClass = "EXTERNAL"
)

// KeyStatus tracks revocation. Active -> Revoked is the only transition.
type KeyStatus string

const (
	KeyStatusActive  KeyStatus = "ACTIVE"
	KeyStatusRevoked KeyStatus = "REVOKED"
)

// APIKey is a service credential provisioned out-of-band by administrators.
type APIKey struct {
	ID        string    `db:"id" json:"id"`
	Key       string    `db:"key" json:"-"`
	Label     string    `db:"label" json:"label"`
	Class     KeyClass  `db:"class" json:"class"`
	Status    KeyStatus `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
