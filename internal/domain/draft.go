package domain

import (
	"time"

	"github.com/google/uuid"
)

// DraftVersion is an immutable content snapshot of an instruction's draft.
// Every accepted save or submit appends a new version; versions are never
// updated or deleted, which makes the edit history reconstructable by
// ordering on VersionNumber.
type DraftVersion struct {
	ID            uuid.UUID
	InstructionID uuid.UUID
	VersionNumber int
	ContentHTML   string
	// Note optionally describes what changed in this version.
	Note      *string
	AuthorID  uuid.UUID
	CreatedAt time.Time
}

// Signature is the approval record captured at sign-off. It is tied to the
// instruction rather than a draft version so the final approval survives
// later edits to drafts.
type Signature struct {
	ID            uuid.UUID
	InstructionID uuid.UUID
	SignerID      uuid.UUID
	SignerName    string
	// ImageData is a base64-encoded PNG of the drawn signature.
	ImageData string
	SignedAt  time.Time
}
