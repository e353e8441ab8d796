// Package migrate implements the streaming upload migration pipeline: it
// consumes a sequence of legacy Upload descriptors, registers and transfers
// each part to the destination, binds the parts to the upload, and emits
// exactly one outcome per input upload.
package migrate

import (
	"encoding/json"
	"time"
)

// Upload is a logical content-addressed object composed of one or more
// parts. It is produced by the Source and is immutable once created.
type Upload struct {
	ID        string    // opaque pass-through ("_id")
	CID       string    // root content identifier
	Parts     []string  // ordered partCIDs; may repeat, deduplicated by set for completion
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DAGSize   int64 // opaque pass-through
}

// distinctParts returns the set of unique partCIDs in the upload, used by
// the Assembler to decide when an upload is complete.
func (u Upload) distinctParts() map[string]struct{} {
	set := make(map[string]struct{}, len(u.Parts))
	for _, p := range u.Parts {
		set[p] = struct{}{}
	}
	return set
}

// FetchablePart is one part of an upload, ready to be pulled through the
// PartMigrator.
type FetchablePart struct {
	Upload  Upload
	PartCID string
}

// Receipt is the opaque, signed record a destination invocation returns.
// The pipeline only ever inspects Ok/Status/Err; everything else is
// pass-through for serialization.
type Receipt struct {
	Ran       string          `json:"ran,omitempty"`
	Ok        *ReceiptOk      `json:"ok,omitempty"`
	Err       *ReceiptErr     `json:"err,omitempty"`
	Issuer    string          `json:"issuer,omitempty"`
	Signature string          `json:"signature,omitempty"`
	Fx        json.RawMessage `json:"fx,omitempty"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

// Succeeded reports whether the receipt carries an Ok result.
func (r Receipt) Succeeded() bool { return r.Ok != nil }

// ReceiptOk is the successful result of a register-part or register-upload
// invocation.
type ReceiptOk struct {
	Status    string            `json:"status,omitempty"` // "done" | "upload" (register-part only)
	URL       string            `json:"url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Allocated int64             `json:"allocated,omitempty"`
	Link      string            `json:"link,omitempty"`
	With      string            `json:"with,omitempty"`
}

// ReceiptErr is the failed result of an invocation.
type ReceiptErr struct {
	Name    string `json:"name,omitempty"`
	Message string `json:"message,omitempty"`
}

// PartSuccess records a fully migrated part: registered with the
// destination and, if required, its bytes copied.
type PartSuccess struct {
	Upload             Upload
	PartCID            string
	RegisterReceipt    Receipt
	CopyResponseStatus *int // nil means no byte transfer was required ("done")
}

func (PartSuccess) isPartOutcome() {}

// PartFailure records a part whose migration failed for an isolated,
// typed reason. A PartFailure never aborts the pipeline; it only ever
// fails the one upload it belongs to.
type PartFailure struct {
	Upload  Upload
	PartCID string
	Cause   Cause
}

func (PartFailure) isPartOutcome() {}

// PartOutcome is the sum type PartSuccess | PartFailure.
type PartOutcome interface {
	isPartOutcome()
}

// UploadPartsReady is emitted by the Assembler once every distinct part of
// an upload has succeeded. It still needs to be bound via the Binder.
type UploadPartsReady struct {
	Upload Upload
	Parts  map[string]PartSuccess
}

// UploadFailure is the terminal failure outcome for an upload: either the
// Assembler saw at least one failed part, or the Binder's register-upload
// invocation failed.
type UploadFailure struct {
	Upload Upload
	Parts  map[string]PartOutcome
	Cause  Cause
}

func (UploadFailure) isOutcome() {}

// UploadSuccess is the terminal success outcome: every part registered
// (and copied where required) and the upload was bound.
type UploadSuccess struct {
	Upload      Upload
	Parts       map[string]PartSuccess
	BindReceipt Receipt
}

func (UploadSuccess) isOutcome() {}

// Outcome is the sum type UploadSuccess | UploadFailure, one of which is
// emitted exactly once per input Upload.
type Outcome interface {
	isOutcome()
}
