// Package outcome implements the newline-delimited JSON wire format for
// migration outcomes described in spec.md §6, plus the log-readback
// helper that recovers re-runnable Upload descriptors from a log of
// UploadMigrationFailure lines.
package outcome

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/storacha/migrate-to-w3up/migrate"
)

// uploadJSON mirrors the legacy upload shape preserved verbatim in every
// outcome line: _id, cid, name, parts, created, updated.
type uploadJSON struct {
	ID      string   `json:"_id,omitempty"`
	CID     string   `json:"cid"`
	Name    string   `json:"name,omitempty"`
	Parts   []string `json:"parts"`
	Created string   `json:"created,omitempty"`
	Updated string   `json:"updated,omitempty"`
	DAGSize int64    `json:"dagSize,omitempty"`
}

func toUploadJSON(u migrate.Upload) uploadJSON {
	j := uploadJSON{ID: u.ID, CID: u.CID, Name: u.Name, Parts: u.Parts, DAGSize: u.DAGSize}
	if !u.CreatedAt.IsZero() {
		j.Created = u.CreatedAt.Format(timeLayout)
	}
	if !u.UpdatedAt.IsZero() {
		j.Updated = u.UpdatedAt.Format(timeLayout)
	}
	return j
}

func (j uploadJSON) toUpload() migrate.Upload {
	u := migrate.Upload{
		ID:      j.ID,
		CID:     j.CID,
		Name:    j.Name,
		Parts:   j.Parts,
		DAGSize: j.DAGSize,
	}
	if t, err := time.Parse(time.RFC3339, j.Created); err == nil {
		u.CreatedAt = t.UTC()
	}
	if t, err := time.Parse(time.RFC3339, j.Updated); err == nil {
		u.UpdatedAt = t.UTC()
	}
	return u
}

const timeLayout = "2006-01-02T15:04:05.000Z"

// receiptJSON mirrors spec.md §6's ReceiptJSON shape.
type receiptJSON struct {
	Type      string          `json:"type"`
	Ran       string          `json:"ran,omitempty"`
	Out       receiptOutJSON  `json:"out"`
	Issuer    string          `json:"issuer,omitempty"`
	Signature string          `json:"signature,omitempty"`
	Fx        json.RawMessage `json:"fx,omitempty"`
	Meta      json.RawMessage `json:"meta,omitempty"`
}

type receiptOutJSON struct {
	Ok    *migrate.ReceiptOk  `json:"ok,omitempty"`
	Error *migrate.ReceiptErr `json:"error,omitempty"`
}

func toReceiptJSON(r migrate.Receipt) receiptJSON {
	return receiptJSON{
		Type:      "Receipt",
		Ran:       r.Ran,
		Out:       receiptOutJSON{Ok: r.Ok, Error: r.Err},
		Issuer:    r.Issuer,
		Signature: r.Signature,
		Fx:        r.Fx,
		Meta:      r.Meta,
	}
}

type addJSON struct {
	Receipt receiptJSON `json:"receipt"`
}

type copyJSON struct {
	Status int `json:"status"`
}

type partUploadJSON struct {
	CID string `json:"cid"`
}

// partSuccessJSON is the per-part entry inside a successful outcome's
// "parts" map.
type partSuccessJSON struct {
	Part   string          `json:"part"`
	Add    addJSON         `json:"add"`
	Copy   *copyJSON       `json:"copy"`
	Upload *partUploadJSON `json:"upload,omitempty"`
}

// partFailureJSON is the per-part entry inside a failed outcome's "parts"
// map, for parts that did not succeed.
type partFailureJSON struct {
	Part   string          `json:"part"`
	Upload *partUploadJSON `json:"upload,omitempty"`
	Cause  causeJSON       `json:"cause"`
}

type causeJSON struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func toCauseJSON(c migrate.Cause) causeJSON {
	return causeJSON{Name: string(c.Kind), Message: c.Error()}
}

func toPartSuccessJSON(p migrate.PartSuccess) partSuccessJSON {
	j := partSuccessJSON{
		Part: p.PartCID,
		Add:  addJSON{Receipt: toReceiptJSON(p.RegisterReceipt)},
	}
	if p.CopyResponseStatus != nil {
		j.Copy = &copyJSON{Status: *p.CopyResponseStatus}
	}
	if p.RegisterReceipt.Ok != nil && p.RegisterReceipt.Ok.Link != "" {
		j.Upload = &partUploadJSON{CID: p.RegisterReceipt.Ok.Link}
	}
	return j
}

// successLine is the on-wire shape of an UploadMigrationSuccess line.
type successLine struct {
	Type  string                     `json:"type"`
	Upload uploadJSON                `json:"upload"`
	Parts map[string]partSuccessJSON `json:"parts"`
	Add   addJSON                    `json:"add"`
}

// failureLine is the on-wire shape of an UploadMigrationFailure line.
// Its "parts" map may hold either a succeeded part (partSuccessJSON) or a
// failed one (partFailureJSON); we marshal each entry directly as
// json.RawMessage to allow the mix spec.md §6 describes.
type failureLine struct {
	Type   string                     `json:"type"`
	Upload uploadJSON                 `json:"upload"`
	Parts  map[string]json.RawMessage `json:"parts"`
	Cause  causeJSON                  `json:"cause"`
}

// Marshal renders a single outcome as one NDJSON line (without the
// trailing newline).
func Marshal(o migrate.Outcome) ([]byte, error) {
	switch v := o.(type) {
	case migrate.UploadSuccess:
		parts := make(map[string]partSuccessJSON, len(v.Parts))
		for cid, p := range v.Parts {
			parts[cid] = toPartSuccessJSON(p)
		}
		return json.Marshal(successLine{
			Type:   "UploadMigrationSuccess",
			Upload: toUploadJSON(v.Upload),
			Parts:  parts,
			Add:    addJSON{Receipt: toReceiptJSON(v.BindReceipt)},
		})

	case migrate.UploadFailure:
		parts := make(map[string]json.RawMessage, len(v.Parts))
		for cid, p := range v.Parts {
			var raw []byte
			var err error
			switch entry := p.(type) {
			case migrate.PartSuccess:
				raw, err = json.Marshal(toPartSuccessJSON(entry))
			case migrate.PartFailure:
				raw, err = json.Marshal(partFailureJSON{
					Part:  entry.PartCID,
					Cause: toCauseJSON(entry.Cause),
				})
			default:
				err = fmt.Errorf("unknown part outcome type %T", p)
			}
			if err != nil {
				return nil, err
			}
			parts[cid] = raw
		}
		return json.Marshal(failureLine{
			Type:   "UploadMigrationFailure",
			Upload: toUploadJSON(v.Upload),
			Parts:  parts,
			Cause:  toCauseJSON(v.Cause),
		})

	default:
		return nil, fmt.Errorf("unknown outcome type %T", o)
	}
}

// envelope is used only to sniff the "type" discriminator before
// deciding how to decode the rest of a line.
type envelope struct {
	Type   string     `json:"type"`
	Upload uploadJSON `json:"upload"`
}

// IsSuccess reports whether a raw NDJSON outcome line is an
// UploadMigrationSuccess.
func IsSuccess(line []byte) (bool, error) {
	var e envelope
	if err := json.Unmarshal(line, &e); err != nil {
		return false, err
	}
	switch e.Type {
	case "UploadMigrationSuccess":
		return true, nil
	case "UploadMigrationFailure":
		return false, nil
	default:
		return false, fmt.Errorf("unknown outcome type %q", e.Type)
	}
}

// ExtractUploadsFromFailures reads NDJSON outcome lines from r and
// returns the Upload embedded in every UploadMigrationFailure line, in
// file order, implementing the round-trip law from spec.md §8: feeding
// these back into a new migration run yields exactly that many outcomes.
func ExtractUploadsFromFailures(r io.Reader) ([]migrate.Upload, error) {
	var uploads []migrate.Upload

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var e envelope
		if err := json.Unmarshal(line, &e); err != nil {
			return nil, fmt.Errorf("decode outcome line: %w", err)
		}
		if e.Type != "UploadMigrationFailure" {
			continue
		}

		uploads = append(uploads, e.Upload.toUpload())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan outcome log: %w", err)
	}

	return uploads, nil
}
