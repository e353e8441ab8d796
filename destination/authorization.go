package destination

import (
	"encoding/json"
	"fmt"
	"os"
)

// DelegationSet is a migrate.Authorization backed by a flat list of
// opaque, base64-ish delegation proofs, the way the teacher's
// AuthManager loads a flat list of Credentials from a JSON config file
// (cmd/s3_server/auth.go) rather than deriving them on the fly. The core
// never parses these; it only forwards Proofs() onto the invocation.
type DelegationSet struct {
	proofs []string
}

// NewDelegationSet wraps an already-decoded list of proofs.
func NewDelegationSet(proofs []string) DelegationSet {
	return DelegationSet{proofs: proofs}
}

// LoadDelegationSet reads a JSON array of opaque proof strings from
// path, the on-disk shape a CLI's "-proof" flag would point at. Key
// material and delegation encoding are explicitly out of scope for this
// repo (spec.md §1); this only has to pass the opaque blobs through.
func LoadDelegationSet(path string) (DelegationSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DelegationSet{}, fmt.Errorf("read delegation file: %w", err)
	}

	var proofs []string
	if err := json.Unmarshal(data, &proofs); err != nil {
		return DelegationSet{}, fmt.Errorf("decode delegation file: %w", err)
	}

	return NewDelegationSet(proofs), nil
}

// Proofs implements migrate.Authorization.
func (d DelegationSet) Proofs() []string {
	return d.proofs
}
