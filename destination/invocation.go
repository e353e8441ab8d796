// Package destination implements a concrete DestinationClient: it
// encodes register-part and register-upload invocations as JSON and
// posts them to a capability-invocation HTTP endpoint, decoding the
// response into a migrate.Receipt.
//
// It is a reference adapter; the core (package migrate) never imports
// it — the CLI wires the two together through the migrate.DestinationClient
// interface, the way spec.md §4.6 specifies.
package destination

import (
	"encoding/json"

	"github.com/storacha/migrate-to-w3up/migrate"
)

// invocationWire is the on-wire JSON shape of a capability invocation,
// modeled on the opaque "invocation transport codec" spec.md §1 treats
// as an external collaborator: we only need enough structure to carry
// Can/With/Args/Proofs to the destination and to get a receipt back.
type invocationWire struct {
	Can    string         `json:"can"`
	With   string         `json:"with"`
	Args   map[string]any `json:"nb"`
	Proofs []string       `json:"prf,omitempty"`
}

func toWire(inv migrate.Invocation) invocationWire {
	w := invocationWire{Can: inv.Can, With: inv.With, Args: inv.Args}
	if inv.Auth != nil {
		w.Proofs = inv.Auth.Proofs()
	}
	return w
}

// receiptWire mirrors the subset of spec.md §6's ReceiptJSON the client
// needs to decode; the fx and meta fields pass through as raw JSON, and
// any other unknown fields are dropped.
type receiptWire struct {
	Ran       string                `json:"ran,omitempty"`
	Out       receiptOutWire        `json:"out"`
	Issuer    string                `json:"issuer,omitempty"`
	Signature string                `json:"signature,omitempty"`
	Fx        json.RawMessage       `json:"fx,omitempty"`
	Meta      json.RawMessage       `json:"meta,omitempty"`
}

type receiptOutWire struct {
	Ok    *migrate.ReceiptOk  `json:"ok,omitempty"`
	Error *migrate.ReceiptErr `json:"error,omitempty"`
}

func (r receiptWire) toReceipt() migrate.Receipt {
	return migrate.Receipt{
		Ran:       r.Ran,
		Ok:        r.Out.Ok,
		Err:       r.Out.Error,
		Issuer:    r.Issuer,
		Signature: r.Signature,
		Fx:        r.Fx,
		Meta:      r.Meta,
	}
}
