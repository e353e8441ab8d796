package migrate

import "fmt"

// CauseKind is the exhaustive set of reasons a part or upload can fail.
type CauseKind string

const (
	// CauseCancelled means a cancellation token fired before the step
	// completed.
	CauseCancelled CauseKind = "Cancelled"
	// CauseBadFetch means the part fetcher returned non-2xx, a missing or
	// invalid content-length, or a transport failure.
	CauseBadFetch CauseKind = "BadFetch"
	// CauseRegister means the register-part invocation receipt was Err.
	CauseRegister CauseKind = "Register"
	// CauseCopy means the byte pass-through response was not 2xx.
	CauseCopy CauseKind = "Copy"
	// CauseProtocol means the receipt's Ok.Status was neither "done" nor
	// "upload", or the receipt was structurally invalid.
	CauseProtocol CauseKind = "Protocol"
	// CauseBind means the register-upload invocation receipt was Err, or
	// its transport failed.
	CauseBind CauseKind = "Bind"
	// CauseSomePartsFailed is the Assembler's aggregate cause: at least
	// one part of the upload failed.
	CauseSomePartsFailed CauseKind = "SomePartsFailed"
)

// Cause is the structured, chainable error every PartFailure and
// UploadFailure carries. It implements error so it can be returned or
// wrapped like any other Go error, and it serializes directly to the
// outcome log's "cause" field.
type Cause struct {
	Kind    CauseKind
	Message string
	Receipt *Receipt // set for Register and Bind causes, when available
	Failed  int      // SomePartsFailed only: number of parts that failed
	Total   int      // SomePartsFailed only: total distinct parts
}

func (c Cause) Error() string {
	if c.Kind == CauseSomePartsFailed {
		return fmt.Sprintf("%s: %d/%d parts failed", c.Kind, c.Failed, c.Total)
	}
	if c.Message == "" {
		return string(c.Kind)
	}
	return fmt.Sprintf("%s: %s", c.Kind, c.Message)
}

func newCause(kind CauseKind, err error) Cause {
	c := Cause{Kind: kind}
	if err != nil {
		c.Message = err.Error()
	}
	return c
}

func registerFailureCause(receipt *Receipt) Cause {
	c := Cause{Kind: CauseRegister, Receipt: receipt}
	if receipt != nil && receipt.Err != nil {
		c.Message = receipt.Err.Message
	}
	return c
}

func bindFailureCause(receipt *Receipt, err error) Cause {
	if err != nil {
		return newCause(CauseBind, err)
	}
	c := Cause{Kind: CauseBind, Receipt: receipt}
	if receipt != nil && receipt.Err != nil {
		c.Message = receipt.Err.Message
	}
	return c
}

func somePartsFailedCause(failed, total int) Cause {
	return Cause{Kind: CauseSomePartsFailed, Failed: failed, Total: total}
}
