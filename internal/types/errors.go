package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrPolicyDisallowed = errors.New("url disallowed by path policy")
	ErrControlNotFound  = errors.New("load-more control not found")
	ErrControlInvisible = errors.New("load-more control not visible")
	ErrStaleControl     = errors.New("load-more control reference is stale")
	ErrMissingField     = errors.New("required field missing")
	ErrInvalidURL       = errors.New("invalid URL")
)

// RevealError wraps errors that end the reveal loop. Transient reveal
// errors (control gone, invisible, stale past retry) are expected
// termination signals, not scrape failures.
type RevealError struct {
	Clicks    int
	Err       error
	Transient bool
}

func (e *RevealError) Error() string {
	return fmt.Sprintf("reveal stopped after %d clicks: %v", e.Clicks, e.Err)
}

func (e *RevealError) Unwrap() error { return e.Err }

func (e *RevealError) IsTransient() bool { return e.Transient }

// ExtractError wraps a per-item extraction failure. It carries the item's
// batch index so skipped items can be traced back to the rendered page.
type ExtractError struct {
	Index int
	Field string
	Err   error
}

func (e *ExtractError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("extract item %d (field=%q): %v", e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("extract item %d: %v", e.Index, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// PriceParseError wraps a numeric parse failure during discount
// computation. The discount is omitted; the record is still emitted.
type PriceParseError struct {
	Original string
	Sale     string
	Err      error
}

func (e *PriceParseError) Error() string {
	return fmt.Sprintf("price parse (original=%q, sale=%q): %v", e.Original, e.Sale, e.Err)
}

func (e *PriceParseError) Unwrap() error { return e.Err }

// SessionError wraps fatal collaborator failures: the browser session
// cannot be created or the page cannot be navigated. These propagate to
// the caller; everything else is absorbed locally.
type SessionError struct {
	Stage string
	URL   string
	Err   error
}

func (e *SessionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("session %s for %s: %v", e.Stage, e.URL, e.Err)
	}
	return fmt.Sprintf("session %s: %v", e.Stage, e.Err)
}

func (e *SessionError) Unwrap() error { return e.Err }
