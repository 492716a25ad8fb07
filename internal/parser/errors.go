package parser

import (
	"errors"
	"fmt"
)

// Kind classifies a parser failure
type Kind int

const (
	// KindMalformed means the input was not a well-formed absolute URL
	KindMalformed Kind = iota
	// KindFetch means the page could not be retrieved
	KindFetch
	// KindParse means the page was retrieved but is not something this
	// parser can read, such as a login wall. Another parser may succeed.
	KindParse
	// KindExtraction means required fields were missing after extraction
	KindExtraction
	// KindRouting means no parser accepted the URL
	KindRouting
)

func (k Kind) String() string {
	switch k {
	case KindMalformed:
		return "malformed input"
	case KindFetch:
		return "fetch"
	case KindParse:
		return "parse"
	case KindExtraction:
		return "extraction"
	case KindRouting:
		return "routing"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// UnknownPlatform labels errors raised before any parser claimed a URL
const UnknownPlatform = "unknown"

// Error is the single error type returned by parsers and the router
type Error struct {
	Kind     Kind
	Platform string
	URL      string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s error for %s: %v", e.Platform, e.Kind, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the router may try the next eligible parser
func (e *Error) Recoverable() bool {
	return e.Kind == KindParse
}

// IsRecoverable reports whether err is a recoverable parser error
func IsRecoverable(err error) bool {
	var perr *Error
	return errors.As(err, &perr) && perr.Recoverable()
}

// KindOf returns the kind of a parser error anywhere in err's chain
func KindOf(err error) (Kind, bool) {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind, true
	}
	return 0, false
}

func newError(kind Kind, platform, rawURL string, err error) *Error {
	return &Error{Kind: kind, Platform: platform, URL: rawURL, Err: err}
}

// Malformed returns a malformed-input error for a URL no parser was tried on
func Malformed(rawURL string, err error) *Error {
	return newError(KindMalformed, UnknownPlatform, rawURL, err)
}

// NoParser returns the routing error for a URL no parser accepts
func NoParser(rawURL string) *Error {
	return newError(KindRouting, UnknownPlatform, rawURL, errors.New("no parser available"))
}
