package apperr

import "github.com/m-mizutani/goerr/v2"

// Error classes carried as goerr tags. Every error leaving a domain
// service or adapter carries exactly one of these.
var (
	// TagValidation: malformed or invariant-violating input. Recovered by
	// the dialog engine by reissuing the current prompt.
	TagValidation = goerr.NewTag("validation")

	// TagNotFound: referenced pet/event absent, or not the caller's
	// (owner scoping fails closed as not-found).
	TagNotFound = goerr.NewTag("not_found")

	// TagStore: persistence layer failure. The dialog engine keeps the
	// session state so the user can retry without losing the draft.
	TagStore = goerr.NewTag("store")

	// TagRender: report generation failure. No partial document is sent.
	TagRender = goerr.NewTag("render")
)

func IsValidation(err error) bool { return goerr.HasTag(err, TagValidation) }
func IsNotFound(err error) bool   { return goerr.HasTag(err, TagNotFound) }
func IsStore(err error) bool      { return goerr.HasTag(err, TagStore) }
func IsRender(err error) bool     { return goerr.HasTag(err, TagRender) }
