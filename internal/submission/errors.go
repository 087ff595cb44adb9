package submission

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kind classifies a failed submission by the step that failed.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindPersistence
	KindUpload
	KindURLResolution
	KindReconciliation
)

// Sentinels for errors.Is; every *Error unwraps to the one matching its Kind.
var (
	ErrValidation     = errors.New("validation failed")
	ErrPersistence    = errors.New("entity write failed")
	ErrUpload         = errors.New("asset upload failed")
	ErrURLResolution  = errors.New("asset url resolution failed")
	ErrReconciliation = errors.New("asset reconciliation failed")
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPersistence:
		return "persistence"
	case KindUpload:
		return "upload"
	case KindURLResolution:
		return "url_resolution"
	case KindReconciliation:
		return "reconciliation"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindPersistence:
		return ErrPersistence
	case KindUpload:
		return ErrUpload
	case KindURLResolution:
		return ErrURLResolution
	case KindReconciliation:
		return ErrReconciliation
	default:
		return nil
	}
}

// Violations maps a form field to what is wrong with it.
type Violations map[string]string

func (v Violations) String() string {
	parts := make([]string, 0, len(v))
	for _, field := range slices.Sorted(maps.Keys(v)) {
		parts = append(parts, field+": "+v[field])
	}
	return strings.Join(parts, ", ")
}

// Error is the terminal failure of one submission attempt. MovieID is set
// once the record exists; Violations only for KindValidation.
type Error struct {
	Kind       Kind
	State      State
	MovieID    string
	Violations Violations
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.sentinel().Error())
	if e.MovieID != "" {
		fmt.Fprintf(&b, " (movie %s)", e.MovieID)
	}
	if len(e.Violations) > 0 {
		b.WriteString(": " + e.Violations.String())
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind of err, or 0 when err is not a submission error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}
