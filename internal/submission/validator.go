package submission

import (
	"math"
	"strconv"
	"strings"

	"github.com/vbonduro/boxoffice/internal/domain"
)

const (
	msgRequired    = "required"
	msgBadPrice    = "must be a non-negative number"
	msgAttached    = "already attached"
	FieldImage     = "image"
	FieldPriceText = domain.FieldPrice
)

// Validator checks a submission form before anything touches a backend.
type Validator struct {
	RequireAsset bool
}

// Validate returns the field violations of req; an empty result means valid.
func (v Validator) Validate(req domain.SubmissionRequest) Violations {
	violations := Violations{}

	if strings.TrimSpace(req.Name) == "" {
		violations[domain.FieldName] = msgRequired
	}
	if strings.TrimSpace(req.Description) == "" {
		violations[domain.FieldDescription] = msgRequired
	}
	if _, err := ParsePrice(req.PriceText); err != nil {
		if strings.TrimSpace(req.PriceText) == "" {
			violations[FieldPriceText] = msgRequired
		} else {
			violations[FieldPriceText] = msgBadPrice
		}
	}
	if v.RequireAsset && (req.Asset == nil || len(req.Asset.Data) == 0) {
		violations[FieldImage] = msgRequired
	}

	return violations
}

type priceError struct{ text string }

func (e *priceError) Error() string { return "invalid price " + strconv.Quote(e.text) }

// ParsePrice parses a ticket price such as "11.99". Negative, NaN and
// infinite values are rejected.
func ParsePrice(text string) (float64, error) {
	p, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, &priceError{text: text}
	}
	if p == 0 {
		p = 0 // "-0"
	}
	return p, nil
}
