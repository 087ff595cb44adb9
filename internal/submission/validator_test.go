package submission

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vbonduro/boxoffice/internal/domain"
)

var poster = &domain.Asset{Data: []byte{0xFF, 0xD8, 0xFF, 0xE0}, MimeType: "image/jpeg"}

func TestValidatorValidate(t *testing.T) {
	tests := []struct {
		name         string
		requireAsset bool
		req          domain.SubmissionRequest
		want         Violations
	}{
		{
			name: "valid with asset",
			req:  domain.SubmissionRequest{Name: "Snitch", Description: "A father goes undercover.", PriceText: "11.99", Asset: poster},
			want: Violations{},
		},
		{
			name:         "valid without asset when optional",
			requireAsset: false,
			req:          domain.SubmissionRequest{Name: "Damsel", Description: "Framed.", PriceText: "13.99"},
			want:         Violations{},
		},
		{
			name:         "missing asset when required",
			requireAsset: true,
			req:          domain.SubmissionRequest{Name: "Damsel", Description: "Framed.", PriceText: "13.99"},
			want:         Violations{"image": "required"},
		},
		{
			name:         "empty asset counts as missing",
			requireAsset: true,
			req:          domain.SubmissionRequest{Name: "Damsel", Description: "Framed.", PriceText: "13.99", Asset: &domain.Asset{}},
			want:         Violations{"image": "required"},
		},
		{
			name: "blank name",
			req:  domain.SubmissionRequest{Name: "", Description: "d", PriceText: "1"},
			want: Violations{"name": "required"},
		},
		{
			name: "whitespace description",
			req:  domain.SubmissionRequest{Name: "n", Description: "  \t", PriceText: "1"},
			want: Violations{"description": "required"},
		},
		{
			name: "blank price",
			req:  domain.SubmissionRequest{Name: "n", Description: "d", PriceText: " "},
			want: Violations{"price": "required"},
		},
		{
			name: "negative price",
			req:  domain.SubmissionRequest{Name: "n", Description: "d", PriceText: "-1"},
			want: Violations{"price": "must be a non-negative number"},
		},
		{
			name: "non-numeric price",
			req:  domain.SubmissionRequest{Name: "n", Description: "d", PriceText: "twelve"},
			want: Violations{"price": "must be a non-negative number"},
		},
		{
			name: "NaN price",
			req:  domain.SubmissionRequest{Name: "n", Description: "d", PriceText: "NaN"},
			want: Violations{"price": "must be a non-negative number"},
		},
		{
			name: "free is fine",
			req:  domain.SubmissionRequest{Name: "n", Description: "d", PriceText: "0"},
			want: Violations{},
		},
		{
			name:         "everything missing",
			requireAsset: true,
			req:          domain.SubmissionRequest{},
			want: Violations{
				"name":        "required",
				"description": "required",
				"price":       "required",
				"image":       "required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validator{RequireAsset: tt.requireAsset}
			got := v.Validate(tt.req)
			assert.Equal(t, tt.want, got)
			// Validation is pure: a second call yields the same answer.
			assert.Equal(t, got, v.Validate(tt.req))
		})
	}
}

func TestParsePrice(t *testing.T) {
	p, err := ParsePrice(" 11.99 ")
	assert.NoError(t, err)
	assert.Equal(t, 11.99, p)

	p, err = ParsePrice("-0")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, p)

	_, err = ParsePrice("+Inf")
	assert.Error(t, err)
}

func TestViolationsString(t *testing.T) {
	v := Violations{"price": "required", "name": "required"}
	assert.Equal(t, "name: required, price: required", v.String())
}
