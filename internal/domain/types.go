package domain

import "fmt"

// MoviesCollection is the document-store collection holding movie records.
const MoviesCollection = "movies"

// Document field names. The asset URL lives under "imageUrl" so records
// written by the mobile client remain readable.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldAssetURL    = "imageUrl"
)

// Movie is one listed movie. ID is assigned once at creation; AssetURL is
// empty until an uploaded poster has been linked.
type Movie struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	AssetURL    string  `json:"imageUrl"`
}

// Fields returns the stored representation of m, without the id.
func (m *Movie) Fields() map[string]any {
	return map[string]any{
		FieldName:        m.Name,
		FieldDescription: m.Description,
		FieldPrice:       m.Price,
		FieldAssetURL:    m.AssetURL,
	}
}

// MovieFromFields rebuilds a Movie from a stored document.
func MovieFromFields(id string, fields map[string]any) (*Movie, error) {
	m := &Movie{ID: id}
	var ok bool
	if m.Name, ok = stringField(fields, FieldName); !ok {
		return nil, fmt.Errorf("movie %s: field %q is not text", id, FieldName)
	}
	if m.Description, ok = stringField(fields, FieldDescription); !ok {
		return nil, fmt.Errorf("movie %s: field %q is not text", id, FieldDescription)
	}
	if m.AssetURL, ok = stringField(fields, FieldAssetURL); !ok {
		return nil, fmt.Errorf("movie %s: field %q is not text", id, FieldAssetURL)
	}
	switch p := fields[FieldPrice].(type) {
	case float64:
		m.Price = p
	case int64:
		m.Price = float64(p)
	case int:
		m.Price = float64(p)
	case nil:
	default:
		return nil, fmt.Errorf("movie %s: field %q has type %T", id, FieldPrice, p)
	}
	return m, nil
}

func stringField(fields map[string]any, key string) (string, bool) {
	v, present := fields[key]
	if !present || v == nil {
		return "", true
	}
	s, ok := v.(string)
	return s, ok
}

// Asset is the binary payload attached to a submission, typically a poster image.
type Asset struct {
	Data     []byte
	MimeType string
}

// SubmissionRequest carries raw form input for one new movie listing.
// Asset is nil when no image was chosen.
type SubmissionRequest struct {
	Name        string
	Description string
	PriceText   string
	Asset       *Asset
}
