package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vbonduro/boxoffice/internal/blobstore"
	"github.com/vbonduro/boxoffice/internal/domain"
)

// Entry is one movie in a catalog file. Price is kept as text so it goes
// through the same validation as form input. Image is a file path, relative
// to the catalog file when not absolute.
type Entry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image,omitempty"`
}

type Catalog struct {
	Movies []Entry `yaml:"movies"`
}

// Load reads a YAML catalog such as:
//
//	movies:
//	  - name: Snitch
//	    description: A father goes undercover for the DEA.
//	    price: 11.99
//	    image: posters/snitch.jpg
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range c.Movies {
		if img := c.Movies[i].Image; img != "" && !filepath.IsAbs(img) {
			c.Movies[i].Image = filepath.Join(dir, img)
		}
	}
	return &c, nil
}

// Write stores c as YAML at path.
func (c *Catalog) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write catalog: %w", err)
	}
	return nil
}

// Request turns the entry into a submission request, reading its image if any.
func (e Entry) Request() (domain.SubmissionRequest, error) {
	req := domain.SubmissionRequest{
		Name:        e.Name,
		Description: e.Description,
		PriceText:   e.Price,
	}
	if e.Image == "" {
		return req, nil
	}

	data, err := os.ReadFile(e.Image)
	if err != nil {
		return req, fmt.Errorf("failed to read image for %q: %w", e.Name, err)
	}
	req.Asset = &domain.Asset{Data: data, MimeType: blobstore.ExtToMimeType(e.Image)}
	return req, nil
}

// Missing returns the entries whose names are not yet taken by existing
// movies, compared case-insensitively.
func Missing(entries []Entry, existing []*domain.Movie) []Entry {
	taken := make(map[string]bool, len(existing))
	for _, m := range existing {
		taken[strings.ToLower(strings.TrimSpace(m.Name))] = true
	}

	var out []Entry
	for _, e := range entries {
		if !taken[strings.ToLower(strings.TrimSpace(e.Name))] {
			out = append(out, e)
		}
	}
	return out
}

// Default is the catalog the mobile app shipped with.
func Default() *Catalog {
	return &Catalog{Movies: []Entry{
		{
			Name:        "Snitch",
			Description: "A father goes undercover for the DEA in order to free his son, who was imprisoned after being set up in a drug deal.",
			Price:       "11.99",
		},
		{
			Name:        "Blue Beetle",
			Description: "A young man discovers an alien scarab that transforms him into the superhero Blue Beetle.",
			Price:       "12.49",
		},
		{
			Name:        "Damsel",
			Description: "A young woman is framed for the murder of a brutal ruler and must navigate a dangerous world to prove her innocence and discover the true enemy.",
			Price:       "13.99",
		},
		{
			Name:        "John Wick: Chapter 4",
			Description: "The legendary hitman John Wick is on the run after killing a member of the international assassin's guild, and with a $14 million price tag on his head, he is the target of hitmen and women everywhere.",
			Price:       "14.99",
		},
	}}
}
