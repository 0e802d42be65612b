package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/maketee/maketee/backend-go/internal/design"
)

var ErrProductNotFound = errors.New("product not found")

// Color is one garment color with its per-side mockup photos.
type Color struct {
	ID     string                 `json:"id"`
	Name   string                 `json:"name"`
	Hex    string                 `json:"hex,omitempty"`
	Images map[design.Side]string `json:"images"`
}

// Product is one catalog entry the customizer can be opened for.
type Product struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	AvailableSides []design.Side `json:"availableSides"`
	Colors         []Color       `json:"colors"`
	DefaultImage   string        `json:"defaultImage"`
}

// Catalog resolves products and their base mockups per (product, color, side).
type Catalog struct {
	products map[string]Product
	order    []string
}

// Load reads and validates the catalog JSON file.
func Load(path string) (*Catalog, error) {
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var entries []Product
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	return New(entries)
}

// New builds a catalog from product entries, validating each one.
func New(entries []Product) (*Catalog, error) {
	c := &Catalog{products: make(map[string]Product, len(entries))}
	for _, p := range entries {
		if err := validateProduct(p); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.ID, err)
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, fmt.Errorf("duplicate product id %q", p.ID)
		}
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

func validateProduct(p Product) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if len(p.AvailableSides) == 0 {
		return errors.New("at least one side is required")
	}
	if p.DefaultImage == "" && len(p.Colors) == 0 {
		return errors.New("defaultImage or colors are required")
	}
	seen := make(map[design.Side]bool, len(p.AvailableSides))
	for _, s := range p.AvailableSides {
		if seen[s] {
			return fmt.Errorf("duplicate side %q", s)
		}
		seen[s] = true
	}
	return nil
}

// Get returns a product by id.
func (c *Catalog) Get(productID string) (Product, error) {
	p, ok := c.products[productID]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

// List returns all products in file order.
func (c *Catalog) List() []Product {
	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}

// ResolveMockup returns the base mockup URL for (product, color, side).
// Products without per-side color photos fall back to the default image, so a
// side switch on such products changes no pixels but is still a valid side.
func (c *Catalog) ResolveMockup(productID, colorID string, side design.Side) (string, error) {
	p, ok := c.products[productID]
	if !ok {
		return "", ErrProductNotFound
	}

	for _, col := range p.Colors {
		if col.ID != colorID {
			continue
		}
		if url, ok := col.Images[side]; ok && url != "" {
			return url, nil
		}
		break
	}

	return p.DefaultImage, nil
}

// SupportsSide reports whether the product exposes the given side.
func (p Product) SupportsSide(side design.Side) bool {
	for _, s := range p.AvailableSides {
		if s == side {
			return true
		}
	}
	return false
}
