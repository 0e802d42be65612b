package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

var ErrNoPrice = errors.New("no price for selection")

// Config is the pricing table structure. Prices are integer cents keyed by
// product id, then size bucket, then customized-side count ("1".."4").
type Config struct {
	Currency    string                                  `json:"currency"`
	SizeBuckets map[string]string                       `json:"sizeBuckets"`
	Pricebook   map[string]map[string]map[string]int64  `json:"pricebook"`
}

// Engine answers price lookups for the order flow. The customizer core never
// computes prices; it only reports how many sides were customized.
type Engine struct {
	config Config
}

// Load reads and validates the pricing config file.
func Load(path string) (*Engine, error) {
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
		path = filepath.Join(wd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pricing config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse pricing config: %w", err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid pricing config: %w", err)
	}

	return &Engine{config: cfg}, nil
}

// NewEngine builds an engine from an in-memory config.
func NewEngine(cfg Config) (*Engine, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return &Engine{config: cfg}, nil
}

func validate(cfg Config) error {
	if cfg.Currency == "" {
		return errors.New("currency is required")
	}
	if len(cfg.Pricebook) == 0 {
		return errors.New("pricebook is required")
	}
	return nil
}

// Currency returns the pricebook currency code.
func (e *Engine) Currency() string {
	return e.config.Currency
}

// UnitPrice returns the per-unit price in cents for a product, size, and
// customized-side count. Sizes map through size buckets when configured.
func (e *Engine) UnitPrice(productID, size string, customizedSides int) (int64, error) {
	bySize, ok := e.config.Pricebook[productID]
	if !ok {
		return 0, fmt.Errorf("%w: product %q", ErrNoPrice, productID)
	}

	bucket := size
	if mapped, ok := e.config.SizeBuckets[size]; ok {
		bucket = mapped
	}

	byCount, ok := bySize[bucket]
	if !ok {
		// Single-size products use "*"
		byCount, ok = bySize["*"]
		if !ok {
			return 0, fmt.Errorf("%w: product %q size %q", ErrNoPrice, productID, size)
		}
	}

	if customizedSides < 1 {
		customizedSides = 1
	}

	// Fall back to the highest configured tier for counts past the table.
	for n := customizedSides; n >= 1; n-- {
		if price, ok := byCount[strconv.Itoa(n)]; ok {
			return price, nil
		}
	}

	return 0, fmt.Errorf("%w: product %q size %q sides %d", ErrNoPrice, productID, size, customizedSides)
}

// Quote returns the total in cents for a quantity of units.
func (e *Engine) Quote(productID, size string, customizedSides, quantity int) (int64, error) {
	if quantity < 1 {
		quantity = 1
	}
	unit, err := e.UnitPrice(productID, size, customizedSides)
	if err != nil {
		return 0, err
	}
	return unit * int64(quantity), nil
}
