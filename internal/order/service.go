package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/maketee/maketee/backend-go/internal/catalog"
	"github.com/maketee/maketee/backend-go/internal/design"
	"github.com/maketee/maketee/backend-go/internal/export"
	"github.com/maketee/maketee/backend-go/internal/pricing"
	"github.com/maketee/maketee/backend-go/internal/store"
	"github.com/maketee/maketee/backend-go/internal/typeid"
)

var (
	ErrInvalidOrder  = errors.New("invalid order")
	ErrOrderNotFound = errors.New("order not found")
)

// Valid order statuses. Orders start pending and move exactly once.
const (
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusProduction = "production"
	StatusShipped    = "shipped"
	StatusCancelled  = "cancelled"
)

var statusTransitions = map[string][]string{
	StatusPending:    {StatusPaid, StatusCancelled},
	StatusPaid:       {StatusProduction, StatusCancelled},
	StatusProduction: {StatusShipped},
}

// Submission is a buyer's checkout payload. Designs carry the flattened
// print-ready PNG per customized side; RawAssets preserve the originals for
// the production workflow. Design is the legacy single-image field older
// storefront clients send; it maps to the front side.
type Submission struct {
	ProductID       string                 `json:"productId"`
	ColorID         string                 `json:"colorId"`
	Size            string                 `json:"size"`
	Quantity        int                    `json:"quantity"`
	Email           string                 `json:"email"`
	CustomizedSides []design.Side          `json:"customizedSides"`
	Designs         map[design.Side]string `json:"designs"`
	Design          string                 `json:"design,omitempty"`
	RawAssets       export.RawAssets       `json:"rawAssets"`
}

type Service struct {
	store   *store.Store
	catalog *catalog.Catalog
	pricing *pricing.Engine
}

func NewService(st *store.Store, cat *catalog.Catalog, eng *pricing.Engine) *Service {
	return &Service{store: st, catalog: cat, pricing: eng}
}

// Submit validates a submission, prices it server-side, and persists the
// order as pending. The client's notion of the price is never trusted.
func (s *Service) Submit(ctx context.Context, sub Submission) (store.Order, error) {
	if sub.Email == "" {
		return store.Order{}, fmt.Errorf("%w: email is required", ErrInvalidOrder)
	}

	// Legacy single-image flow: one front design, no side list.
	if len(sub.Designs) == 0 && sub.Design != "" {
		sub.Designs = map[design.Side]string{design.SideFront: sub.Design}
		sub.CustomizedSides = []design.Side{design.SideFront}
	}

	if len(sub.CustomizedSides) == 0 || len(sub.Designs) == 0 {
		return store.Order{}, fmt.Errorf("%w: no customized sides", ErrInvalidOrder)
	}

	product, err := s.catalog.Get(sub.ProductID)
	if err != nil {
		return store.Order{}, fmt.Errorf("%w: unknown product %q", ErrInvalidOrder, sub.ProductID)
	}
	for _, side := range sub.CustomizedSides {
		if !product.SupportsSide(side) {
			return store.Order{}, fmt.Errorf("%w: product %q has no side %q", ErrInvalidOrder, sub.ProductID, side)
		}
		if sub.Designs[side] == "" {
			return store.Order{}, fmt.Errorf("%w: missing design for side %q", ErrInvalidOrder, side)
		}
	}

	if sub.Quantity < 1 {
		sub.Quantity = 1
	}

	total, err := s.pricing.Quote(sub.ProductID, sub.Size, len(sub.CustomizedSides), sub.Quantity)
	if err != nil {
		return store.Order{}, fmt.Errorf("%w: %v", ErrInvalidOrder, err)
	}

	designs, err := json.Marshal(sub.Designs)
	if err != nil {
		return store.Order{}, fmt.Errorf("marshal designs: %w", err)
	}
	rawAssets, err := json.Marshal(sub.RawAssets)
	if err != nil {
		return store.Order{}, fmt.Errorf("marshal raw assets: %w", err)
	}

	sides := make([]string, len(sub.CustomizedSides))
	for i, side := range sub.CustomizedSides {
		sides[i] = string(side)
	}

	return s.store.CreateOrder(ctx, store.Order{
		ID:              typeid.NewOrderID(),
		ProductID:       sub.ProductID,
		Email:           sub.Email,
		Color:           sub.ColorID,
		Size:            sub.Size,
		Quantity:        sub.Quantity,
		Status:          StatusPending,
		TotalCents:      total,
		Currency:        s.pricing.Currency(),
		CustomizedSides: sides,
		Designs:         designs,
		RawAssets:       rawAssets,
	})
}

func (s *Service) Get(ctx context.Context, id string) (store.Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return store.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, limit int) ([]store.Order, error) {
	return s.store.ListOrders(ctx, limit)
}

// UpdateStatus moves an order through the fulfillment pipeline, rejecting
// transitions the pipeline does not allow.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (store.Order, error) {
	current, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return store.Order{}, ErrOrderNotFound
	}

	allowed := false
	for _, next := range statusTransitions[current.Status] {
		if next == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return store.Order{}, fmt.Errorf("%w: cannot move %s order to %s", ErrInvalidOrder, current.Status, status)
	}

	return s.store.UpdateOrderStatus(ctx, id, status)
}
