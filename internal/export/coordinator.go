package export

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"

	"github.com/maketee/maketee/backend-go/internal/design"
	"github.com/maketee/maketee/backend-go/internal/render"
	"github.com/maketee/maketee/backend-go/internal/stage"
)

// RawAsset is one image item's original source, tagged with the side that
// owns it. Fulfillment staff retrieve these separately from the flattened
// export so uploads can be attached raw to production notifications.
type RawAsset struct {
	Side       design.Side       `json:"side"`
	ItemID     string            `json:"itemId"`
	Src        string            `json:"src"`
	Provenance design.Provenance `json:"provenance"`
}

// RawAssets splits every image item across all sides by provenance.
type RawAssets struct {
	UserUploads   []RawAsset `json:"userUploads"`
	LibraryAssets []RawAsset `json:"libraryAssets"`
}

// Coordinator is the one component the order-submission flow talks to. Every
// failure degrades to a partial result: a broken asset or side loses its own
// pixels, never the whole order.
type Coordinator struct {
	renderer *render.Renderer
}

// NewCoordinator creates an export coordinator over the given rasterizer.
func NewCoordinator(renderer *render.Renderer) *Coordinator {
	return &Coordinator{renderer: renderer}
}

// ExportActiveSide captures the live stage's side at export density. Returns
// "" when no stage is mounted; callers treat that as "nothing to export yet".
func (e *Coordinator) ExportActiveSide(ctx context.Context, c *stage.Controller) (string, error) {
	if c == nil {
		return "", nil
	}
	return e.exportSide(ctx, c, c.ActiveSide())
}

// ExportAllCustomizedSides renders every side with at least one item and
// returns a side → PNG data URI map. Sides with empty item lists are omitted
// entirely. Only context cancellation stops the fan-out early.
func (e *Coordinator) ExportAllCustomizedSides(ctx context.Context, c *stage.Controller) (map[design.Side]string, error) {
	result := make(map[design.Side]string)
	if c == nil {
		return result, nil
	}

	for _, side := range c.CustomizedSides() {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		uri, err := e.exportSide(ctx, c, side)
		if err != nil {
			if ctx.Err() != nil {
				return result, err
			}
			slog.Error("side export failed, omitting from result", "side", side, "error", err)
			continue
		}
		if uri != "" {
			result[side] = uri
		}
	}
	return result, nil
}

// CustomizedSides returns the sides with at least one item, in the product's
// side order. Drives the pricing tier and the human-readable sides list.
func (e *Coordinator) CustomizedSides(c *stage.Controller) []design.Side {
	if c == nil {
		return nil
	}
	return c.CustomizedSides()
}

// GetRawAssets aggregates every image item's source across all sides,
// inferring provenance for items persisted before it was set at creation.
func (e *Coordinator) GetRawAssets(c *stage.Controller) RawAssets {
	var out RawAssets
	if c == nil {
		return out
	}

	for _, side := range c.Product().AvailableSides {
		for _, it := range c.ItemsOn(side) {
			if !it.IsImage() {
				continue
			}
			asset := RawAsset{
				Side:       side,
				ItemID:     it.ID,
				Src:        it.Src,
				Provenance: it.EffectiveProvenance(),
			}
			if asset.Provenance == design.ProvenanceUpload {
				out.UserUploads = append(out.UserUploads, asset)
			} else {
				out.LibraryAssets = append(out.LibraryAssets, asset)
			}
		}
	}
	return out
}

func (e *Coordinator) exportSide(ctx context.Context, c *stage.Controller, side design.Side) (string, error) {
	w, h := c.CanvasSize()

	img, err := e.renderer.RenderSide(ctx, render.Request{
		Side:         side,
		Items:        c.ItemsOn(side),
		BaseImageURL: c.MockupFor(side),
		Width:        int(w),
		Height:       int(h),
		GarmentColor: c.GarmentColor(),
	})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return render.EncodeDataURI(buf.Bytes()), nil
}
