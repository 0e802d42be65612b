package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/maketee/maketee/backend-go/internal/design"
	"github.com/maketee/maketee/backend-go/internal/geometry"
)

// NoTintColor is the sentinel garment color meaning "no overlay". Multiplying
// by white is the identity, so any white spelling qualifies.
const NoTintColor = "#FFFFFF"

// IsNoTint reports whether the garment color needs no tint pass.
func IsNoTint(c string) bool {
	switch strings.ToLower(c) {
	case "", "#fff", "#ffffff", "white":
		return true
	}
	return false
}

// Request describes one side to rasterize. Width/Height are the logical
// canvas size; the output is PixelRatio times larger in each dimension.
type Request struct {
	Side         design.Side
	Items        []design.CanvasItem
	BaseImageURL string
	Width        int
	Height       int
	GarmentColor string
	PixelRatio   int
}

// Renderer produces final pixel images for sides the buyer is not actively
// viewing. Each RenderSide call owns its drawing context and shares no
// mutable state, so calls for different sides may run concurrently.
type Renderer struct {
	loader *ImageLoader
	fonts  *FontRegistry
	ratio  int
}

// NewRenderer creates a renderer. ratio is the default pixel-density
// multiplier; anything below 2 is raised to 2 to keep exports print-usable.
func NewRenderer(loader *ImageLoader, fonts *FontRegistry, ratio int) *Renderer {
	if ratio < 2 {
		ratio = 2
	}
	return &Renderer{loader: loader, fonts: fonts, ratio: ratio}
}

// PixelRatio returns the default density multiplier.
func (r *Renderer) PixelRatio() int { return r.ratio }

// RenderSide reconstructs the side's scene into a fresh raster. Failures
// degrade item by item: a missing base mockup or broken item source is logged
// and skipped so a partial render still reaches fulfillment.
func (r *Renderer) RenderSide(ctx context.Context, req Request) (image.Image, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", req.Width, req.Height)
	}

	ratio := req.PixelRatio
	if ratio <= 0 {
		ratio = r.ratio
	}
	devW := req.Width * ratio
	devH := req.Height * ratio

	dc := gg.NewContext(devW, devH)

	if req.BaseImageURL != "" {
		base, err := r.loader.Load(ctx, req.BaseImageURL)
		if err != nil {
			slog.Warn("base mockup load failed, rendering without it",
				"side", req.Side, "url", req.BaseImageURL, "error", err)
		} else {
			dc.DrawImageEx(gg.ImageBufFromImage(base), gg.DrawImageOptions{
				DstWidth:  float64(devW),
				DstHeight: float64(devH),
			})
		}
	}

	if !IsNoTint(req.GarmentColor) {
		applyTint(dc, req.GarmentColor, devW, devH)
	}

	for _, it := range req.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch it.Kind {
		case design.KindImage:
			if err := r.drawImageItem(ctx, dc, it, ratio); err != nil {
				slog.Warn("skipping image item", "side", req.Side, "item", it.ID, "error", err)
			}
		case design.KindText:
			if err := r.drawTextItem(dc, it, ratio); err != nil {
				slog.Warn("skipping text item", "side", req.Side, "item", it.ID, "error", err)
			}
		}
	}

	return dc.Image(), nil
}

// applyTint multiplies a full-canvas color rectangle over whatever has been
// painted so far, keeping the mockup's shading visible through the tint.
func applyTint(dc *gg.Context, hex string, devW, devH int) {
	tint, err := gg.NewImageBuf(devW, devH, gg.FormatRGBA8)
	if err != nil {
		slog.Warn("allocate tint layer", "error", err)
		return
	}

	c := gg.Hex(hex)
	tint.Fill(
		uint8(math.Round(c.R*255)),
		uint8(math.Round(c.G*255)),
		uint8(math.Round(c.B*255)),
		255,
	)

	dc.DrawImageEx(tint, gg.DrawImageOptions{
		DstWidth:  float64(devW),
		DstHeight: float64(devH),
		BlendMode: gg.BlendMultiply,
	})
}

func (r *Renderer) drawImageItem(ctx context.Context, dc *gg.Context, it design.CanvasItem, ratio int) error {
	src, err := r.loader.Load(ctx, it.Src)
	if err != nil {
		return err
	}

	w := it.Width
	h := it.Height
	if w <= 0 {
		w = design.DefaultImageSize
	}
	if h <= 0 {
		h = design.DefaultImageSize
	}

	fr := float64(ratio)
	scaled := imaging.Resize(src, int(math.Round(w*fr)), int(math.Round(h*fr)), imaging.Lanczos)
	r.blit(dc, scaled, it.X*fr, it.Y*fr, w*fr, h*fr, it.Rotation)
	return nil
}

func (r *Renderer) drawTextItem(dc *gg.Context, it design.CanvasItem, ratio int) error {
	if it.Text == "" {
		return nil
	}

	size := it.FontSize
	if size <= 0 {
		size = 24
	}

	fr := float64(ratio)
	face := r.fonts.Face(it.FontFamily, it.Bold, it.Italic, size*fr)
	if face == nil {
		return fmt.Errorf("no font for family %q", it.FontFamily)
	}

	rendered, w, h := renderTextBlock(it, face, fr)
	if rendered == nil {
		return nil
	}

	r.blit(dc, rendered, it.X*fr, it.Y*fr, w, h, it.Rotation)
	return nil
}

// renderTextBlock rasterizes a (possibly multi-line) text run into its own
// buffer at device scale, applying alignment and the stroke underdraw.
// Returns the buffer and the unrotated device-space box it occupies.
func renderTextBlock(it design.CanvasItem, face text.Face, fr float64) (image.Image, float64, float64) {
	lines := strings.Split(it.Text, "\n")

	var maxW, lineH float64
	widths := make([]float64, len(lines))
	for i, line := range lines {
		w, h := text.Measure(line, face)
		widths[i] = w
		if w > maxW {
			maxW = w
		}
		if h > lineH {
			lineH = h
		}
	}
	if maxW <= 0 || lineH <= 0 {
		return nil, 0, 0
	}

	strokeW := it.StrokeWidth * fr
	pad := math.Ceil(strokeW) + 2

	bufW := int(math.Ceil(maxW + 2*pad))
	bufH := int(math.Ceil(lineH*float64(len(lines)) + 2*pad))
	sub := gg.NewContext(bufW, bufH)
	sub.SetFont(face)

	for i, line := range lines {
		var x float64
		switch it.Align {
		case design.AlignCenter:
			x = pad + (maxW-widths[i])/2
		case design.AlignRight:
			x = pad + maxW - widths[i]
		default:
			x = pad
		}
		// Baseline sits near 80% of the line height for typical faces.
		y := pad + lineH*float64(i) + lineH*0.8

		if strokeW > 0 && it.Stroke != "" {
			sub.SetHexColor(it.Stroke)
			for _, d := range strokeOffsets {
				sub.DrawString(line, x+d[0]*strokeW, y+d[1]*strokeW)
			}
		}

		fill := it.Fill
		if fill == "" {
			fill = "#000000"
		}
		sub.SetHexColor(fill)
		sub.DrawString(line, x, y)
	}

	return sub.Image(), float64(bufW), float64(bufH)
}

// strokeOffsets is the 8-direction ring used to approximate text outlining.
var strokeOffsets = [8][2]float64{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// blit draws an already-scaled raster at (x, y) device coordinates, rotating
// it clockwise about the box center when the item carries a rotation.
func (r *Renderer) blit(dc *gg.Context, img image.Image, x, y, w, h, rotation float64) {
	if rotation != 0 {
		// imaging rotates counter-clockwise; item rotation is clockwise.
		img = imaging.Rotate(img, -rotation, color.Transparent)
		bounds := geometry.RotatedBounds(x, y, w, h, rotation)
		x, y = bounds.X, bounds.Y
	}
	dc.DrawImage(gg.ImageBufFromImage(img), x, y)
}
