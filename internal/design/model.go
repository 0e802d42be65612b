package design

// Side is one physical face of a product that carries independent artwork.
type Side string

const (
	SideFront       Side = "front"
	SideBack        Side = "back"
	SideLeftSleeve  Side = "left-sleeve"
	SideRightSleeve Side = "right-sleeve"
)

// AllSides lists every side a garment product can expose, in display order.
// Accessory products expose a subset (usually just front).
var AllSides = []Side{SideFront, SideBack, SideLeftSleeve, SideRightSleeve}

// ItemKind discriminates the CanvasItem variant.
type ItemKind string

const (
	KindText  ItemKind = "text"
	KindImage ItemKind = "image"
)

// Provenance records where an image asset came from. Uploads must be attached
// raw to fulfillment notifications; library assets are fetched by reference.
type Provenance string

const (
	ProvenanceUpload  Provenance = "upload"
	ProvenanceLibrary Provenance = "library"
)

// TextAlign is the horizontal alignment of a text item.
type TextAlign string

const (
	AlignLeft   TextAlign = "left"
	AlignCenter TextAlign = "center"
	AlignRight  TextAlign = "right"
)

// Default box for image items placed without explicit dimensions.
const (
	DefaultImageSize = 180.0

	// DuplicateOffset keeps a clone from perfectly overlapping its source.
	DuplicateOffset = 20.0
)

// CanvasItem is one placed element on a side. Position is the top-left corner
// in canvas pixel space (origin top-left); rotation is clockwise degrees about
// the item center. Exactly one of the Text/Image field groups is meaningful,
// selected by Kind.
type CanvasItem struct {
	ID       string   `json:"id"`
	Kind     ItemKind `json:"kind"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
	Rotation float64  `json:"rotation,omitempty"`

	// Text fields
	Text        string    `json:"text,omitempty"`
	Fill        string    `json:"fill,omitempty"`
	FontFamily  string    `json:"fontFamily,omitempty"`
	FontSize    float64   `json:"fontSize,omitempty"`
	Bold        bool      `json:"bold,omitempty"`
	Italic      bool      `json:"italic,omitempty"`
	Align       TextAlign `json:"align,omitempty"`
	Stroke      string    `json:"stroke,omitempty"`
	StrokeWidth float64   `json:"strokeWidth,omitempty"`

	// Image fields
	Src        string     `json:"src,omitempty"`
	Provenance Provenance `json:"provenance,omitempty"`
}

// IsText reports whether the item is a text item.
func (it CanvasItem) IsText() bool { return it.Kind == KindText }

// IsImage reports whether the item is an image item.
func (it CanvasItem) IsImage() bool { return it.Kind == KindImage }

// EffectiveProvenance returns the item's provenance, inferring it from the
// source string for items created before provenance was set explicitly:
// embedded data URIs are uploads, path/URL references are library assets.
func (it CanvasItem) EffectiveProvenance() Provenance {
	if it.Provenance != "" {
		return it.Provenance
	}
	if len(it.Src) >= 5 && it.Src[:5] == "data:" {
		return ProvenanceUpload
	}
	return ProvenanceLibrary
}

// ItemPatch carries partial updates for UpdateItem. Nil fields are untouched.
type ItemPatch struct {
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Width    *float64 `json:"width,omitempty"`
	Height   *float64 `json:"height,omitempty"`
	Rotation *float64 `json:"rotation,omitempty"`

	Text        *string    `json:"text,omitempty"`
	Fill        *string    `json:"fill,omitempty"`
	FontFamily  *string    `json:"fontFamily,omitempty"`
	FontSize    *float64   `json:"fontSize,omitempty"`
	Bold        *bool      `json:"bold,omitempty"`
	Italic      *bool      `json:"italic,omitempty"`
	Align       *TextAlign `json:"align,omitempty"`
	Stroke      *string    `json:"stroke,omitempty"`
	StrokeWidth *float64   `json:"strokeWidth,omitempty"`

	Src *string `json:"src,omitempty"`
}

// Apply returns a copy of the item with the patch's non-nil fields replaced.
func (p ItemPatch) Apply(it CanvasItem) CanvasItem {
	if p.X != nil {
		it.X = *p.X
	}
	if p.Y != nil {
		it.Y = *p.Y
	}
	if p.Width != nil {
		it.Width = *p.Width
	}
	if p.Height != nil {
		it.Height = *p.Height
	}
	if p.Rotation != nil {
		it.Rotation = *p.Rotation
	}
	if p.Text != nil {
		it.Text = *p.Text
	}
	if p.Fill != nil {
		it.Fill = *p.Fill
	}
	if p.FontFamily != nil {
		it.FontFamily = *p.FontFamily
	}
	if p.FontSize != nil {
		it.FontSize = *p.FontSize
	}
	if p.Bold != nil {
		it.Bold = *p.Bold
	}
	if p.Italic != nil {
		it.Italic = *p.Italic
	}
	if p.Align != nil {
		it.Align = *p.Align
	}
	if p.Stroke != nil {
		it.Stroke = *p.Stroke
	}
	if p.StrokeWidth != nil {
		it.StrokeWidth = *p.StrokeWidth
	}
	if p.Src != nil {
		it.Src = *p.Src
	}
	return it
}
