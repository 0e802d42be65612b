package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/maketee/maketee/backend-go/internal/catalog"
	"github.com/maketee/maketee/backend-go/internal/design"
	"github.com/maketee/maketee/backend-go/internal/render"
	"github.com/maketee/maketee/backend-go/internal/stage"
)

func redDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return render.EncodeDataURI(buf.Bytes())
}

func testController(t *testing.T) *stage.Controller {
	t.Helper()
	product := catalog.Product{
		ID:             "classic-tee",
		AvailableSides: []design.Side{design.SideFront, design.SideBack, design.SideLeftSleeve},
		DefaultImage:   "",
	}
	return stage.NewController("sess_test", product, "", nil, 50, 50)
}

func testCoordinator(t *testing.T) *Coordinator {
	t.Helper()
	loader := render.NewImageLoader(t.TempDir(), time.Second)
	fonts := render.LoadFonts(t.TempDir())
	return NewCoordinator(render.NewRenderer(loader, fonts, 2))
}

func TestExportOmitsEmptySides(t *testing.T) {
	co := testCoordinator(t)
	c := testController(t)

	// Customize front and back, leave the sleeve untouched.
	c.AddImageFromUpload(redDataURI(t))
	c.SwitchSide(design.SideBack)
	c.AddImageFromUpload(redDataURI(t))

	out, err := co.ExportAllCustomizedSides(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 2 {
		t.Fatalf("exported %d sides, want 2", len(out))
	}
	if _, ok := out[design.SideLeftSleeve]; ok {
		t.Error("empty sleeve side exported")
	}
	for side, uri := range out {
		if len(uri) < 30 || uri[:22] != "data:image/png;base64," {
			t.Errorf("side %s: not a PNG data URI", side)
		}
	}
}

func TestExportDensity(t *testing.T) {
	co := testCoordinator(t)
	c := testController(t)
	c.AddImageFromUpload(redDataURI(t))

	out, err := co.ExportAllCustomizedSides(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}

	pngData, err := render.DecodeDataURI(out[design.SideFront])
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		t.Fatal(err)
	}

	// 50x50 logical canvas exports at 2x density.
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("export %dx%d, want 100x100", b.Dx(), b.Dy())
	}
}

func TestExportWithTextItem(t *testing.T) {
	co := testCoordinator(t)
	c := testController(t)

	// No fonts are installed, so the text cannot paint, but the side still
	// counts as customized and the export still produces a full-size PNG.
	c.AddText()
	c.SetFontSize(48)

	out, err := co.ExportAllCustomizedSides(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	uri, ok := out[design.SideFront]
	if !ok {
		t.Fatal("side with a text item not exported")
	}

	pngData, err := render.DecodeDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 100 || b.Dy() != 100 {
		t.Errorf("export %dx%d, want 100x100", b.Dx(), b.Dy())
	}
}

func TestExportActiveSide(t *testing.T) {
	co := testCoordinator(t)
	c := testController(t)
	c.SwitchSide(design.SideBack)
	c.AddImageFromUpload(redDataURI(t))

	uri, err := co.ExportActiveSide(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if uri[:22] != "data:image/png;base64," {
		t.Errorf("active export prefix = %q", uri[:22])
	}

	// No stage mounted: empty result, no error.
	uri, err = co.ExportActiveSide(context.Background(), nil)
	if err != nil || uri != "" {
		t.Errorf("nil controller: (%q, %v)", uri, err)
	}
}

func TestExportCancelled(t *testing.T) {
	co := testCoordinator(t)
	c := testController(t)
	c.AddImageFromUpload(redDataURI(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := co.ExportAllCustomizedSides(ctx, c); err == nil {
		t.Error("cancelled context not surfaced")
	}
}

func TestGetRawAssets(t *testing.T) {
	co := testCoordinator(t)
	c := testController(t)

	upload := redDataURI(t)
	c.AddImageFromUpload(upload)
	c.AddText() // text items never appear in raw assets
	c.SwitchSide(design.SideBack)
	c.AddImageFromLibraryURL("https://cdn.example.com/star.png")

	raw := co.GetRawAssets(c)

	if len(raw.UserUploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(raw.UserUploads))
	}
	up := raw.UserUploads[0]
	if up.Side != design.SideFront || up.Src != upload || up.Provenance != design.ProvenanceUpload {
		t.Errorf("upload entry = %+v", up)
	}

	if len(raw.LibraryAssets) != 1 {
		t.Fatalf("library assets = %d, want 1", len(raw.LibraryAssets))
	}
	lib := raw.LibraryAssets[0]
	if lib.Side != design.SideBack || lib.Provenance != design.ProvenanceLibrary {
		t.Errorf("library entry = %+v", lib)
	}
}

func TestCustomizedSidesOrder(t *testing.T) {
	co := testCoordinator(t)
	c := testController(t)

	// Customize in reverse display order; the report stays in display order.
	c.SwitchSide(design.SideLeftSleeve)
	c.AddImageFromUpload(redDataURI(t))
	c.SwitchSide(design.SideFront)
	c.AddImageFromUpload(redDataURI(t))

	got := co.CustomizedSides(c)
	if len(got) != 2 || got[0] != design.SideFront || got[1] != design.SideLeftSleeve {
		t.Errorf("sides = %v, want [front left-sleeve]", got)
	}
}
