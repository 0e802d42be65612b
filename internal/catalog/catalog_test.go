package catalog

import (
	"errors"
	"testing"

	"github.com/maketee/maketee/backend-go/internal/design"
)

func testEntries() []Product {
	return []Product{
		{
			ID:             "classic-tee",
			Name:           "Classic Tee",
			AvailableSides: []design.Side{design.SideFront, design.SideBack},
			DefaultImage:   "/assets/mockups/tee.png",
			Colors: []Color{
				{
					ID:  "white",
					Hex: "#ffffff",
					Images: map[design.Side]string{
						design.SideFront: "/assets/mockups/tee-front-white.png",
					},
				},
			},
		},
		{
			ID:             "tote-bag",
			Name:           "Canvas Tote",
			AvailableSides: []design.Side{design.SideFront},
			DefaultImage:   "/assets/mockups/tote.png",
		},
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		entries []Product
	}{
		{"missing id", []Product{{AvailableSides: []design.Side{design.SideFront}, DefaultImage: "x"}}},
		{"no sides", []Product{{ID: "a", DefaultImage: "x"}}},
		{"no images at all", []Product{{ID: "a", AvailableSides: []design.Side{design.SideFront}}}},
		{"duplicate side", []Product{{ID: "a", DefaultImage: "x",
			AvailableSides: []design.Side{design.SideFront, design.SideFront}}}},
		{"duplicate product id", append(testEntries(), testEntries()[0])},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.entries); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestGetAndList(t *testing.T) {
	c, err := New(testEntries())
	if err != nil {
		t.Fatal(err)
	}

	p, err := c.Get("classic-tee")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Classic Tee" {
		t.Errorf("name = %q", p.Name)
	}

	if _, err := c.Get("mug"); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}

	list := c.List()
	if len(list) != 2 || list[0].ID != "classic-tee" || list[1].ID != "tote-bag" {
		t.Errorf("list order broken: %+v", list)
	}
}

func TestResolveMockup(t *testing.T) {
	c, err := New(testEntries())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		productID string
		colorID   string
		side      design.Side
		want      string
	}{
		{"color side photo", "classic-tee", "white", design.SideFront, "/assets/mockups/tee-front-white.png"},
		{"color missing side falls back", "classic-tee", "white", design.SideBack, "/assets/mockups/tee.png"},
		{"unknown color falls back", "classic-tee", "neon", design.SideFront, "/assets/mockups/tee.png"},
		{"no colors at all", "tote-bag", "", design.SideFront, "/assets/mockups/tote.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.ResolveMockup(tt.productID, tt.colorID, tt.side)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := c.ResolveMockup("mug", "", design.SideFront); !errors.Is(err, ErrProductNotFound) {
		t.Errorf("err = %v, want ErrProductNotFound", err)
	}
}

func TestSupportsSide(t *testing.T) {
	p := testEntries()[0]
	if !p.SupportsSide(design.SideFront) || !p.SupportsSide(design.SideBack) {
		t.Error("declared sides not supported")
	}
	if p.SupportsSide(design.SideLeftSleeve) {
		t.Error("undeclared side reported as supported")
	}
}
