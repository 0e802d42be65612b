package render

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
)

// FontRegistry maps (family, bold, italic) to parsed font sources. Font files
// follow the Family-Style.ttf convention (Style one of Regular, Bold, Italic,
// BoldItalic). Lookups fall back style → regular → first loaded family, and
// finally nil, in which case text items are skipped at draw time.
type FontRegistry struct {
	mu            sync.RWMutex
	sources       map[string]*text.FontSource
	defaultFamily string
}

// LoadFonts scans dir for .ttf/.otf files. A missing or empty dir is not an
// error: exports still succeed, they just cannot paint text.
func LoadFonts(dir string) *FontRegistry {
	reg := &FontRegistry{sources: make(map[string]*text.FontSource)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Warn("font dir unavailable, text rendering disabled", "dir", dir, "error", err)
		return reg
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".ttf" && ext != ".otf" {
			continue
		}

		source, err := text.NewFontSourceFromFile(filepath.Join(dir, e.Name()))
		if err != nil {
			slog.Warn("parse font", "file", e.Name(), "error", err)
			continue
		}

		family, bold, italic := parseFontFilename(e.Name())
		key := fontKey(family, bold, italic)
		reg.sources[key] = source
		if reg.defaultFamily == "" && !bold && !italic {
			reg.defaultFamily = family
		}
		slog.Info("font loaded", "family", family, "bold", bold, "italic", italic)
	}

	return reg
}

// Face returns a sized face for the family and style, or nil when no font
// can serve it.
func (r *FontRegistry) Face(family string, bold, italic bool, size float64) text.Face {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := []string{
		fontKey(family, bold, italic),
		fontKey(family, false, false),
		fontKey(r.defaultFamily, bold, italic),
		fontKey(r.defaultFamily, false, false),
	}
	for _, key := range candidates {
		if src, ok := r.sources[key]; ok {
			return src.Face(size)
		}
	}
	return nil
}

// Families returns the loaded family names.
func (r *FontRegistry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for key := range r.sources {
		family := strings.SplitN(key, "|", 2)[0]
		if !seen[family] {
			seen[family] = true
			out = append(out, family)
		}
	}
	return out
}

func fontKey(family string, bold, italic bool) string {
	key := strings.ToLower(family)
	if bold {
		key += "|b"
	}
	if italic {
		key += "|i"
	}
	return key
}

func parseFontFilename(name string) (family string, bold, italic bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	family = base

	if idx := strings.LastIndexByte(base, '-'); idx > 0 {
		style := strings.ToLower(base[idx+1:])
		switch style {
		case "regular":
			family = base[:idx]
		case "bold":
			family, bold = base[:idx], true
		case "italic", "oblique":
			family, italic = base[:idx], true
		case "bolditalic", "boldoblique":
			family, bold, italic = base[:idx], true, true
		}
	}
	return family, bold, italic
}
