package usecase

import (
	"testing"

	"github.com/monitorlens/backend/internal/domain"
)

func TestExtractSize(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  float64
	}{
		{"double quote notation", `Monitor 27" IPS`, 27},
		{"inch keyword", "Monitor 27 inch IPS", 27},
		{"hyphenated inch", "Monitor 27-inch IPS", 27},
		{"decimal size", "Monitor 31.5 inch VA", 31.5},
		{"localized keyword", "Монитор 27 инч", 27},
		{"digits inside model are not a size", "Dell P2425H Monitor", 0},
		{"refresh rate is not a size", "Gaming Monitor 144Hz", 0},
		{"no size present", "Dell Monitor", 0},
	}

	extractor := NewAttributeExtractor(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := extractor.Extract(tt.title)
			if attrs.Size != tt.want {
				t.Errorf("Extract(%q).Size = %v, want %v", tt.title, attrs.Size, tt.want)
			}
		})
	}
}

func TestExtractBrand(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"acronym brand upper-cases", "lg ultrawide monitor", "LG"},
		{"regular brand capitalizes", "samsung odyssey", "Samsung"},
		{"hp upper-cases", "hp elitedisplay e243", "HP"},
		{"mixed case input", "DELL UltraSharp", "Dell"},
		{"scan order decides ties", "Dell rebrand of AOC panel", "Dell"},
		{"substring of a word is not a brand", "algorithmic display monitor", ""},
		{"unknown brand", "Generic 24 inch monitor", ""},
	}

	extractor := NewAttributeExtractor(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := extractor.Extract(tt.title)
			if attrs.Brand != tt.want {
				t.Errorf("Extract(%q).Brand = %q, want %q", tt.title, attrs.Brand, tt.want)
			}
		})
	}
}

func TestExtractModel(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"dell grammar", "Dell P2425H 24 inch FHD Monitor", "P2425H"},
		{"dell grammar with suffix", "Dell U2724DE UltraSharp", "U2724DE"},
		{"samsung grammar", `Samsung LS27C360EAUXEN 27" Curved`, "LS27C360EAUXEN"},
		{"lg grammar", "LG 24GQ50F-B UltraGear Monitor", "24GQ50F-B"},
		{"token after brand", "Fuego F24-1080 monitor", "F24-1080"},
		{"generic dashed shape without brand", "Monitor stand VES-100X", "VES-100X"},
		{"nothing model-like", "Office monitor with speakers", ""},
	}

	extractor := NewAttributeExtractor(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := extractor.Extract(tt.title)
			if attrs.Model != tt.want {
				t.Errorf("Extract(%q).Model = %q, want %q", tt.title, attrs.Model, tt.want)
			}
		})
	}
}

func TestExtractResolution(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"fhd shorthand", "Monitor 24 FHD", "1920x1080"},
		{"full hd spelled out", "Monitor 24 Full HD", "1920x1080"},
		{"qhd shorthand", "Monitor 27 QHD", "2560x1440"},
		{"wqhd wins over qhd", "Monitor 34 WQHD", "2560x1440"},
		{"4k shorthand", "Monitor 32 4K HDR", "3840x2160"},
		{"explicit literal", "Monitor 2560x1440 IPS", "2560x1440"},
		{"explicit literal overrides shorthand", "Monitor 4K 3840x2160", "3840x2160"},
		{"no resolution", "Dell Monitor", ""},
	}

	extractor := NewAttributeExtractor(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := extractor.Extract(tt.title)
			if attrs.Resolution != tt.want {
				t.Errorf("Extract(%q).Resolution = %q, want %q", tt.title, attrs.Resolution, tt.want)
			}
		})
	}
}

func TestExtractRefreshRateAndPanel(t *testing.T) {
	extractor := NewAttributeExtractor(false)

	t.Run("refresh rate with and without space", func(t *testing.T) {
		if got := extractor.Extract("Gaming 144Hz").RefreshRate; got != 144 {
			t.Errorf("RefreshRate = %v, want 144", got)
		}
		if got := extractor.Extract("Office 75 hz monitor").RefreshRate; got != 75 {
			t.Errorf("RefreshRate = %v, want 75", got)
		}
	})

	t.Run("panel types prefer the most specific match", func(t *testing.T) {
		if got := extractor.Extract("LG Nano IPS UltraGear").PanelType; got != "NANO IPS" {
			t.Errorf("PanelType = %q, want NANO IPS", got)
		}
		if got := extractor.Extract("Samsung QD-OLED G8").PanelType; got != "QD-OLED" {
			t.Errorf("PanelType = %q, want QD-OLED", got)
		}
		if got := extractor.Extract("Dell IPS monitor").PanelType; got != "IPS" {
			t.Errorf("PanelType = %q, want IPS", got)
		}
	})
}

func TestExtractFeatures(t *testing.T) {
	extractor := NewAttributeExtractor(false)
	attrs := extractor.Extract("Curved Gaming Monitor 144Hz HDR FreeSync with speakers")

	for _, key := range []domain.SpecKey{
		domain.SpecCurved, domain.SpecGaming, domain.SpecHDR,
		domain.SpecFreeSync, domain.SpecSpeakers,
	} {
		if attrs.Specs[key] != domain.BoolSpec(true) {
			t.Errorf("Specs[%s] = %v, want true", key, attrs.Specs[key])
		}
	}

	if _, ok := attrs.Specs[domain.SpecUSBC]; ok {
		t.Error("Specs[usb_c] present, want absent for a title without USB-C")
	}
}

func TestExtractKeepsOriginalTitleAsName(t *testing.T) {
	extractor := NewAttributeExtractor(false)

	attrs := extractor.Extract("  Dell P2425H 24 inch FHD IPS  ")
	if attrs.Name != "Dell P2425H 24 inch FHD IPS" {
		t.Errorf("Name = %q, want trimmed original title", attrs.Name)
	}

	empty := extractor.Extract("")
	if empty.Brand != "" || empty.Model != "" || empty.Size != 0 || len(empty.Specs) != 0 {
		t.Errorf("Extract(\"\") = %+v, want all fields unset", empty)
	}
}
