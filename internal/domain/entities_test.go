package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{"images", CategoryImages, false},
		{"Sounds", CategorySounds, false},
		{" music ", CategoryMusic, false},
		{"MODS", CategoryMods, false},
		{"advert", CategoryAdvert, false},
		{"videos", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownCategory) {
					t.Errorf("ParseCategory(%q) error = %v, want ErrUnknownCategory", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCategory(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseCategory(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategorySubpaths(t *testing.T) {
	want := map[Category]string{
		CategoryImages: `Skins%5cMediaTracker%5cImages%5c`,
		CategorySounds: `Skins%5cMediaTracker%5cSounds%5c`,
		CategoryMusic:  `Skins%5cChallengeMusics%5c`,
		CategoryMods:   `Skins%5cStadium%5cMod%5c`,
		CategoryAdvert: `Skins%5cAny%5cAdvertisement%5c`,
	}

	cats := Categories()
	if len(cats) != len(want) {
		t.Fatalf("Categories() returned %d categories, want %d", len(cats), len(want))
	}
	for _, c := range cats {
		if got := c.Subpath(); got != want[c] {
			t.Errorf("%s.Subpath() = %s, want %s", c, got, want[c])
		}
		if strings.Contains(c.Subpath(), `\`) {
			t.Errorf("%s.Subpath() contains a raw backslash", c)
		}
	}
}

func TestCategoryNextWraps(t *testing.T) {
	if got := CategoryAdvert.Next(); got != CategoryImages {
		t.Errorf("CategoryAdvert.Next() = %v, want images", got)
	}
	if got := CategoryImages.Next(); got != CategorySounds {
		t.Errorf("CategoryImages.Next() = %v, want sounds", got)
	}
}

func TestCategoryTitle(t *testing.T) {
	if got := CategoryAdvert.Title(); got != "Advert" {
		t.Errorf("Title() = %q", got)
	}
	if Category(42).Valid() {
		t.Error("Category(42) should not be valid")
	}
	if Category(42).Subpath() != "" {
		t.Error("invalid category should have no subpath")
	}
}

func TestParseOutputMode(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputMode
		wantErr bool
	}{
		{"single", ModeIndividual, false},
		{"individual", ModeIndividual, false},
		{"pack", ModePack, false},
		{"ZIP", ModePack, false},
		{"tar", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputMode(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownMode) {
					t.Errorf("ParseOutputMode(%q) error = %v", tt.input, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseOutputMode(%q) = %v, %v", tt.input, got, err)
			}
		})
	}
}

func TestOutputModeToggle(t *testing.T) {
	if ModeIndividual.Toggle() != ModePack || ModePack.Toggle() != ModeIndividual {
		t.Error("Toggle() should switch between the two modes")
	}
	if ModeIndividual.String() != "single" || ModePack.String() != "pack" {
		t.Error("unexpected mode names")
	}
}
