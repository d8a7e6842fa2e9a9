package tui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/cachegen/internal/adapter"
	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/mmcdole/cachegen/internal/service"
)

func newTestModel(t *testing.T) (Model, *adapter.StateFile) {
	t.Helper()
	state, err := adapter.LoadState(filepath.Join(t.TempDir(), "state.env"))
	if err != nil {
		t.Fatal(err)
	}
	out := service.NewOutputService(state, nil, nil)
	sess := service.NewSessionService(out, state, nil)

	m := NewModel(sess, state, domain.CategoryImages, domain.ModeIndividual, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	return next.(Model), state
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

// addFile processes a temp file into the model's session
func addFile(t *testing.T, m Model, name, content string) Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	msg := ProcessFilesCmd(m.SessionSvc, []string{path}, m.Category)()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestCategoryKeys(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = press(t, m, keyTab)
	if m.Category != domain.CategorySounds {
		t.Errorf("after tab category = %v, want sounds", m.Category)
	}

	m, _ = press(t, m, runes("5"))
	if m.Category != domain.CategoryAdvert {
		t.Errorf("after 5 category = %v, want advert", m.Category)
	}

	m, _ = press(t, m, keyTab)
	if m.Category != domain.CategoryImages {
		t.Errorf("tab should wrap to images, got %v", m.Category)
	}
}

func TestToggleMode(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("m"))
	if m.Mode != domain.ModePack {
		t.Errorf("mode = %v, want pack", m.Mode)
	}
	m, _ = press(t, m, runes("m"))
	if m.Mode != domain.ModeIndividual {
		t.Errorf("mode = %v, want single", m.Mode)
	}
}

func TestSaveWithEmptyList(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("s"))
	if m.State != StateBrowsing {
		t.Errorf("state = %v, want browsing", m.State)
	}
	if m.StatusMsg != "No files processed." {
		t.Errorf("status = %q", m.StatusMsg)
	}
}

func TestIndividualSaveFlow(t *testing.T) {
	m, state := newTestModel(t)
	outDir := t.TempDir()
	if err := state.SetLastDir(domain.StateOutputDir, outDir); err != nil {
		t.Fatal(err)
	}

	m = addFile(t, m, "logo.dds", "logo")
	if m.SessionSvc.Len() != 1 {
		t.Fatalf("session length = %d", m.SessionSvc.Len())
	}
	name := m.SessionSvc.Entries()[0].DerivedName

	m, _ = press(t, m, runes("s"))
	if m.State != StateInput || m.inputPurpose != InputDirectory {
		t.Fatalf("state = %v purpose = %v, want directory input", m.State, m.inputPurpose)
	}
	if got := m.InputModal.Value(); got != outDir {
		t.Errorf("directory prefill = %q, want %q", got, outDir)
	}

	m, cmd := press(t, m, keyEnter)
	if !m.Busy || cmd == nil {
		t.Fatal("save did not start")
	}

	// While busy, other actions are ignored
	m, _ = press(t, m, runes("x"))
	if m.SessionSvc.Len() != 1 {
		t.Error("clear ran during save")
	}

	msg := SaveCmd(m.SessionSvc, domain.SaveRequest{Mode: domain.ModeIndividual, Directory: outDir})()
	next, _ := m.Update(msg)
	m = next.(Model)

	if m.Busy {
		t.Error("still busy after save")
	}
	if m.StatusMsg != "Files saved successfully." {
		t.Errorf("status = %q", m.StatusMsg)
	}
	if m.SessionSvc.Len() != 0 {
		t.Error("list not cleared after save")
	}
	if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
		t.Errorf("output file missing: %v", err)
	}
}

func TestPackSaveFlow(t *testing.T) {
	m, _ := newTestModel(t)
	m = addFile(t, m, "a.png", "a")
	m, _ = press(t, m, runes("m"), runes("s"))

	if m.inputPurpose != InputArchiveName {
		t.Fatalf("purpose = %v, want archive name", m.inputPurpose)
	}
	m, _ = press(t, m, runes("bundle"), keyEnter)
	if m.inputPurpose != InputDirectory || m.pendingArchive != "bundle" {
		t.Fatalf("purpose = %v pending = %q", m.inputPurpose, m.pendingArchive)
	}

	outDir := t.TempDir()
	msg := SaveCmd(m.SessionSvc, domain.SaveRequest{
		Mode:        domain.ModePack,
		Directory:   outDir,
		ArchiveName: m.pendingArchive,
	})()
	next, _ := m.Update(msg)
	m = next.(Model)

	if m.StatusMsg != "Packed ZIP created." {
		t.Errorf("status = %q", m.StatusMsg)
	}
	if _, err := os.Stat(filepath.Join(outDir, "bundle.zip")); err != nil {
		t.Errorf("archive missing: %v", err)
	}
}

func TestEscCancelsSaveSilently(t *testing.T) {
	m, _ := newTestModel(t)
	m = addFile(t, m, "a.png", "a")
	m, _ = press(t, m, runes("m"), runes("s"), keyEsc)

	if m.State != StateBrowsing || m.InputModal.IsVisible() {
		t.Errorf("state = %v, modal visible = %v", m.State, m.InputModal.IsVisible())
	}
	if m.StatusMsg != "" {
		t.Errorf("status = %q, want none", m.StatusMsg)
	}
	if m.SessionSvc.Len() != 1 {
		t.Error("cancel dropped entries")
	}
}

func TestEmptyDirectoryCancels(t *testing.T) {
	m, _ := newTestModel(t)
	m = addFile(t, m, "a.png", "a")
	m, cmd := press(t, m, runes("s"), keyEnter)

	if m.Busy || cmd != nil {
		t.Error("empty directory should not start a save")
	}
	if m.State != StateBrowsing || m.StatusMsg != "" {
		t.Errorf("state = %v status = %q", m.State, m.StatusMsg)
	}
}

func TestSaveFailureShowsError(t *testing.T) {
	m, _ := newTestModel(t)
	m = addFile(t, m, "a.png", "a")

	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	msg := SaveCmd(m.SessionSvc, domain.SaveRequest{Mode: domain.ModeIndividual, Directory: blocker})()
	next, _ := m.Update(msg)
	m = next.(Model)

	if !strings.HasPrefix(m.StatusMsg, "Save failed:") {
		t.Errorf("status = %q", m.StatusMsg)
	}
	if m.SessionSvc.Len() != 1 {
		t.Error("failed save cleared entries")
	}
}

func TestClearKey(t *testing.T) {
	m, _ := newTestModel(t)
	m = addFile(t, m, "a.png", "a")
	m, _ = press(t, m, runes("x"))
	if m.SessionSvc.Len() != 0 {
		t.Error("x did not clear the list")
	}
}

func TestFilter(t *testing.T) {
	m, _ := newTestModel(t)
	m = addFile(t, m, "grass.dds", "g")
	m = addFile(t, m, "stone.dds", "s")

	m, _ = press(t, m, runes("/"), runes("stn"))
	shown, _ := m.visibleEntries()
	if len(shown) != 1 || filepath.Base(shown[0].SourcePath) != "stone.dds" {
		t.Errorf("filtered entries = %+v", shown)
	}

	m, _ = press(t, m, keyEsc)
	shown, _ = m.visibleEntries()
	if len(shown) != 2 || m.State != StateBrowsing {
		t.Errorf("after esc: %d entries, state %v", len(shown), m.State)
	}
}

func TestCategoryIsNotRetroactive(t *testing.T) {
	m, _ := newTestModel(t)
	m = addFile(t, m, "a.png", "a")
	m, _ = press(t, m, runes("3"))

	e := m.SessionSvc.Entries()[0]
	if e.Category != domain.CategoryImages {
		t.Errorf("entry category changed to %v", e.Category)
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := press(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewRenders(t *testing.T) {
	m, _ := newTestModel(t)
	m = addFile(t, m, "a.png", "a")
	view := m.View()
	if !strings.Contains(view, "Images") || !strings.Contains(view, "Single files") {
		t.Errorf("header missing from view:\n%s", view)
	}
}

func TestRenderEntryFitsWidth(t *testing.T) {
	name := "7E42F8EC980980E904B2008FD98C1DD4_Skins%5cMediaTracker%5cImages%5ctexture.png"

	tests := []struct {
		name   string
		source string
		width  int
		keep   int // leading cells of the derived name that must survive
	}{
		{"ascii source", "/src/texture.png", 60, 60 - len("texture.png") - 7},
		// 7 double-width runes plus ".png" is 18 cells but 25 bytes
		{"wide source", "/src/テクスチャ画像.png", 60, 60 - 18 - 7},
		{"no truncation needed", "/src/a.png", 200, len(name)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := domain.CacheEntry{SourcePath: tt.source, DerivedName: name}
			for _, selected := range []bool{false, true} {
				got := renderEntry(e, selected, tt.width)
				if w := lipgloss.Width(got); w > tt.width {
					t.Errorf("selected=%v: width %d exceeds %d: %q", selected, w, tt.width, got)
				}
				if !strings.Contains(got, name[:tt.keep]) {
					t.Errorf("selected=%v: derived name cut short: %q", selected, got)
				}
			}
		})
	}
}
