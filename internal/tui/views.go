package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/mmcdole/cachegen/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	var body string
	switch m.State {
	case StatePicking:
		body = m.renderPicker()
	default:
		body = m.renderList()
	}

	screen := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatus(),
		m.renderHelp(),
	)

	if m.State == StateInput && m.InputModal.IsVisible() {
		return lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	return screen
}

func (m Model) renderHeader() string {
	title := styles.TitleStyle.Render("cachegen")
	mode := styles.ModeBadge.Render(m.Mode.Label())
	cat := styles.CategoryBadge.Render(m.Category.Title())
	count := styles.DimStyle.Render(fmt.Sprintf("%d pending", m.SessionSvc.Len()))

	return lipgloss.JoinHorizontal(lipgloss.Top, title, " ", mode, " ", cat, "  ", count)
}

func (m Model) renderPicker() string {
	hint := styles.DimStyle.Render(fmt.Sprintf("Add as %s · enter select · esc done", m.Category.Title()))
	dir := styles.SubtitleStyle.Render(m.Picker.CurrentDirectory)
	return lipgloss.JoinVertical(lipgloss.Left, dir, hint, m.Picker.View())
}

func (m Model) renderList() string {
	height := m.listHeight()
	shown, _ := m.visibleEntries()

	var lines []string
	if m.State == StateFilter || m.filterIdx != nil {
		lines = append(lines, m.FilterInput.View())
	}

	switch {
	case m.SessionSvc.Len() == 0:
		lines = append(lines, styles.DimStyle.Render("No files processed. Press a to add files."))
	case len(shown) == 0:
		lines = append(lines, styles.DimStyle.Render("No matches."))
	}

	end := m.offset + height
	if end > len(shown) {
		end = len(shown)
	}
	for i := m.offset; i < end; i++ {
		lines = append(lines, renderEntry(shown[i], i == m.cursor, m.Width))
	}

	for len(lines) < height+boolToInt(m.State == StateFilter || m.filterIdx != nil) {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// renderEntry shows the derived name followed by the dimmed source file name
func renderEntry(e domain.CacheEntry, selected bool, width int) string {
	source := filepath.Base(e.SourcePath)
	text := e.DerivedName
	if width > 0 {
		// padding and the gap between name and source take 6 cells
		avail := width - lipgloss.Width(source) - 6
		if avail > 10 {
			text = styles.Truncate(text, avail)
		}
	}

	if selected {
		return styles.SelectedItemStyle.Render(text + "  " + source)
	}
	return styles.NormalItemStyle.Render(text) + styles.DimStyle.Render(source)
}

func (m Model) renderStatus() string {
	if m.Busy {
		return styles.StatusBarStyle.Render(m.Spinner.View() + " Saving...")
	}
	if m.StatusMsg == "" {
		return ""
	}
	return styles.StatusBarStyle.Render(m.StatusStyle.Render(m.StatusMsg))
}

func (m Model) renderHelp() string {
	return styles.HelpStyle.Render(m.Help.View(Keys))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
