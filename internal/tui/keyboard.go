package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/mmcdole/cachegen/internal/tui/styles"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	// Handle state-specific keys
	switch m.State {
	case StateInput:
		return m.routeToModal(msg)

	case StatePicking:
		return m.routeToPicker(msg)

	case StateFilter:
		return m.routeToFilter(msg)
	}

	// A save is running; only quitting is allowed
	if m.Busy {
		if key.Matches(msg, Keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.Help.ShowAll = !m.Help.ShowAll
		return m, nil

	case key.Matches(msg, Keys.Escape):
		// Clear active filter if any
		if m.filterIdx != nil {
			m.clearFilter()
		}
		m.StatusMsg = ""
		return m, nil

	case key.Matches(msg, Keys.Up):
		m.cursor--
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.Down):
		m.cursor++
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.Home):
		m.cursor = 0
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.End):
		shown, _ := m.visibleEntries()
		m.cursor = len(shown) - 1
		m.clampCursor()
		return m, nil

	case key.Matches(msg, Keys.Add):
		m.StatusMsg = ""
		return m.openPicker()

	case key.Matches(msg, Keys.NextCategory):
		m.Category = m.Category.Next()
		return m, nil

	case key.Matches(msg, Keys.Category):
		n := int(msg.String()[0] - '1')
		if cat := domain.Category(n); cat.Valid() {
			m.Category = cat
		}
		return m, nil

	case key.Matches(msg, Keys.ToggleMode):
		m.Mode = m.Mode.Toggle()
		return m, nil

	case key.Matches(msg, Keys.Clear):
		m.SessionSvc.Clear()
		m.clearFilter()
		return m.setStatus(styles.SubtitleStyle, "List cleared.")

	case key.Matches(msg, Keys.Filter):
		m.State = StateFilter
		m.FilterInput.Focus()
		return m, nil

	case key.Matches(msg, Keys.Save):
		return m.beginSave()
	}

	return m, nil
}

// routeToModal feeds keys to the open input modal
func (m Model) routeToModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var (
		cmd       tea.Cmd
		submitted bool
	)
	m.InputModal, cmd, submitted = m.InputModal.Update(msg)
	if submitted {
		return m.handleInputSubmit()
	}
	if !m.InputModal.IsVisible() {
		// esc: the save is abandoned silently
		return m.cancelInput(), nil
	}
	return m, cmd
}

// routeToPicker feeds keys to the file picker; esc returns to the list
func (m Model) routeToPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, Keys.Escape) {
		m.State = StateBrowsing
		return m, nil
	}

	var cmd tea.Cmd
	m.Picker, cmd = m.Picker.Update(msg)

	if ok, path := m.Picker.DidSelectFile(msg); ok {
		return m, tea.Batch(cmd, ProcessFilesCmd(m.SessionSvc, []string{path}, m.Category))
	}
	return m, cmd
}

// routeToFilter edits the filter query; enter keeps it, esc drops it
func (m Model) routeToFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.clearFilter()
		m.State = StateBrowsing
		return m, nil
	case "enter":
		m.FilterInput.Blur()
		m.State = StateBrowsing
		if m.FilterInput.Value() == "" {
			m.filterIdx = nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.FilterInput, cmd = m.FilterInput.Update(msg)
	m.cursor, m.offset = 0, 0
	m.applyFilter()
	return m, cmd
}

func trimInput(s string) string {
	return strings.TrimSpace(s)
}

func isCancelled(err error) bool {
	return errors.Is(err, domain.ErrCancelled)
}

func isEmptySelection(err error) bool {
	return errors.Is(err, domain.ErrEmptySelection)
}
