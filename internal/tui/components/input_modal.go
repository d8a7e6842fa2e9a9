package components

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/cachegen/internal/tui/styles"
)

const modalWidth = 56

// InputModal is a simple text input modal
type InputModal struct {
	visible bool
	title   string
	input   textinput.Model
}

// NewInputModal creates a new input modal
func NewInputModal() InputModal {
	ti := textinput.New()
	ti.CharLimit = 4096
	ti.Width = modalWidth - 2
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.White)
	ti.PlaceholderStyle = styles.DimStyle

	return InputModal{
		input: ti,
	}
}

// Show displays the modal with a title and an initial value
func (m *InputModal) Show(title, placeholder, value string) {
	m.visible = true
	m.title = title
	m.input.Placeholder = placeholder
	m.input.SetValue(value)
	m.input.CursorEnd()
	m.input.Focus()
}

// Hide dismisses the modal
func (m *InputModal) Hide() {
	m.visible = false
	m.input.Blur()
}

// IsVisible returns whether the modal is shown
func (m InputModal) IsVisible() bool {
	return m.visible
}

// Value returns the current input value
func (m InputModal) Value() string {
	return m.input.Value()
}

// Update handles input events, returns (modal, cmd, submitted).
// esc hides the modal without submitting.
func (m InputModal) Update(msg tea.Msg) (InputModal, tea.Cmd, bool) {
	if !m.visible {
		return m, nil, false
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			return m, nil, true
		case "esc":
			m.Hide()
			return m, nil, false
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

// View renders the input modal
func (m InputModal) View() string {
	if !m.visible {
		return ""
	}

	titleStyle := styles.ModalTitleStyle.
		Width(modalWidth).
		Background(styles.SlateDark)

	inputStyle := lipgloss.NewStyle().
		Width(modalWidth).
		Background(styles.SlateDark)

	hintStyle := styles.DimStyle.
		Width(modalWidth).
		Background(styles.SlateDark)

	spacer := lipgloss.NewStyle().
		Width(modalWidth).
		Background(styles.SlateDark).
		Render("")

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(m.title),
		spacer,
		inputStyle.Render(m.input.View()),
		spacer,
		hintStyle.Render("enter confirm · esc cancel"),
	)

	return styles.ModalStyle.Render(content)
}
