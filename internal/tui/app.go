package tui

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/cachegen/internal/domain"
	"github.com/mmcdole/cachegen/internal/service"
	"github.com/mmcdole/cachegen/internal/tui/components"
	"github.com/mmcdole/cachegen/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StatePicking
	StateInput
	StateFilter
)

// InputPurpose says what the open input modal is asking for
type InputPurpose int

const (
	InputNone InputPurpose = iota
	InputArchiveName
	InputDirectory
)

// Layout
const (
	// header + status + help
	ChromeHeight  = 4
	MinListHeight = 3
)

const statusTimeout = 5 * time.Second

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	// Services
	SessionSvc *service.SessionService
	StateStore domain.StateStore
	logger     *slog.Logger

	// Session settings
	Category domain.Category
	Mode     domain.OutputMode

	// UI Components
	Picker      filepicker.Model
	InputModal  components.InputModal
	FilterInput textinput.Model
	Spinner     spinner.Model
	Help        help.Model

	// Dimensions
	Width  int
	Height int

	// List state
	cursor    int
	offset    int
	filterIdx []int // nil when no filter is applied

	// Save flow
	inputPurpose   InputPurpose
	pendingArchive string

	// UI state
	StatusMsg   string
	StatusStyle lipgloss.Style
	Busy        bool
}

// NewModel creates a new application model
func NewModel(
	sessionSvc *service.SessionService,
	state domain.StateStore,
	category domain.Category,
	mode domain.OutputMode,
	logger *slog.Logger,
) Model {
	if logger == nil {
		logger = slog.Default()
	}

	fi := textinput.New()
	fi.Prompt = "/"
	fi.Placeholder = "filter"
	fi.PromptStyle = styles.AccentStyle
	fi.PlaceholderStyle = styles.DimStyle

	return Model{
		State:       StateBrowsing,
		SessionSvc:  sessionSvc,
		StateStore:  state,
		logger:      logger,
		Category:    category,
		Mode:        mode,
		InputModal:  components.NewInputModal(),
		FilterInput: fi,
		Spinner:     spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.AccentStyle)),
		Help:        help.New(),
		StatusStyle: styles.SubtitleStyle,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.Help.Width = msg.Width
		m.Picker.SetHeight(m.listHeight())
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		if !m.Busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case FilesProcessedMsg:
		return m.handleFilesProcessed(msg)

	case SaveDoneMsg:
		return m.handleSaveDone(msg)

	case ClearStatusMsg:
		m.StatusMsg = ""
		return m, nil
	}

	// Directory listings and other picker-internal messages
	if m.State == StatePicking {
		var cmd tea.Cmd
		m.Picker, cmd = m.Picker.Update(msg)
		return m, cmd
	}

	return m, nil
}

// openPicker starts a fresh file picker in the last source directory
func (m Model) openPicker() (Model, tea.Cmd) {
	fp := filepicker.New()
	fp.CurrentDirectory = m.startDirectory()
	fp.FileAllowed = true
	fp.DirAllowed = false
	fp.AutoHeight = false
	fp.SetHeight(m.listHeight())

	m.Picker = fp
	m.State = StatePicking
	return m, m.Picker.Init()
}

// startDirectory prefers the remembered source directory, then home
func (m Model) startDirectory() string {
	if m.StateStore != nil {
		if dir := m.StateStore.LastDir(domain.StateSourceDir); dir != "" {
			return dir
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

func (m Model) handleFilesProcessed(msg FilesProcessedMsg) (tea.Model, tea.Cmd) {
	m.applyFilter()
	if msg.Err != nil {
		return m.setStatus(styles.ErrorStyle, "Skipped: "+msg.Err.Error())
	}
	if n := len(msg.Added); n == 1 {
		return m.setStatus(styles.SuccessStyle, "Added "+msg.Added[0].DerivedName)
	}
	return m, nil
}

// beginSave asks for whatever the current mode needs before saving
func (m Model) beginSave() (tea.Model, tea.Cmd) {
	if m.SessionSvc.Len() == 0 {
		return m.setStatus(styles.WarnStyle, "No files processed.")
	}

	m.State = StateInput
	if m.Mode == domain.ModePack {
		m.inputPurpose = InputArchiveName
		m.InputModal.Show("ZIP file name", "archive name (.zip is added)", "")
		return m, textinput.Blink
	}
	return m.askDirectory()
}

func (m Model) askDirectory() (tea.Model, tea.Cmd) {
	last := ""
	if m.StateStore != nil {
		last = m.StateStore.LastDir(domain.StateOutputDir)
	}

	m.State = StateInput
	m.inputPurpose = InputDirectory
	m.InputModal.Show("Output directory", "directory to write into", last)
	return m, textinput.Blink
}

// handleInputSubmit advances the save flow. An empty answer cancels it.
func (m Model) handleInputSubmit() (tea.Model, tea.Cmd) {
	value := trimInput(m.InputModal.Value())
	m.InputModal.Hide()
	if value == "" {
		return m.cancelInput(), nil
	}

	switch m.inputPurpose {
	case InputArchiveName:
		m.pendingArchive = value
		return m.askDirectory()

	case InputDirectory:
		req := domain.SaveRequest{
			Mode:        m.Mode,
			Directory:   value,
			ArchiveName: m.pendingArchive,
		}
		m = m.cancelInput()
		m.Busy = true
		m.StatusMsg = ""
		return m, tea.Batch(SaveCmd(m.SessionSvc, req), m.Spinner.Tick)
	}

	return m.cancelInput(), nil
}

// cancelInput closes the save flow without a message
func (m Model) cancelInput() Model {
	m.InputModal.Hide()
	m.State = StateBrowsing
	m.inputPurpose = InputNone
	m.pendingArchive = ""
	return m
}

func (m Model) handleSaveDone(msg SaveDoneMsg) (tea.Model, tea.Cmd) {
	m.Busy = false

	switch {
	case msg.Err == nil:
		m.cursor, m.offset = 0, 0
		m.clearFilter()
		text := "Files saved successfully."
		if msg.Result.Mode == domain.ModePack {
			text = "Packed ZIP created."
		}
		return m.setStatus(styles.SuccessStyle, text)

	case isCancelled(msg.Err):
		return m, nil

	case isEmptySelection(msg.Err):
		return m.setStatus(styles.WarnStyle, "No files processed.")

	default:
		m.logger.Warn("save failed", "error", msg.Err)
		return m.setStatus(styles.ErrorStyle, "Save failed: "+msg.Err.Error())
	}
}

// setStatus shows a status line message for a few seconds
func (m Model) setStatus(style lipgloss.Style, text string) (tea.Model, tea.Cmd) {
	m.StatusMsg = text
	m.StatusStyle = style
	return m, ClearStatusCmd(statusTimeout)
}

// visibleEntries returns the entries shown in the list with their session index
func (m Model) visibleEntries() ([]domain.CacheEntry, []int) {
	entries := m.SessionSvc.Entries()
	if m.filterIdx == nil {
		idx := make([]int, len(entries))
		for i := range entries {
			idx[i] = i
		}
		return entries, idx
	}

	shown := make([]domain.CacheEntry, 0, len(m.filterIdx))
	idx := make([]int, 0, len(m.filterIdx))
	for _, i := range m.filterIdx {
		if i < len(entries) {
			shown = append(shown, entries[i])
			idx = append(idx, i)
		}
	}
	return shown, idx
}

func (m *Model) applyFilter() {
	if m.FilterInput.Value() == "" {
		m.filterIdx = nil
	} else {
		m.filterIdx = filterEntries(m.FilterInput.Value(), m.SessionSvc.Entries())
		if m.filterIdx == nil {
			m.filterIdx = []int{}
		}
	}
	m.clampCursor()
}

func (m *Model) clearFilter() {
	m.FilterInput.SetValue("")
	m.FilterInput.Blur()
	m.filterIdx = nil
	m.clampCursor()
}

func (m *Model) clampCursor() {
	shown, _ := m.visibleEntries()
	if m.cursor >= len(shown) {
		m.cursor = len(shown) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
}

// listHeight is the number of rows available for the entry list
func (m Model) listHeight() int {
	h := m.Height - ChromeHeight
	if m.State == StateFilter || m.filterIdx != nil {
		h--
	}
	if h < MinListHeight {
		h = MinListHeight
	}
	return h
}
