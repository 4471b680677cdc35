package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/Rorical/MediBot/internal/core"
	"github.com/Rorical/MediBot/internal/dispatcher"
	"github.com/Rorical/MediBot/internal/models"
	"github.com/Rorical/MediBot/internal/update"
	"github.com/Rorical/MediBot/ui/components"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	markdownStyle = "dark"
)

// AppModel is the bubbletea page. The region widgets are created once and
// only ever updated from core events.
type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
	quick      []string
	server     string

	input    textinput.Model
	list     viewport.Model
	spinner  spinner.Model
	renderer *components.MessageRenderer
}

func newAppModel(disp *dispatcher.EventDispatcher, server string, quick []string) *AppModel {
	input := textinput.New()
	input.Placeholder = "Ask a medical question..."
	input.Prompt = "> "
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := &AppModel{
		appModel: models.AppModel{
			Messages:    make([]models.Message, 0),
			Speech:      core.SpeechGreeting,
			SendEnabled: true,
			Width:       defaultWidth,
			Height:      defaultHeight,
		},
		dispatcher: disp,
		quick:      quick,
		server:     server,
		input:      input,
		list:       viewport.New(defaultWidth, defaultHeight),
		spinner:    sp,
	}
	m.resize()
	return m
}

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.dispatcher.ListenForCoreEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && m.scroll(keyMsg) {
		return m, nil
	}

	var cmds []tea.Cmd

	cmd, effect, handled := update.HandleUpdateWithEventBus(&m.appModel, msg, m.input.Value(), m.quick, m.dispatcher.GetEventBus())
	cmds = append(cmds, cmd)

	switch msg.(type) {
	case update.CoreEventMsg:
		// The speech bubble may have changed height
		m.layout()
		// Keep listening for the next core event
		cmds = append(cmds, m.dispatcher.ListenForCoreEvents())
	case tea.WindowSizeMsg:
		m.resize()
	case spinner.TickMsg:
		var tick tea.Cmd
		m.spinner, tick = m.spinner.Update(msg)
		cmds = append(cmds, tick)
		if m.appModel.Typing {
			effect.ListChanged = true
		}
	}

	if effect.Input != nil {
		m.input.SetValue(*effect.Input)
		m.input.CursorEnd()
	}
	if effect.ListChanged {
		m.refreshList()
	}

	if !handled {
		var c tea.Cmd
		m.input, c = m.input.Update(msg)
		cmds = append(cmds, c)
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			m.list, c = m.list.Update(msg)
			cmds = append(cmds, c)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *AppModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.list.View(),
		m.footer(),
	)
}

func (m *AppModel) header() string {
	w := m.appModel.Width
	return lipgloss.JoinVertical(lipgloss.Left,
		components.RenderStatus(m.appModel.Connection, m.server, w),
		components.RenderSpeech(m.appModel.Speech, w),
	)
}

func (m *AppModel) footer() string {
	w := m.appModel.Width
	return lipgloss.JoinVertical(lipgloss.Left,
		components.RenderInput(m.input.View(), m.appModel.SendEnabled, w),
		components.RenderQuickHints(m.quick, w),
	)
}

// scroll moves the message list for paging keys. Other keys belong to the
// input field, so letters never scroll.
func (m *AppModel) scroll(keyMsg tea.KeyMsg) bool {
	switch keyMsg.String() {
	case "pgup":
		m.list.PageUp()
	case "pgdown":
		m.list.PageDown()
	case "ctrl+up":
		m.list.ScrollUp(1)
	case "ctrl+down":
		m.list.ScrollDown(1)
	case "ctrl+home":
		m.list.GotoTop()
	case "ctrl+end":
		m.list.GotoBottom()
	default:
		return false
	}
	return true
}

// layout fits the message list between header and footer.
func (m *AppModel) layout() {
	w, h := m.appModel.Width, m.appModel.Height
	m.input.Width = max(w-8, 10)

	chrome := lipgloss.Height(m.header()) + lipgloss.Height(m.footer())
	m.list.Width = w
	m.list.Height = max(h-chrome, 3)
}

// resize relayouts and rebuilds the markdown renderer for the new wrap width.
func (m *AppModel) resize() {
	m.layout()
	w := m.appModel.Width

	renderer, err := components.NewMessageRenderer(markdownStyle, max(w-8, 20))
	if err != nil {
		log.Warn().Err(err).Msg("markdown renderer unavailable, showing plain text")
	} else {
		m.renderer = renderer
	}
	m.refreshList()
}

// refreshList re-renders the message list and scrolls to the newest entry.
func (m *AppModel) refreshList() {
	content := m.renderer.RenderMessages(m.appModel.Messages, m.appModel.Typing, m.spinner.View())
	m.list.SetContent(strings.TrimRight(content, "\n"))
	m.list.GotoBottom()
}
