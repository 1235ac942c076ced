package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"todobot/internal/bot"
	"todobot/internal/config"
)

// ConsoleSenderID identifies the local console user in the task table.
const ConsoleSenderID int64 = 1

const maxHistory = 200

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	userStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	botStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

type Handler interface {
	Handle(ctx context.Context, m bot.Message) error
	Pending(senderID int64) string
}

type speaker int

const (
	fromUser speaker = iota
	fromBot
	fromError
)

type line struct {
	from speaker
	text string
}

// repliesMsg carries everything the bot said in answer to one message.
type repliesMsg struct {
	replies []string
	err     error
}

type Model struct {
	handler  Handler
	keys     config.Keymap
	senderID int64
	input    textinput.Model
	history  []line
	height   int
	busy     bool
	status   string
}

func Run(handler Handler, cfg config.Config) error {
	program := tea.NewProgram(newModel(handler, cfg.Keys, ConsoleSenderID))
	_, err := program.Run()
	return err
}

func newModel(handler Handler, keys config.Keymap, senderID int64) Model {
	ti := textinput.New()
	ti.Placeholder = "Message"
	ti.CharLimit = 1024
	ti.Width = 60
	ti.Focus()

	return Model{
		handler:  handler,
		keys:     keys,
		senderID: senderID,
		input:    ti,
		height:   20,
		status:   "Type a menu label or use the shortcuts below.",
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case repliesMsg:
		m.busy = false
		for _, r := range msg.replies {
			m.push(line{from: fromBot, text: r})
		}
		if msg.err != nil {
			m.push(line{from: fromError, text: msg.err.Error()})
		}
		m.status = m.pendingStatus()
		return m, nil
	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 10
		m.height = msg.Height - 6
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == m.keys.Quit {
		return m, tea.Quit
	}
	if m.busy {
		return m, nil
	}
	switch key {
	case m.keys.Send:
		text := m.input.Value()
		m.input.SetValue("")
		return m.submit(text)
	case m.keys.List:
		return m.submit(bot.LabelList)
	case m.keys.Add:
		return m.submit(bot.LabelAdd)
	case m.keys.Complete:
		return m.submit(bot.LabelComplete)
	case m.keys.Delete:
		return m.submit(bot.LabelDelete)
	case m.keys.Edit:
		return m.submit(bot.LabelEdit)
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.push(line{from: fromUser, text: text})
	m.busy = true
	return m, m.dispatch(text)
}

func (m Model) dispatch(text string) tea.Cmd {
	h, sender := m.handler, m.senderID
	return func() tea.Msg {
		var out []string
		collect := func(_ context.Context, s string) error {
			out = append(out, s)
			return nil
		}
		err := h.Handle(context.Background(), bot.NewMessage(sender, text, collect, collect))
		return repliesMsg{replies: out, err: err}
	}
}

func (m *Model) push(l line) {
	m.history = append(m.history, l)
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}
}

func (m Model) pendingStatus() string {
	if p := m.handler.Pending(m.senderID); p != "" {
		return "Waiting for input: " + p
	}
	return "Ready"
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Todo bot (console)"))
	b.WriteString("\n\n")

	var rendered []string
	for _, l := range m.history {
		for _, row := range strings.Split(l.text, "\n") {
			switch l.from {
			case fromUser:
				rendered = append(rendered, userStyle.Render("> "+row))
			case fromBot:
				rendered = append(rendered, botStyle.Render("  "+row))
			default:
				rendered = append(rendered, errStyle.Render("! "+row))
			}
		}
	}
	if m.height > 0 && len(rendered) > m.height {
		rendered = rendered[len(rendered)-m.height:]
	}
	for _, r := range rendered {
		b.WriteString(r)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(renderHelp(m.keys)))

	return b.String()
}

func renderHelp(k config.Keymap) string {
	return fmt.Sprintf("%s send • %s list • %s add • %s complete • %s delete • %s edit • %s quit",
		k.Send, k.List, k.Add, k.Complete, k.Delete, k.Edit, k.Quit)
}
