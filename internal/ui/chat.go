// Package ui is the terminal chat view of the watch CLI.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/johndosdos/atalaia/internal/chatsync"
	"github.com/johndosdos/atalaia/internal/client"
	"github.com/johndosdos/atalaia/internal/model"
	ws "github.com/johndosdos/atalaia/internal/websocket"
)

var (
	appStyle     = lipgloss.NewStyle().Padding(1, 2)
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E88E5")).PaddingBottom(1)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5A5A5A")).PaddingTop(1)
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB300"))
	inputStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#1E88E5")).Padding(0, 1)
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#1E88E5"))
	timeStyle    = lipgloss.NewStyle().Faint(true)
	pendingStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	alertStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#D32F2F")).Padding(0, 1)
)

// Sender writes inbound frames to the server.
type Sender interface {
	Send(ctx context.Context, in ws.Inbound) error
}

// Receiver blocks until the server writes a frame.
type Receiver interface {
	Next(ctx context.Context) (ws.Frame, error)
}

// Conn is an open chat connection.
type Conn interface {
	Sender
	Receiver
}

type frameMsg ws.Frame

type errMsg struct{ err error }

// Model is the chat screen. Frames from the server are merged through a
// local synchronizer, so sent messages show up before the server confirms
// them.
type Model struct {
	ctx      context.Context
	recv     Receiver
	sync     *chatsync.Synchronizer
	title    string
	viewport viewport.Model
	textarea textarea.Model
	ready    bool
	width    int
	online   int
	notice   string
	err      error
}

// New builds the chat screen for user.
func New(ctx context.Context, user model.User, conn Conn) Model {
	session := chatsync.Session{
		UserID:         user.ID,
		Username:       user.Name,
		Role:           user.Role,
		NeighborhoodID: user.NeighborhoodID,
	}
	submit := chatsync.SubmitterFunc(func(ctx context.Context, msg model.ChatMessage) error {
		in := ws.Inbound{Type: ws.FrameMessage, Content: msg.Content, ClientMsgID: msg.ClientMsgID}
		if msg.IsSystemAlert {
			in.Type = ws.FrameAlert
			in.AlertType = msg.AlertType
		}
		return conn.Send(ctx, in)
	})

	ta := textarea.New()
	ta.Placeholder = "Digite sua mensagem..."
	ta.Prompt = "│ "
	ta.Focus()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.SetWidth(50)
	ta.SetHeight(2)
	ta.CharLimit = 500

	title := "Atalaia - Chat Global"
	if user.NeighborhoodID != nil {
		title = "Atalaia - Chat do Bairro"
	}

	return Model{
		ctx:      ctx,
		recv:     conn,
		sync:     chatsync.New(session, submit),
		title:    title,
		textarea: ta,
	}
}

// Run shows the chat screen until the user quits.
func Run(ctx context.Context, user model.User, conn *client.Conn) error {
	p := tea.NewProgram(New(ctx, user, conn), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForFrame())
}

func (m Model) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		f, err := m.recv.Next(m.ctx)
		if err != nil {
			return errMsg{err}
		}
		return frameMsg(f)
	}
}

var sendKey = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "enviar"))

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc:
			return m, tea.Quit
		case key.Matches(msg, sendKey):
			m.send(m.textarea.Value())
			m.textarea.Reset()
			m.refresh()
			return m, nil
		case msg.Type == tea.KeyCtrlP:
			m.alert(model.AlertPanic)
			m.refresh()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if !m.ready {
			m.viewport = viewport.New(msg.Width-6, msg.Height-9)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 6
			m.viewport.Height = msg.Height - 9
		}
		m.textarea.SetWidth(msg.Width - 6)
		m.refresh()

	case frameMsg:
		m.apply(ws.Frame(msg))
		m.refresh()
		return m, m.waitForFrame()

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// apply merges a server frame into the screen state.
func (m *Model) apply(f ws.Frame) {
	switch f.Type {
	case ws.FrameHistory:
		m.sync.Load(f.Messages)
	case ws.FrameMessage:
		// The echo of our own optimistic send is already on screen.
		if f.Message == nil || f.Message.Pending {
			return
		}
		m.sync.Receive(*f.Message)
	case ws.FrameConfirm:
		if f.Message != nil {
			m.sync.Receive(*f.Message)
		}
	case ws.FramePresence:
		if f.Count != nil {
			m.online = *f.Count
		}
	case ws.FrameRateLimited:
		m.notice = fmt.Sprintf("Muitas mensagens. Tente novamente em %ds.", f.RetryIn)
	}
}

func (m *Model) send(text string) {
	if _, ok := m.sync.Send(m.ctx, chatsync.Draft{Content: text}); ok {
		m.notice = ""
	}
}

func (m *Model) alert(a model.AlertType) {
	m.sync.Send(m.ctx, chatsync.Draft{AlertType: a})
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(formatMessages(m.sync.Messages(), m.width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "\n  Conectando..."
	}

	status := fmt.Sprintf("Enter envia • Ctrl+P pânico • Esc sai • %d online", m.online)
	parts := []string{
		titleStyle.Render(m.title),
		m.viewport.View(),
		inputStyle.Render(m.textarea.View()),
		statusStyle.Render(status),
	}
	if m.notice != "" {
		parts = append(parts, noticeStyle.Render(m.notice))
	}
	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Err is the error that closed the screen, if any.
func (m Model) Err() error {
	return m.err
}

func formatMessages(messages []model.ChatMessage, width int) string {
	var b strings.Builder
	contentWidth := max(width-30, 20)

	for _, msg := range messages {
		stamp := timeStyle.Render(msg.CreatedAt.Local().Format("15:04"))
		user := userStyle.Render(fmt.Sprintf("%s [%s]:", msg.Username, msg.UserRole.Label()))

		var content string
		switch {
		case msg.IsSystemAlert:
			content = alertStyle.Render("⚠ " + msg.Content)
		case msg.Pending:
			content = pendingStyle.Width(contentWidth).Render(msg.Content + " (enviando)")
		default:
			content = lipgloss.NewStyle().Width(contentWidth).Render(msg.Content)
		}

		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, stamp, " ", user, " ", content))
		b.WriteString("\n")
	}
	return b.String()
}
