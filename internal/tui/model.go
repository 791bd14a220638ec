// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

// Package tui is the interactive chat screen.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/studyhelper/studyhelper/internal/assistant"
)

const (
	headerHeight = 2
	inputHeight  = 3
	helpHeight   = 1

	welcomeText = "Ask me anything. New answers are saved to the knowledge base."
)

// Asker answers one question per call. *assistant.Session implements it.
type Asker interface {
	Ask(ctx context.Context, query string) (assistant.Turn, error)
	Label() string
}

type entryKind int

const (
	entryWelcome entryKind = iota
	entryUser
	entryAnswer
	entryError
)

type entry struct {
	kind       entryKind
	content    string
	provenance string
	failed     bool
}

// answerMsg carries the outcome of one Ask back to Update.
type answerMsg struct {
	turn assistant.Turn
	err  error
}

// Model is the bubbletea model of the chat screen.
type Model struct {
	ctx      context.Context
	asker    Asker
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	entries []entry
	pending bool
	width   int
	height  int
}

// New returns a chat Model bound to asker.
func New(ctx context.Context, asker Asker) Model {
	in := textinput.New()
	in.Placeholder = "Type a question and press enter"
	in.Prompt = ""
	in.CharLimit = 0
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := Model{
		ctx:      ctx,
		asker:    asker,
		input:    in,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		entries:  []entry{{kind: entryWelcome, content: welcomeText}},
		width:    80,
	}
	m.renderer = newRenderer(m.width)
	m.rebuildView()
	return m
}

func newRenderer(width int) *glamour.TermRenderer {
	wrap := width - 6
	if wrap < 20 {
		wrap = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-inputHeight-helpHeight, 3)
		m.input.Width = max(msg.Width-8, 10)
		m.renderer = newRenderer(msg.Width)
		m.rebuildView()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case answerMsg:
		m.pending = false
		switch {
		case msg.err != nil:
			m.entries = append(m.entries, entry{kind: entryError, content: msg.err.Error()})
		default:
			m.entries = append(m.entries, entry{
				kind:       entryAnswer,
				content:    msg.turn.Content,
				provenance: msg.turn.Provenance,
				failed:     msg.turn.Failed,
			})
		}
		m.rebuildView()
		return m, nil

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.rebuildView()
		return m, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyPgUp:
		m.viewport.HalfViewUp()
		return m, nil
	case tea.KeyPgDown:
		m.viewport.HalfViewDown()
		return m, nil
	case tea.KeyEnter:
		// One question at a time.
		if m.pending {
			return m, nil
		}
		query := m.input.Value()
		if strings.TrimSpace(query) == "" {
			return m, nil
		}
		m.input.Reset()
		m.entries = append(m.entries, entry{kind: entryUser, content: query})
		m.pending = true
		m.rebuildView()
		return m, tea.Batch(m.spinner.Tick, askCmd(m.ctx, m.asker, query))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func askCmd(ctx context.Context, asker Asker, query string) tea.Cmd {
	return func() tea.Msg {
		turn, err := asker.Ask(ctx, query)
		return answerMsg{turn: turn, err: err}
	}
}

func (m *Model) rebuildView() {
	var sb strings.Builder
	for _, e := range m.entries {
		sb.WriteString(m.renderEntry(e))
		sb.WriteString("\n")
	}
	if m.pending {
		sb.WriteString(m.spinner.View() + dimStyle.Render(" Thinking…") + "\n")
	}
	m.viewport.SetContent(sb.String())
	m.viewport.GotoBottom()
}

func (m *Model) renderEntry(e entry) string {
	switch e.kind {
	case entryWelcome:
		return dimStyle.Render(e.content) + "\n"
	case entryUser:
		return userBlockStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			userLabelStyle.Render("You"),
			e.content,
		)) + "\n"
	case entryError:
		return errorStyle.Render("✗ "+e.content) + "\n"
	}

	body := e.content
	if e.failed {
		body = errorStyle.Render(body)
	} else if m.renderer != nil {
		if rendered, err := m.renderer.Render(e.content); err == nil {
			body = strings.Trim(rendered, "\n")
		}
	}
	return botBlockStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		botLabelStyle.Render("Assistant"),
		body,
		provenanceStyle.Render(e.provenance),
	)) + "\n"
}

func (m Model) View() string {
	header := headerStyle.Width(m.width).Render(
		titleStyle.Render("Study Helper") + dimStyle.Render("  ·  "+m.asker.Label()),
	)

	prompt := promptStyle.Render("> ")
	if m.pending {
		prompt = m.spinner.View() + " "
	}
	input := inputBoxStyle.Width(max(m.width-2, 10)).Render(prompt + m.input.View())
	help := dimStyle.Render("enter: ask  ·  pgup/pgdown: scroll  ·  esc: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), input, help)
}

// Run shows the chat screen until the user quits or ctx is cancelled.
func Run(ctx context.Context, asker Asker) error {
	_, err := tea.NewProgram(New(ctx, asker), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
