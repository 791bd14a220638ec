// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Studyhelper Contributors

package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// SetupOptions connects the setup wizard to key validation and storage.
type SetupOptions struct {
	// Providers are offered in order; the first is preselected.
	Providers []string
	// Describe returns a hint shown next to a provider name. Optional.
	Describe func(provider string) string
	// Validate checks key before it is saved. Nil skips the check.
	Validate func(ctx context.Context, provider, key string) error
	// Save persists the choice and returns the config path written.
	Save func(provider, key string) (string, error)
}

// SetupResult is the outcome of a finished wizard. Completed is false when
// the user quit early.
type SetupResult struct {
	Completed  bool
	Provider   string
	ConfigPath string
}

type setupStep int

const (
	stepPick setupStep = iota
	stepKey
	stepCheck
	stepDone
	stepFailed
)

type (
	keyCheckedMsg struct{ err error }
	savedMsg      struct {
		path string
		err  error
	}
)

var selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)

// SetupModel is the bubbletea model of the first-run wizard.
type SetupModel struct {
	ctx  context.Context
	opts SetupOptions

	step     setupStep
	cursor   int
	keyInput textinput.Model
	spinner  spinner.Model

	provider string
	apiKey   string
	notice   string
	path     string
	err      error
}

// NewSetup returns a wizard on its provider selection step.
func NewSetup(ctx context.Context, opts SetupOptions) SetupModel {
	in := textinput.New()
	in.Placeholder = "paste API key here"
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return SetupModel{ctx: ctx, opts: opts, keyInput: in, spinner: sp}
}

func (m SetupModel) Init() tea.Cmd { return nil }

func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.step {
		case stepPick:
			return m.pickKey(msg)
		case stepKey:
			return m.keyEntry(msg)
		}
		return m, nil

	case spinner.TickMsg:
		if m.step != stepCheck {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case keyCheckedMsg:
		if msg.err != nil {
			m.step = stepKey
			m.notice = msg.err.Error()
			cmd := m.keyInput.Focus()
			return m, cmd
		}
		return m, m.saveCmd()

	case savedMsg:
		if msg.err != nil {
			m.step, m.err = stepFailed, msg.err
		} else {
			m.step, m.path = stepDone, msg.path
		}
		return m, tea.Quit
	}

	if m.step == stepKey {
		var cmd tea.Cmd
		m.keyInput, cmd = m.keyInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m SetupModel) pickKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.cursor = max(m.cursor-1, 0)
	case "down", "j":
		m.cursor = min(m.cursor+1, len(m.opts.Providers)-1)
	case "enter":
		if len(m.opts.Providers) == 0 {
			return m, nil
		}
		m.provider = m.opts.Providers[m.cursor]
		m.step = stepKey
		m.notice = ""
		m.keyInput.Reset()
		cmd := m.keyInput.Focus()
		return m, cmd
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m SetupModel) keyEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.step = stepPick
		m.notice = ""
		m.keyInput.Blur()
		return m, nil
	case tea.KeyEnter:
		key := strings.TrimSpace(m.keyInput.Value())
		if key == "" {
			m.notice = "API key must not be empty"
			return m, nil
		}
		m.apiKey = key
		m.notice = ""
		m.keyInput.Blur()
		if m.opts.Validate == nil {
			return m, m.saveCmd()
		}
		m.step = stepCheck
		return m, tea.Batch(m.spinner.Tick, m.checkCmd())
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m SetupModel) checkCmd() tea.Cmd {
	ctx, validate, provider, key := m.ctx, m.opts.Validate, m.provider, m.apiKey
	return func() tea.Msg {
		return keyCheckedMsg{err: validate(ctx, provider, key)}
	}
}

func (m SetupModel) saveCmd() tea.Cmd {
	save, provider, key := m.opts.Save, m.provider, m.apiKey
	return func() tea.Msg {
		path, err := save(provider, key)
		return savedMsg{path: path, err: err}
	}
}

func (m SetupModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Study Helper setup") + "\n\n")

	switch m.step {
	case stepPick:
		b.WriteString(promptStyle.Render("Which model should answer new questions?") + "\n\n")
		for i, p := range m.opts.Providers {
			hint := ""
			if m.opts.Describe != nil {
				hint = "  " + dimStyle.Render(m.opts.Describe(p))
			}
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> "+p) + hint + "\n")
			} else {
				b.WriteString("  " + p + hint + "\n")
			}
		}
		b.WriteString("\n" + dimStyle.Render("↑/↓ move  ·  enter select  ·  q quit"))

	case stepKey:
		b.WriteString(promptStyle.Render(m.provider+" API key") + "\n\n")
		b.WriteString(m.keyInput.View() + "\n")
		if m.notice != "" {
			b.WriteString("\n" + errorStyle.Render(m.notice) + "\n")
		}
		b.WriteString("\n" + dimStyle.Render("enter continue  ·  esc back  ·  ctrl+c quit"))

	case stepCheck:
		b.WriteString(m.spinner.View() + " Checking " + m.provider + " API key…\n")

	case stepDone:
		b.WriteString(userLabelStyle.Render("Setup complete.") + "\n\n")
		b.WriteString(dimStyle.Render("Config written to "+m.path) + "\n")

	case stepFailed:
		b.WriteString(errorStyle.Render("Setup failed: "+m.err.Error()) + "\n")
	}

	return inputBoxStyle.Render(b.String())
}

// Result reports what the wizard ended with.
func (m SetupModel) Result() (SetupResult, error) {
	if m.step == stepFailed {
		return SetupResult{}, m.err
	}
	return SetupResult{Completed: m.step == stepDone, Provider: m.provider, ConfigPath: m.path}, nil
}

// RunSetup shows the wizard until it finishes or the user quits.
func RunSetup(ctx context.Context, opts SetupOptions) (SetupResult, error) {
	final, err := tea.NewProgram(NewSetup(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil {
		return SetupResult{}, err
	}
	return final.(SetupModel).Result()
}
