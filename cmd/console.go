// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"strings"

	"github.com/Thermoquad/velocio/pkg/velocio"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console for sending instructions",
	Long: `Open the connection once and send instructions interactively.

Each line is either an operation name or raw hex data, optionally prefixed
with "raw". Raw data may hold one range marker, as on the command line:

  > read_input_bits
  > 56 ff ff 00 08 0a 00 [01,06]
  > raw 56ffff0007f101

Responses are shown with the configured --display mode. "help" lists the
operations, "clear" empties the log, "quit" or Esc leaves.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().StringVar(&capturePath, "capture", "", "Append every transaction to this capture file")
	consoleCmd.Flags().BoolVar(&showStats, "stats", false, "Print transaction statistics on exit")
}

// Result of one instruction run in the background
type consoleResultMsg struct {
	lines []string
	err   error
}

type consoleModel struct {
	table    *velocio.CommandTable
	session  *session
	connInfo string

	input    textinput.Model
	log      viewport.Model
	lines    []string
	maxLines int

	busy        bool
	quitPending bool
	quitting    bool
	width       int
	height      int
}

// Styles
var (
	consoleTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("12")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)
	consoleHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	consolePromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	consoleErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	consoleBusyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func runConsole(cmd *cobra.Command, args []string) error {
	mode, err := cfg.DisplayMode()
	if err != nil {
		return err
	}
	table, err := cfg.CommandTable()
	if err != nil {
		return fmt.Errorf("config %s: %v", cfg.File, err)
	}

	s, err := newSession(mode, capturePath)
	if err != nil {
		return err
	}
	defer s.Close()

	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()
	s.attach(conn)

	p := tea.NewProgram(initialConsoleModel(table, s, connInfo), tea.WithAltScreen())
	_, runErr := p.Run()

	// An interrupted program may leave an instruction running
	if err := s.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close capture file")
	}
	if runErr != nil {
		return fmt.Errorf("TUI error: %v", runErr)
	}

	if showStats {
		fmt.Fprint(cmd.OutOrStdout(), s.stats.String())
	}
	return nil
}

func initialConsoleModel(table *velocio.CommandTable, s *session, connInfo string) consoleModel {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "operation or hex data"
	ti.CharLimit = 512
	ti.Width = 60
	ti.Focus()

	return consoleModel{
		table:    table,
		session:  s,
		connInfo: connInfo,
		input:    ti,
		log:      viewport.New(80, 18),
		maxLines: 1000,
		width:    80,
		height:   24,
	}
}

// resolveInstruction turns one console line into frames. A single word that
// names an operation, or is not hex, is looked up in the table.
func resolveInstruction(table *velocio.CommandTable, line string) (velocio.FrameSet, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, velocio.ErrEmptyInstruction
	}
	if strings.EqualFold(fields[0], "raw") {
		return velocio.CompileRaw(fields[1:])
	}
	if len(fields) == 1 && (table.Has(fields[0]) || !looksLikeHex(fields[0])) {
		op, err := table.Lookup(fields[0])
		if err != nil {
			return nil, err
		}
		return op.Frames, nil
	}
	return velocio.CompileRaw(fields)
}

func looksLikeHex(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF[],-", c) {
			return false
		}
	}
	return true
}

//////////////////////////////////////////////////////////////
// Bubble Tea Interface
//////////////////////////////////////////////////////////////

func (m consoleModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m consoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m.quit()
		case "enter":
			return m.handleEnter()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.log, cmd = m.log.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.log.Width = msg.Width
		m.log.Height = max(msg.Height-4, 1)
		m.input.Width = max(msg.Width-4, 10)
		m.refreshLog()

	case consoleResultMsg:
		m.busy = false
		for _, line := range msg.lines {
			m.addLine(line)
		}
		if msg.err != nil {
			m.addLine(consoleErrorStyle.Render("x " + msg.err.Error()))
		}
		if m.quitPending {
			return m.quit()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m consoleModel) handleEnter() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}
	if line == "quit" || line == "exit" {
		m.input.SetValue("")
		return m.quit()
	}
	if m.busy {
		return m, nil
	}
	m.input.SetValue("")

	switch line {
	case "clear":
		m.lines = nil
		m.refreshLog()
		return m, nil
	case "help":
		m.addLine(consoleHeaderStyle.Render(strings.Join(m.table.Names(), " ")))
		return m, nil
	}

	m.addLine(consolePromptStyle.Render("> ") + line)

	frames, err := resolveInstruction(m.table, line)
	if err != nil {
		m.addLine(consoleErrorStyle.Render("x " + err.Error()))
		return m, nil
	}

	m.busy = true
	return m, runInstructionCmd(m.session, frames)
}

// quit leaves the console, or once the running instruction has finished
func (m consoleModel) quit() (tea.Model, tea.Cmd) {
	if m.busy {
		if !m.quitPending {
			m.quitPending = true
			m.addLine(consoleBusyStyle.Render("waiting for the running instruction..."))
		}
		return m, nil
	}
	m.quitting = true
	return m, tea.Quit
}

// runInstructionCmd runs frames off the UI goroutine. Only one runs at a
// time; the model ignores input while busy.
func runInstructionCmd(s *session, frames velocio.FrameSet) tea.Cmd {
	return func() tea.Msg {
		var lines []string
		err := s.run(frames, func(_ velocio.Transaction, line string) error {
			lines = append(lines, line)
			return nil
		})
		return consoleResultMsg{lines: lines, err: err}
	}
}

func (m *consoleModel) addLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > m.maxLines {
		m.lines = m.lines[len(m.lines)-m.maxLines:]
	}
	m.refreshLog()
}

func (m *consoleModel) refreshLog() {
	m.log.SetContent(strings.Join(m.lines, "\n"))
	m.log.GotoBottom()
}

func (m consoleModel) View() string {
	if m.quitting {
		return "Closing connection...\n"
	}

	var s strings.Builder
	s.WriteString(consoleTitleStyle.Render("VELOCIO CONSOLE"))
	s.WriteString(" ")
	s.WriteString(consoleHeaderStyle.Render(fmt.Sprintf("| %s | %s | Esc=quit PgUp/PgDn=scroll",
		m.connInfo, m.session.renderer.Mode())))
	s.WriteString("\n")
	s.WriteString(m.log.View())
	s.WriteString("\n")
	if m.quitPending {
		s.WriteString(consoleBusyStyle.Render("closing after the running instruction..."))
	} else if m.busy {
		s.WriteString(consoleBusyStyle.Render("sending..."))
	} else {
		s.WriteString(m.input.View())
	}
	return s.String()
}
