// Package tui is a terminal host page for the form: six text inputs, a
// submit key and the status line.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/formpost/internal/submitter"
)

// Submitter handles one submit event.
type Submitter interface {
	HandleSubmit(ctx context.Context, ev submitter.Event, form submitter.Form, display submitter.StatusDisplay) submitter.Result
}

var placeholders = map[string]string{ //nolint:gochecknoglobals // static copy
	submitter.FieldName:                 "Name",
	submitter.FieldEmail:                "Email",
	submitter.FieldPhone:                "Phone",
	submitter.FieldAddress:              "Address",
	submitter.FieldProgrammingLanguages: "Programming languages",
	submitter.FieldTools:                "Tools",
}

// terminal colours for the status styles
var ansiColors = map[string]lipgloss.Color{ //nolint:gochecknoglobals // static lookup
	"green": lipgloss.Color("2"),
	"red":   lipgloss.Color("1"),
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF")).MarginBottom(1) //nolint:gochecknoglobals // style
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))                            //nolint:gochecknoglobals // style
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).MarginTop(1)               //nolint:gochecknoglobals // style
)

// Model is the bubbletea model of the form.
type Model struct {
	ctx    context.Context
	sub    Submitter
	inputs []textinput.Model
	focus  int

	status   *statusLine
	inFlight int
	quitting bool
}

// New builds the form model. ctx bounds every submit request.
func New(ctx context.Context, sub Submitter) *Model {
	m := &Model{
		ctx:    ctx,
		sub:    sub,
		inputs: make([]textinput.Model, len(submitter.Fields)),
	}
	for i, id := range submitter.Fields {
		in := textinput.New()
		in.Placeholder = placeholders[id]
		in.Prompt = "> "
		in.CharLimit = 256
		in.Width = 48
		m.inputs[i] = in
	}
	m.inputs[0].Focus()
	return m
}

// Init is called once when the program starts.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// submittedMsg carries the outcome of one submit back to Update.
type submittedMsg struct {
	event  *keyEvent
	status *statusLine
	result submitter.Result
}

// Update is called when a message is received.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case submittedMsg:
		m.inFlight--
		// Overlapping submits are not sequenced; the last result to arrive wins.
		m.status = msg.status
		if !msg.event.prevented {
			return m, m.reset()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "ctrl+s":
			return m, m.submit()
		case "enter":
			if m.focus == len(m.inputs)-1 {
				return m, m.submit()
			}
			return m, m.setFocus(m.focus + 1)
		case "tab", "down":
			return m, m.setFocus((m.focus + 1) % len(m.inputs))
		case "shift+tab", "up":
			return m, m.setFocus((m.focus - 1 + len(m.inputs)) % len(m.inputs))
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// submit snapshots the fields now and posts them in the background.
func (m *Model) submit() tea.Cmd {
	form := m.values()
	m.inFlight++
	ctx, sub := m.ctx, m.sub
	return func() tea.Msg {
		ev := &keyEvent{}
		status := &statusLine{}
		res := sub.HandleSubmit(ctx, ev, form, status)
		return submittedMsg{event: ev, status: status, result: res}
	}
}

func (m *Model) values() submitter.FormValues {
	form := make(submitter.FormValues, len(m.inputs))
	for i, id := range submitter.Fields {
		form[id] = m.inputs[i].Value()
	}
	return form
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = i
	return m.inputs[m.focus].Focus()
}

// reset clears every field and refocuses the first one. The returned
// command starts the cursor blinking again.
func (m *Model) reset() tea.Cmd {
	for i := range m.inputs {
		m.inputs[i].Reset()
	}
	return m.setFocus(0)
}

// View renders the form.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("Application form"))
	b.WriteString("\n")
	for i, id := range submitter.Fields {
		b.WriteString(labelStyle.Render(placeholders[id]))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.statusView())
	b.WriteString(hintStyle.Render("tab/shift+tab move • enter on the last field or ctrl+s submits • esc quits"))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) statusView() string {
	if m.inFlight > 0 {
		return labelStyle.Render("Submitting...") + "\n"
	}
	if m.status == nil {
		return "\n"
	}
	return m.status.render() + "\n"
}

// keyEvent is the submit key press.
type keyEvent struct {
	prevented bool
}

func (e *keyEvent) PreventDefault() { e.prevented = true }

// statusLine is the terminal's status element.
type statusLine struct {
	text  string
	style submitter.Style
}

func (s *statusLine) SetText(text string)            { s.text = text }
func (s *statusLine) SetStyle(style submitter.Style) { s.style = style }

func (s *statusLine) render() string {
	st := lipgloss.NewStyle().Bold(s.style.Bold)
	if s.style.Color != "" {
		color, ok := ansiColors[s.style.Color]
		if !ok {
			color = lipgloss.Color(s.style.Color)
		}
		st = st.Foreground(color)
	}
	return st.Render(s.text)
}

// Text returns the current status text, empty before the first submit.
func (m *Model) Text() string {
	if m.status == nil {
		return ""
	}
	return m.status.text
}

// Style returns the current status style.
func (m *Model) Style() submitter.Style {
	if m.status == nil {
		return submitter.Style{}
	}
	return m.status.style
}
