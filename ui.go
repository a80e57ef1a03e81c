package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/sirupsen/logrus"

	"github.com/metcalfc/ebr/internal/reader"
	"github.com/metcalfc/ebr/internal/state"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	bookStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

const shortHelp = "'n' for next line\n'p' for previous line\n'h' for help (show all commands)"

const fullHelp = `Full list of commands:

'n' for next line
'p' for previous line
'h' to hide this list
'j' to jump to page
'jp' to jump to percentage
'b' to add bookmark
'bm' to view bookmarks
'jb' to jump to bookmark
'db' to delete bookmark
'dab' to delete all bookmarks
's' to search
'sh' to view search history
'ds' to delete search history
'das' to delete all search history
'sp' to save page as text file
'sb' to save book as text file
'al' to adjust lines per screen
't' to show the table of contents
'q' to quit
Up/Down arrows scroll the page`

type keyMap struct {
	Submit     key.Binding
	Cancel     key.Binding
	Next       key.Binding
	Prev       key.Binding
	ScrollDown key.Binding
	ScrollUp   key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Submit:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run command")),
	Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel prompt")),
	Next:       key.NewBinding(key.WithKeys("right", "pgdown"), key.WithHelp("→", "next")),
	Prev:       key.NewBinding(key.WithKeys("left", "pgup"), key.WithHelp("←", "previous")),
	ScrollDown: key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "scroll down")),
	ScrollUp:   key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "scroll up")),
	Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
}

// note is one line of command output shown under the page.
type note struct {
	text  string
	style lipgloss.Style
}

type model struct {
	cur     *reader.Reader
	meta    reader.Metadata
	toc     []reader.TOCEntry
	marks   state.Bookmarks
	history state.History
	prefs   state.Preferences

	store       *state.Store
	bookID      string
	fingerprint string
	exportDir   string

	input       textinput.Model
	page        viewport.Model
	shown       reader.Cursor
	mode        mode
	pendingPage int
	showHelp    bool
	notes       []note
	quitting    bool
	width       int
	height      int
}

func newModel(doc *reader.Document, md reader.Metadata, store *state.Store, prefs state.Preferences, bookID string, sess state.Session) *model {
	ti := textinput.New()
	ti.Prompt = commandPrompt
	ti.Focus()

	r := reader.NewReader(doc)
	r.Restore(sess.Page, sess.Offset)

	m := &model{
		cur:         r,
		meta:        md,
		marks:       sess.Bookmarks,
		history:     sess.SearchHistory,
		prefs:       prefs,
		store:       store,
		bookID:      bookID,
		fingerprint: sess.Fingerprint,
		exportDir:   ".",
		input:       ti,
		page:        viewport.New(80, 24),
		shown:       r.Position(),
		width:       80,
		height:      24,
	}
	m.fitInput()
	m.layout()
	return m
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			m.persist()
			return m, tea.Quit

		case key.Matches(msg, keys.Submit):
			value := m.input.Value()
			m.input.Reset()
			m.clearNotes()
			m.submit(value)
			m.persist()
			m.layout()
			if m.quitting {
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, keys.Cancel):
			if m.mode != modeCommand {
				m.input.Reset()
				m.setMode(modeCommand)
				m.clearNotes()
			}
			return m, nil

		case key.Matches(msg, keys.Next) && m.idle():
			m.clearNotes()
			m.next()
			m.persist()
			m.layout()
			return m, nil

		case key.Matches(msg, keys.Prev) && m.idle():
			m.clearNotes()
			m.prev()
			m.persist()
			m.layout()
			return m, nil

		case key.Matches(msg, keys.ScrollDown):
			m.page.ScrollDown(1)
			return m, nil

		case key.Matches(msg, keys.ScrollUp):
			m.page.ScrollUp(1)
			return m, nil
		}

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.page, cmd = m.page.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.fitInput()
		m.layout()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// idle reports whether the prompt is empty and waiting for a command.
func (m *model) idle() bool {
	return m.mode == modeCommand && m.input.Value() == ""
}

func (m *model) View() string {
	if m.quitting {
		return ""
	}
	return m.page.View() + "\n\n" + m.footer()
}

// body is the scrollable part of the screen: the visible page lines, then
// command output and the full help when it is toggled on.
func (m *model) body() string {
	var sb strings.Builder
	for i, line := range m.cur.Visible(m.prefs.LinesPerScreen) {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(wordwrap.String(line, m.width))
	}
	if len(m.notes) > 0 {
		sb.WriteString("\n")
		for _, n := range m.notes {
			sb.WriteString("\n")
			sb.WriteString(n.style.Render(wordwrap.String(n.text, m.width)))
		}
	}
	if m.showHelp {
		sb.WriteString("\n\n")
		sb.WriteString(statusStyle.Render(fullHelp))
	}
	return sb.String()
}

// footer stays pinned under the page: position, book, short help and prompt.
func (m *model) footer() string {
	pos := m.cur.Position()
	bar := strings.Repeat("-", 20)
	status := fmt.Sprintf("%s Page %d - %.2f%% %s", bar, pos.Page+1, m.cur.Progress(), bar)
	if !m.page.AtBottom() {
		status += " ↓"
	}

	help := shortHelp
	if m.showHelp {
		help = "'h' to hide the full list"
	}

	return strings.Join([]string{
		statusStyle.Render(status),
		bookStyle.Render(fmt.Sprintf("%s by %s", m.meta.Title, m.meta.Author)),
		"",
		statusStyle.Render(help),
		"",
		m.input.View(),
	}, "\n")
}

// layout sizes the page viewport to the rows the footer leaves free and
// refills it. A cursor move scrolls back to the top of the new window.
func (m *model) layout() {
	m.page.Width = m.width
	m.page.Height = max(1, m.height-lipgloss.Height(m.footer())-1)
	m.page.SetContent(m.body())
	m.page.SetYOffset(m.page.YOffset)
	if pos := m.cur.Position(); pos != m.shown {
		m.shown = pos
		m.page.GotoTop()
	}
}

// next shows the rest of the current window before advancing the cursor.
func (m *model) next() {
	if !m.page.AtBottom() {
		m.page.PageDown()
		return
	}
	if m.cur.AtEnd(m.prefs.LinesPerScreen) {
		m.say(warnStyle, "End of book.")
		return
	}
	m.cur.Advance(m.prefs.LinesPerScreen)
}

// prev scrolls back within the current window before retreating the cursor.
func (m *model) prev() {
	if !m.page.AtTop() {
		m.page.PageUp()
		return
	}
	m.cur.Retreat(m.prefs.LinesPerScreen)
}

// clearNotes drops the previous command's output so that paging decisions
// only see the page text.
func (m *model) clearNotes() {
	m.notes = nil
	m.layout()
}

// fitInput gives the text input the width left beside its prompt.
func (m *model) fitInput() {
	m.input.Width = max(1, m.width-lipgloss.Width(m.input.Prompt)-1)
}

func (m *model) say(style lipgloss.Style, format string, args ...any) {
	m.notes = append(m.notes, note{text: fmt.Sprintf(format, args...), style: style})
}

// snapshot captures the state that is saved for this book.
func (m *model) snapshot() state.Session {
	pos := m.cur.Position()
	return state.Session{
		Page:          pos.Page,
		Offset:        pos.Offset,
		Progress:      m.cur.Progress(),
		Bookmarks:     m.marks,
		SearchHistory: m.history,
		Fingerprint:   m.fingerprint,
	}
}

// persist saves the session. A failed save is reported but does not end the
// reading session.
func (m *model) persist() {
	if m.store == nil {
		return
	}
	if err := m.store.SaveSession(m.bookID, m.snapshot()); err != nil {
		logrus.WithField("book", m.bookID).WithError(err).Error("Failed to save session")
		m.say(errorStyle, "Failed to save session: %v", err)
	}
}
