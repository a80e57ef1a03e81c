package main

import (
	"errors"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/metcalfc/ebr/internal/reader"
	"github.com/metcalfc/ebr/internal/state"
)

// mode is what the prompt is currently asking for.
type mode int

const (
	modeCommand mode = iota
	modePage
	modePercentPage
	modePercent
	modeBookmarkJump
	modeBookmarkDelete
	modeSearch
	modeHistoryDelete
	modeLines
	modeContents
)

const commandPrompt = "Enter your choice: "

func (m *model) setMode(md mode) {
	m.mode = md
	switch md {
	case modePage:
		m.input.Prompt = "Enter the page number to jump to: "
	case modePercentPage:
		m.input.Prompt = "Enter the page number: "
	case modePercent:
		m.input.Prompt = "Enter the percentage to jump to: "
	case modeBookmarkJump:
		m.input.Prompt = "Enter the number of the bookmark to jump to: "
	case modeBookmarkDelete:
		m.input.Prompt = "Enter the number of the bookmark to delete: "
	case modeSearch:
		m.input.Prompt = "Enter text to search: "
	case modeHistoryDelete:
		m.input.Prompt = "Enter the number of the search query to delete: "
	case modeLines:
		m.input.Prompt = "Enter the number of lines to display per screen (current: " +
			strconv.Itoa(m.prefs.LinesPerScreen) + "): "
	case modeContents:
		m.input.Prompt = "Enter the number of the entry to jump to: "
	default:
		m.input.Prompt = commandPrompt
	}
	m.fitInput()
}

// submit handles one line entered at the prompt.
func (m *model) submit(value string) {
	if m.mode == modeCommand {
		m.run(strings.ToLower(strings.TrimSpace(value)))
		return
	}
	m.answer(value)
}

// run executes a command token.
func (m *model) run(command string) {
	switch command {
	case "n":
		m.next()
	case "p":
		m.prev()
	case "h":
		m.showHelp = !m.showHelp
	case "j":
		m.setMode(modePage)
	case "jp":
		m.setMode(modePercentPage)
	case "b":
		m.addBookmark()
	case "bm":
		m.listBookmarks()
	case "jb", "db":
		if len(m.marks) == 0 {
			m.say(warnStyle, "No bookmarks available.")
			return
		}
		m.listBookmarks()
		if command == "jb" {
			m.setMode(modeBookmarkJump)
		} else {
			m.setMode(modeBookmarkDelete)
		}
	case "dab":
		m.marks.Clear()
		m.say(okStyle, "All bookmarks deleted.")
	case "s":
		m.setMode(modeSearch)
	case "sh":
		if len(m.history) == 0 {
			m.say(warnStyle, "No search history.")
			return
		}
		m.listHistory()
	case "ds":
		if len(m.history) == 0 {
			m.say(warnStyle, "No search history available.")
			return
		}
		m.listHistory()
		m.setMode(modeHistoryDelete)
	case "das":
		m.history.Clear()
		m.say(okStyle, "All search history deleted.")
	case "sp":
		page := m.cur.Position().Page
		name, err := reader.SavePage(m.exportDir, m.meta, m.cur.Doc, page)
		if err != nil {
			logrus.WithField("book", m.bookID).WithError(err).Error("Failed to export page")
			m.say(errorStyle, "%v", err)
			return
		}
		m.say(okStyle, "Page %d saved as '%s'", page+1, name)
	case "sb":
		name, err := reader.SaveBook(m.exportDir, m.meta, m.cur.Doc)
		if err != nil {
			logrus.WithField("book", m.bookID).WithError(err).Error("Failed to export book")
			m.say(errorStyle, "%v", err)
			return
		}
		m.say(okStyle, "Book saved as '%s'", name)
	case "al":
		m.setMode(modeLines)
	case "t":
		if len(m.toc) == 0 {
			m.say(warnStyle, "No table of contents available.")
			return
		}
		m.say(headerStyle, "Table of Contents:")
		for i, e := range m.toc {
			m.say(okStyle, "%d. %s%s (page %d)", i+1, strings.Repeat("  ", e.Level), e.Title, e.Page+1)
		}
		m.setMode(modeContents)
	case "q":
		m.quitting = true
	default:
		m.say(errorStyle, "Invalid command. Please try again.")
	}
}

// answer handles the reply to an argument prompt. Replies that are not
// numbers keep the same prompt open.
func (m *model) answer(value string) {
	if m.mode == modeSearch {
		m.search(value)
		m.setMode(modeCommand)
		return
	}

	value = strings.TrimSpace(value)
	if m.mode == modePercent {
		pct, err := strconv.ParseFloat(value, 64)
		if err != nil {
			m.say(errorStyle, "Invalid input. Please enter a number.")
			return
		}
		if _, err := m.cur.JumpToPercentage(m.pendingPage, pct); err != nil {
			m.say(errorStyle, "Invalid percentage. Please enter a value between 0 and 100.")
			return
		}
		m.setMode(modeCommand)
		return
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		m.say(errorStyle, "Invalid input. Please enter a number.")
		return
	}

	switch m.mode {
	case modePage:
		clamped, err := m.cur.JumpToPage(n)
		if errors.Is(err, reader.ErrPageOutOfRange) {
			m.say(errorStyle, "Invalid page number. The EPUB has %d pages.", m.cur.Doc.PageCount())
			return
		}
		if clamped {
			m.say(errorStyle, "Invalid page number. Defaulting to page 1.")
		}

	case modePercentPage:
		idx, clamped, err := m.cur.Doc.PageIndex(n)
		if err != nil {
			m.say(errorStyle, "Invalid page number. The EPUB has %d pages.", m.cur.Doc.PageCount())
			return
		}
		if clamped {
			m.say(errorStyle, "Invalid page number. Defaulting to page 1.")
		}
		m.pendingPage = idx + 1
		m.setMode(modePercent)
		return

	case modeBookmarkJump:
		if n < 1 || n > len(m.marks) {
			m.say(errorStyle, "Invalid bookmark choice.")
			break
		}
		b := m.marks[n-1]
		if err := m.cur.JumpTo(b.Page, b.Progress); err != nil {
			m.say(errorStyle, "Bookmark points to page %d, but the EPUB has %d pages.", b.Page+1, m.cur.Doc.PageCount())
		}

	case modeBookmarkDelete:
		if err := m.marks.Delete(n - 1); err != nil {
			m.say(errorStyle, "Invalid bookmark choice.")
			break
		}
		m.say(okStyle, "Bookmark deleted.")

	case modeHistoryDelete:
		if err := m.history.Delete(n - 1); err != nil {
			m.say(errorStyle, "Invalid search query choice.")
			break
		}
		m.say(okStyle, "Search query deleted.")

	case modeLines:
		if n < 1 {
			m.say(errorStyle, "Invalid number. Please enter a value greater than 0.")
			return
		}
		m.prefs.LinesPerScreen = n
		if m.store != nil {
			if err := m.store.SavePreferences(m.prefs); err != nil {
				logrus.WithError(err).Error("Failed to save preferences")
				m.say(errorStyle, "Failed to save preferences: %v", err)
			}
		}
		m.say(okStyle, "Lines per screen set to %d.", n)

	case modeContents:
		if n < 1 || n > len(m.toc) {
			m.say(errorStyle, "Invalid entry choice.")
			break
		}
		if err := m.cur.JumpTo(m.toc[n-1].Page, 0); err != nil {
			m.say(errorStyle, "%v", err)
		}
	}
	m.setMode(modeCommand)
}

func (m *model) addBookmark() {
	b := state.Bookmark{Page: m.cur.Position().Page, Progress: m.cur.Progress()}
	if err := m.marks.Add(b); err != nil {
		m.say(warnStyle, "Bookmark already exists on page %d at %.2f%%", b.Page+1, b.Progress)
		return
	}
	m.say(okStyle, "Bookmark added on page %d at %.2f%%", b.Page+1, b.Progress)
}

func (m *model) listBookmarks() {
	if len(m.marks) == 0 {
		m.say(warnStyle, "No bookmarks added.")
		return
	}
	m.say(headerStyle, "Bookmarks:")
	for i, b := range m.marks {
		m.say(okStyle, "%d. Page %d at %.2f%%", i+1, b.Page+1, b.Progress)
	}
}

func (m *model) listHistory() {
	m.say(headerStyle, "Search History:")
	for i, q := range m.history {
		m.say(okStyle, "%d. %s", i+1, q)
	}
}

func (m *model) search(query string) {
	results := reader.Search(m.cur.Doc, query)
	m.history.Record(query)
	if len(results) == 0 {
		m.say(errorStyle, "No matches found.")
		return
	}
	for _, r := range results {
		m.say(okStyle, "Page %d:\n%s\n", r.Page+1, r.Sentence)
	}
}
