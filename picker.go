package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metcalfc/ebr/internal/reader"
)

type bookItem struct {
	reader.Book
	n int
}

func (i bookItem) Title() string {
	return fmt.Sprintf("%d. %s by %s", i.n, i.Metadata.Title, i.Metadata.Author)
}

func (i bookItem) Description() string {
	return fmt.Sprintf("%d pages, %s, %s", i.Pages, i.Metadata.Date, i.Metadata.Language)
}

func (i bookItem) FilterValue() string {
	return i.Metadata.Title + " " + i.Metadata.Author + " " + i.FileName
}

var pickerKeys = struct {
	Choose key.Binding
	Quit   key.Binding
}{
	Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// picker lets the user choose one book from the library listing.
type picker struct {
	list   list.Model
	choice string
	done   bool
}

func newPicker(books []reader.Book) picker {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = bookItem{Book: b, n: i + 1}
	}

	l := list.New(items, list.NewDefaultDelegate(), 80, 24)
	l.Title = "Available EPUB files"
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{pickerKeys.Choose}
	}
	return picker{list: l}
}

func (p picker) Init() tea.Cmd {
	return nil
}

func (p picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.list.SetSize(msg.Width, msg.Height)
		return p, nil

	case tea.KeyMsg:
		if p.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, pickerKeys.Choose):
			if item, ok := p.list.SelectedItem().(bookItem); ok {
				p.choice = item.Path
			}
			p.done = true
			return p, tea.Quit
		case key.Matches(msg, pickerKeys.Quit):
			p.done = true
			return p, tea.Quit
		}
	}

	var cmd tea.Cmd
	p.list, cmd = p.list.Update(msg)
	return p, cmd
}

func (p picker) View() string {
	if p.done {
		return ""
	}
	return p.list.View()
}
