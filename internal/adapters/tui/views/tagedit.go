package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tagit/internal/adapters/tui/styles"
	"tagit/internal/application"
	"tagit/internal/application/commands"
	"tagit/internal/domain"
	"tagit/internal/ports"
)

// TagEditKeyMap defines key bindings for the tag editor
type TagEditKeyMap struct {
	Save   key.Binding
	Cancel key.Binding
}

var TagEditKeys = TagEditKeyMap{
	Save: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "save"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

// TagEditModel edits the full tag set of one file.
// Submitting an empty line clears the file's tags.
type TagEditModel struct {
	ViewState
	repo      ports.TagRepository
	workspace ports.Workspace
	input     textinput.Model
	id        string
	display   string
}

// NewTagEditModel creates a new tag edit model
func NewTagEditModel(repo ports.TagRepository, workspace ports.Workspace) *TagEditModel {
	input := textinput.New()
	input.Placeholder = "#stack, #heap"
	input.CharLimit = 512
	input.Prompt = ""

	return &TagEditModel{
		repo:      repo,
		workspace: workspace,
		input:     input,
	}
}

// SetTarget sets the file to edit and prefills its current tags
func (m *TagEditModel) SetTarget(id, display string, tags domain.TagSet) {
	m.id = id
	m.display = display
	m.ClearMessage()
	m.input.SetValue(tags.String())
	m.input.CursorEnd()
}

// Init initializes the view
func (m *TagEditModel) Init() tea.Cmd {
	return tea.Batch(m.input.Focus(), textinput.Blink)
}

// Update handles messages for the tag editor
func (m *TagEditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, TagEditKeys.Cancel):
			m.input.Blur()
			return m, func() tea.Msg { return SwitchToBrowserMsg{} }
		case key.Matches(msg, TagEditKeys.Save):
			return m, m.save(m.input.Value())
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *TagEditModel) save(input string) tea.Cmd {
	id := m.id
	display := m.display
	return func() tea.Msg {
		ctx := context.Background()
		tags := application.ParseTagList(input)

		if len(tags) == 0 {
			if _, err := commands.NewClearCommand(m.repo, m.workspace, id).Execute(ctx); err != nil {
				return errMsg{err}
			}
			return TagsChangedMsg{Message: fmt.Sprintf("Cleared tags of %s", display)}
		}

		result, err := commands.NewTagCommand(m.repo, m.workspace, id, tags).Execute(ctx)
		if err != nil {
			return errMsg{err}
		}
		return TagsChangedMsg{Message: result.Message}
	}
}

// View renders the tag editor
func (m *TagEditModel) View() string {
	return newPage("Edit tags").
		line(fileLine(m.display)).
		gap().
		line(styles.InputLabel.Render("Tags (comma separated, empty clears)")).
		line(styles.InputFocused.Render(m.input.View())).
		gap().
		status(m.Message, m.MessageErr).
		hints(TagEditKeys.Save, TagEditKeys.Cancel).
		String()
}
