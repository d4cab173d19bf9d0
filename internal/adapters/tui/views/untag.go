package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"tagit/internal/adapters/tui/styles"
	"tagit/internal/application/commands"
	"tagit/internal/ports"
)

// UntagKeyMap defines key bindings for the untag confirmation
type UntagKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

var UntagKeys = UntagKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "remove"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "keep"),
	),
}

// UntagModel asks before removing one tag from one file
type UntagModel struct {
	ViewState
	repo      ports.TagRepository
	workspace ports.Workspace
	id        string
	display   string
	tag       string
}

// NewUntagModel creates a new untag confirmation view
func NewUntagModel(repo ports.TagRepository, workspace ports.Workspace) *UntagModel {
	return &UntagModel{
		repo:      repo,
		workspace: workspace,
	}
}

// SetTarget sets the file and tag to remove
func (m *UntagModel) SetTarget(id, display, tag string) {
	m.id = id
	m.display = display
	m.tag = tag
	m.ClearMessage()
}

// Init initializes the view
func (m *UntagModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the confirmation
func (m *UntagModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, UntagKeys.Cancel):
			return m, func() tea.Msg { return SwitchToBrowserMsg{} }
		case key.Matches(msg, UntagKeys.Confirm):
			return m, m.untag
		}
	}
	return m, nil
}

func (m *UntagModel) untag() tea.Msg {
	result, err := commands.NewUntagCommand(m.repo, m.workspace, m.id, m.tag).Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return TagsChangedMsg{Message: result.Message}
}

// View renders the confirmation
func (m *UntagModel) View() string {
	return newPage("Remove tag").
		line(fileLine(m.display)).
		line(styles.InputLabel.Render("Tag:") + "  " + styles.NodeTag.Render(m.tag)).
		gap().
		status(m.Message, m.MessageErr).
		line("Remove this tag from the file?").
		gap().
		hints(UntagKeys.Confirm, UntagKeys.Cancel).
		String()
}
