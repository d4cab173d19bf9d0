package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"tagit/internal/adapters/tui/views"
	"tagit/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewBrowser ViewState = iota
	ViewEditTags
	ViewUntag
	ViewHelp
)

// App is the main TUI application model
type App struct {
	repo     ports.TagRepository
	editor   ports.EditorOpener
	launcher ports.FileLauncher

	state   ViewState
	browser *views.BrowserModel
	tagEdit *views.TagEditModel
	untag   *views.UntagModel
	help    *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application. ed may be nil, which disables opening files.
func NewApp(repo ports.TagRepository, workspace ports.Workspace, ed ports.EditorOpener) *App {
	return &App{
		repo:    repo,
		editor:  ed,
		state:   ViewBrowser,
		browser: views.NewBrowserModel(repo, workspace),
		tagEdit: views.NewTagEditModel(repo, workspace),
		untag:   views.NewUntagModel(repo, workspace),
		help:    views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.browser.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.browser.SetSize(msg.Width, msg.Height)
		a.tagEdit.SetSize(msg.Width, msg.Height)
		a.untag.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToEditTagsMsg:
		a.state = ViewEditTags
		a.tagEdit.SetTarget(msg.ID, msg.Display, msg.Tags)
		return a, a.tagEdit.Init()

	case views.SwitchToUntagMsg:
		a.state = ViewUntag
		a.untag.SetTarget(msg.ID, msg.Display, msg.Tag)
		return a, a.untag.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToBrowserMsg:
		a.state = ViewBrowser
		return a, nil

	case views.TagsChangedMsg:
		a.state = ViewBrowser
		a.browser.SetMessage(msg.Message, false)
		return a, a.browser.Reload()

	case views.OpenEditorMsg:
		a.state = ViewBrowser
		return a, a.openEditor(msg.Path)

	case views.LaunchFileMsg:
		return a, a.launch(msg.Path)

	case editorFinishedMsg:
		if msg.err != nil {
			a.browser.SetMessage(msg.err.Error(), true)
		}
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewBrowser:
		_, cmd = a.browser.Update(msg)
	case ViewEditTags:
		_, cmd = a.tagEdit.Update(msg)
	case ViewUntag:
		_, cmd = a.untag.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

type editorFinishedMsg struct{ err error }

func (a *App) openEditor(path string) tea.Cmd {
	if a.editor == nil {
		return nil
	}

	cmd, err := a.editor.Command(path)
	if err != nil {
		return func() tea.Msg {
			return editorFinishedMsg{err: err}
		}
	}

	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

func (a *App) launch(path string) tea.Cmd {
	if a.launcher == nil {
		return nil
	}
	return func() tea.Msg {
		return editorFinishedMsg{err: a.launcher.Launch(path)}
	}
}

// SetLauncher enables opening files with the desktop's default application
func (a *App) SetLauncher(l ports.FileLauncher) {
	a.launcher = l
}

// State returns the active view
func (a *App) State() ViewState {
	return a.state
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewEditTags:
		return a.tagEdit.View()
	case ViewUntag:
		return a.untag.View()
	case ViewHelp:
		return a.help.View()
	default:
		return a.browser.View()
	}
}
