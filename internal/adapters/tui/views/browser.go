package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tagit/internal/adapters/tui/styles"
	"tagit/internal/application/commands"
	"tagit/internal/domain"
	"tagit/internal/ports"
	"tagit/internal/query"
)

// BrowserKeyMap defines key bindings for the browser view
type BrowserKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	Enter    key.Binding
	PageDown key.Binding
	PageUp   key.Binding
	Edit     key.Binding
	Launch   key.Binding
	Copy     key.Binding
	Tags     key.Binding
	Untag    key.Binding
	Filter   key.Binding
	Toggle   key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var BrowserKeys = BrowserKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Left: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse"),
	),
	Right: key.NewBinding(
		key.WithKeys("l", "right"),
		key.WithHelp("l/→", "expand"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "toggle/open"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+f", "pgdown"),
		key.WithHelp("ctrl+f", "page down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+b", "pgup"),
		key.WithHelp("ctrl+b", "page up"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "edit file"),
	),
	Launch: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open with system app"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy path"),
	),
	Tags: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "edit tags"),
	),
	Untag: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "remove tag"),
	),
	Filter: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "query"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "tags/files"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reload"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// FilterKeyMap defines key bindings while the query line has focus
type FilterKeyMap struct {
	Apply  key.Binding
	Cancel key.Binding
}

var FilterKeys = FilterKeyMap{
	Apply: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "keep filter"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear filter"),
	),
}

// chrome is the number of lines around the tree: title, query line, message, help
const chrome = 9

// BrowserModel is the model for the tag browser.
// It holds one snapshot of the associations and rebuilds the tree from it
// whenever the view mode or the query filter changes.
type BrowserModel struct {
	ViewState
	repo      ports.TagRepository
	workspace ports.Workspace
	copy      func(string) error

	assocs    []domain.Association
	root      *domain.TreeNode
	flatNodes []*domain.TreeNode
	pager     *pager
	byFile    bool
	loaded    bool
	filtered  bool
	expanded  map[string]bool

	filter    textinput.Model
	filtering bool
	query     *query.Query
	queryErr  *query.SyntaxError
}

// NewBrowserModel creates a new browser model
func NewBrowserModel(repo ports.TagRepository, workspace ports.Workspace) *BrowserModel {
	input := textinput.New()
	input.Prompt = "/ "
	input.Placeholder = "#tag & (#a | #b)"
	input.CharLimit = 256

	return &BrowserModel{
		repo:      repo,
		workspace: workspace,
		copy:      clipboard.WriteAll,
		pager:     newPager(20),
		filter:    input,
	}
}

// Init initializes the browser
func (m *BrowserModel) Init() tea.Cmd {
	return m.loadAssociations
}

func (m *BrowserModel) loadAssociations() tea.Msg {
	assocs, err := commands.NewListFilesCommand(m.repo, "").Execute(context.Background())
	if err != nil {
		return errMsg{err}
	}
	return associationsLoadedMsg{assocs}
}

type associationsLoadedMsg struct {
	assocs []domain.Association
}

type errMsg struct {
	err error
}

type successMsg struct {
	message string
}

// Update handles messages for the browser
func (m *BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case associationsLoadedMsg:
		m.assocs = msg.assocs
		m.loaded = true
		m.rebuild()
		return m, nil

	case errMsg:
		m.SetMessage(msg.err.Error(), true)
		return m, nil

	case successMsg:
		m.SetMessage(msg.message, false)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m, m.updateFilter(msg)
		}
		m.ClearMessage()
		return m, m.handleKey(msg)
	}

	if m.filtering {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *BrowserModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, BrowserKeys.Quit):
		return tea.Quit

	case key.Matches(msg, BrowserKeys.Up):
		m.pager.move(-1)

	case key.Matches(msg, BrowserKeys.Down):
		m.pager.move(1)

	case key.Matches(msg, BrowserKeys.PageDown):
		m.pager.flip(1)

	case key.Matches(msg, BrowserKeys.PageUp):
		m.pager.flip(-1)

	case key.Matches(msg, BrowserKeys.Left):
		node := m.selectedNode()
		if node == nil {
			return nil
		}
		if node.IsExpanded && !node.IsLeaf() {
			node.Collapse()
			m.refreshFlatNodes()
		} else if node.Parent != nil && node.Parent.Kind != domain.NodeRoot {
			m.selectNode(node.Parent)
		}

	case key.Matches(msg, BrowserKeys.Right):
		if node := m.selectedNode(); node != nil && !node.IsLeaf() && !node.IsExpanded {
			node.Expand()
			m.refreshFlatNodes()
		}

	case key.Matches(msg, BrowserKeys.Enter):
		node := m.selectedNode()
		if node == nil {
			return nil
		}
		if node.Kind == domain.NodeFile && node.IsLeaf() {
			return m.openFile(node.ID)
		}
		node.Toggle()
		m.refreshFlatNodes()

	case key.Matches(msg, BrowserKeys.Edit):
		if id := m.selectedFile(); id != "" {
			return m.openFile(id)
		}

	case key.Matches(msg, BrowserKeys.Launch):
		if id := m.selectedFile(); id != "" {
			return func() tea.Msg {
				return LaunchFileMsg{Path: domain.PathFromIdentity(id)}
			}
		}

	case key.Matches(msg, BrowserKeys.Copy):
		if id := m.selectedFile(); id != "" {
			return m.copyPath(id)
		}

	case key.Matches(msg, BrowserKeys.Tags):
		if id := m.selectedFile(); id != "" {
			tags := m.tagsOf(id)
			return func() tea.Msg {
				return SwitchToEditTagsMsg{ID: id, Display: m.workspace.Display(id), Tags: tags}
			}
		}

	case key.Matches(msg, BrowserKeys.Untag):
		if id, tag, ok := m.selectedPair(); ok {
			return func() tea.Msg {
				return SwitchToUntagMsg{ID: id, Display: m.workspace.Display(id), Tag: tag}
			}
		}

	case key.Matches(msg, BrowserKeys.Filter):
		m.filtering = true
		return m.filter.Focus()

	case key.Matches(msg, BrowserKeys.Toggle):
		m.byFile = !m.byFile
		m.pager.selectRow(0)
		m.rebuild()

	case key.Matches(msg, BrowserKeys.Reload):
		return m.Reload()

	case key.Matches(msg, BrowserKeys.Help):
		return func() tea.Msg {
			return SwitchToHelpMsg{}
		}
	}
	return nil
}

// updateFilter feeds a key to the query line and recompiles on every change.
// A query that does not compile leaves the previous filter in place.
func (m *BrowserModel) updateFilter(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, FilterKeys.Cancel):
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.setQuery(nil)
		return nil

	case key.Matches(msg, FilterKeys.Apply):
		m.filtering = false
		m.filter.Blur()
		return nil
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.compileFilter()
	}
	return cmd
}

func (m *BrowserModel) compileFilter() {
	src := m.filter.Value()
	if strings.TrimSpace(src) == "" {
		m.queryErr = nil
		m.setQuery(nil)
		return
	}

	q, err := query.Compile(src)
	if err != nil {
		var syntaxErr *query.SyntaxError
		if errors.As(err, &syntaxErr) {
			m.queryErr = syntaxErr
		}
		return
	}
	m.queryErr = nil
	m.setQuery(q)
}

func (m *BrowserModel) setQuery(q *query.Query) {
	if q == nil {
		m.queryErr = nil
	}
	m.query = q
	m.pager.selectRow(0)
	m.rebuild()
}

// rebuild derives the tree from the snapshot. Expanded nodes of the
// unfiltered tree stay expanded; a filtered tree is shown fully expanded.
func (m *BrowserModel) rebuild() {
	if m.root != nil && !m.filtered {
		m.expanded = make(map[string]bool)
		for _, n := range m.root.Flatten() {
			if n.IsExpanded {
				m.expanded[nodeKey(n)] = true
			}
		}
	}

	assocs := m.assocs
	if m.query != nil {
		assocs = m.query.Filter(assocs)
	}

	if m.byFile {
		m.root = domain.BuildFileTree(assocs)
	} else {
		m.root = domain.BuildTagTree(assocs)
	}

	m.filtered = m.query != nil
	if m.filtered {
		m.root.ExpandAll()
	} else {
		restoreExpanded(m.root, m.expanded)
	}
	m.refreshFlatNodes()
}

func restoreExpanded(n *domain.TreeNode, expanded map[string]bool) {
	for _, child := range n.Children {
		if expanded[nodeKey(child)] {
			child.Expand()
		}
		restoreExpanded(child, expanded)
	}
}

func nodeKey(n *domain.TreeNode) string {
	if n.Parent == nil {
		return n.Kind.String() + ":" + n.ID
	}
	return nodeKey(n.Parent) + "/" + n.Kind.String() + ":" + n.ID
}

func (m *BrowserModel) openFile(id string) tea.Cmd {
	return func() tea.Msg {
		return OpenEditorMsg{Path: domain.PathFromIdentity(id)}
	}
}

func (m *BrowserModel) copyPath(id string) tea.Cmd {
	return func() tea.Msg {
		path := domain.PathFromIdentity(id)
		if err := m.copy(path); err != nil {
			return errMsg{fmt.Errorf("copy to clipboard: %w", err)}
		}
		return successMsg{fmt.Sprintf("Copied %s", path)}
	}
}

func (m *BrowserModel) tagsOf(id string) domain.TagSet {
	for _, a := range m.assocs {
		if a.ID == id {
			return a.Tags
		}
	}
	return nil
}

func (m *BrowserModel) selectedNode() *domain.TreeNode {
	cursor := m.pager.selected()
	if cursor >= 0 && cursor < len(m.flatNodes) {
		return m.flatNodes[cursor]
	}
	return nil
}

func (m *BrowserModel) selectNode(target *domain.TreeNode) {
	for i, n := range m.flatNodes {
		if n == target {
			m.pager.selectRow(i)
			return
		}
	}
}

// selectedFile returns the file identity under the cursor: the node itself,
// or the parent file of a tag node in the file view.
func (m *BrowserModel) selectedFile() string {
	node := m.selectedNode()
	if node == nil {
		return ""
	}
	if node.Kind == domain.NodeFile {
		return node.ID
	}
	if node.Parent != nil && node.Parent.Kind == domain.NodeFile {
		return node.Parent.ID
	}
	return ""
}

// selectedPair returns the file and tag joined by the edge under the cursor
func (m *BrowserModel) selectedPair() (id, tag string, ok bool) {
	node := m.selectedNode()
	if node == nil || node.Parent == nil {
		return "", "", false
	}
	switch {
	case node.Kind == domain.NodeFile && node.Parent.Kind == domain.NodeTag:
		return node.ID, node.Parent.ID, true
	case node.Kind == domain.NodeTag && node.Parent.Kind == domain.NodeFile:
		return node.Parent.ID, node.ID, true
	}
	return "", "", false
}

func (m *BrowserModel) refreshFlatNodes() {
	if m.root == nil {
		return
	}
	m.flatNodes = m.root.Flatten()
	// Skip root node in display
	if len(m.flatNodes) > 0 {
		m.flatNodes = m.flatNodes[1:]
	}
	m.pager.setRows(len(m.flatNodes))
}

// View renders the browser
func (m *BrowserModel) View() string {
	if !m.loaded {
		if m.Message != "" {
			return styles.App.Render(statusText(m.Message, true))
		}
		return "Loading..."
	}

	title := "Tags"
	if m.byFile {
		title = "Files"
	}

	vb := newPage("tagit")
	vb.line(styles.Subtitle.Render(fmt.Sprintf("%s  %d file(s)", title, len(m.assocs))))
	vb.line(m.renderQueryLine())

	if len(m.flatNodes) == 0 {
		if m.query != nil {
			vb.muted("No files match.")
		} else {
			vb.muted("Nothing tagged yet.")
		}
	}

	start, end := m.pager.window()
	for i := start; i < end; i++ {
		vb.line(m.renderNode(m.flatNodes[i], i == m.pager.selected()))
	}
	if cur, count := m.pager.pages(); count > 1 {
		vb.muted(fmt.Sprintf("page %d/%d", cur, count))
	}

	vb.gap()
	vb.status(m.Message, m.MessageErr)

	if m.filtering {
		vb.hints(FilterKeys.Apply, FilterKeys.Cancel)
	} else {
		vb.hints(BrowserKeys.Filter, BrowserKeys.Toggle, BrowserKeys.Tags, BrowserKeys.Copy, BrowserKeys.Edit, BrowserKeys.Launch, BrowserKeys.Help, BrowserKeys.Quit)
	}
	return vb.String()
}

func (m *BrowserModel) renderQueryLine() string {
	if !m.filtering && m.filter.Value() == "" {
		return ""
	}

	var b strings.Builder
	if m.filtering {
		b.WriteString(m.filter.View())
	} else {
		b.WriteString(styles.QueryPrompt.Render("/ " + m.filter.Value()))
	}

	if m.queryErr != nil {
		b.WriteString("\n")
		// Point at the offending byte under the prompt
		b.WriteString(styles.QueryCaret.Render(strings.Repeat(" ", len(m.filter.Prompt)+m.queryErr.Pos) + "^"))
		b.WriteString("\n")
		b.WriteString(styles.ErrorMsg.Render(m.queryErr.Msg))
	}
	return b.String()
}

func (m *BrowserModel) renderNode(node *domain.TreeNode, selected bool) string {
	indent := strings.Repeat("  ", node.Depth()-1)

	var prefix string
	if node.IsLeaf() {
		prefix = styles.TreeLeaf
	} else if node.IsExpanded {
		prefix = styles.TreeExpanded
	} else {
		prefix = styles.TreeCollapsed
	}

	text := node.Label
	if node.Kind == domain.NodeFile {
		text = m.workspace.Display(node.ID)
	}

	var styledText string
	if selected {
		styledText = styles.NodeSelected.Render(text)
	} else {
		styledText = styles.KindStyle(node.Kind == domain.NodeFile).Render(text)
	}

	line := indent + styles.TreeBranch.Render(prefix) + styledText
	if !node.IsLeaf() {
		line += " " + styles.NodeCount.Render(fmt.Sprintf("(%d)", len(node.Children)))
	}
	return line
}

// SetSize updates the view dimensions
func (m *BrowserModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.pager.setSize(max(height-chrome, 5))
	m.filter.Width = max(width-8, 20)
}

// Reload reads the associations again; the tree shape is kept
func (m *BrowserModel) Reload() tea.Cmd {
	return m.loadAssociations
}

// Filtering reports whether the query line has focus
func (m *BrowserModel) Filtering() bool {
	return m.filtering
}

// Messages for view switching
type SwitchToEditTagsMsg struct {
	ID      string
	Display string
	Tags    domain.TagSet
}

type SwitchToUntagMsg struct {
	ID      string
	Display string
	Tag     string
}

type SwitchToHelpMsg struct{}

type SwitchToBrowserMsg struct{}

// TagsChangedMsg is sent after a view changed tags, so the browser reloads
type TagsChangedMsg struct {
	Message string
}

// OpenEditorMsg asks the app to open a file in the external editor
type OpenEditorMsg struct {
	Path string
}

// LaunchFileMsg asks the app to open a file with the desktop's default application
type LaunchFileMsg struct {
	Path string
}
