package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/alexanderramin/casetree/internal/treesync"
	"github.com/alexanderramin/casetree/internal/viewstate"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

type editorMode int

const (
	modeBrowse editorMode = iota
	modeMove
	modeRename
	modeCreate
	modeFilter
	modeConfirmDelete
)

// Results of store writes started by the editor. Each carries what the
// editor needs to settle the optimistic change it already shows.
type (
	gestureDoneMsg struct {
		gesture *treesync.Gesture
		name    string
		res     treesync.Result
	}
	editDoneMsg struct {
		verb string
		res  treesync.Result
	}
	createDoneMsg struct {
		placeholder string
		res         treesync.Result
	}
	refreshedMsg struct {
		forest *tree.Forest
		err    error
	}
)

const chromeLines = 4 // header, blank, status, help

// editorModel is the interactive tree editor. Every edit is shown at once
// through the controller; the store write runs as a tea.Cmd and its result
// settles or reverts the view.
type editorModel struct {
	ctx     context.Context
	project *domain.Project
	ctrl    *treesync.Controller
	syncer  *treesync.Syncer
	state   *viewstate.State
	logger  *slog.Logger

	keys  editorKeys
	help  help.Model
	input textinput.Model

	mode   editorMode
	rows   []formatter.TreeRow
	cursor int
	offset int
	width  int
	height int

	gesture     *treesync.Gesture
	placeholder string
	renaming    string
	deleting    string
	filter      string

	pending  int
	quitting bool
	status   string
	failed   bool
}

func newEditorModel(ctx context.Context, ws *workspace, state *viewstate.State, logger *slog.Logger) *editorModel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	input := textinput.New()
	input.CharLimit = 200
	input.Cursor.SetMode(cursor.CursorStatic)

	m := &editorModel{
		ctx:     ctx,
		project: ws.project,
		ctrl:    ws.controller(),
		syncer:  ws.syncer,
		state:   state,
		logger:  logger,
		keys:    defaultEditorKeys(),
		help:    help.New(),
		input:   input,
	}
	state.Prune(m.ctrl.Forest())
	if id := state.SelectedIn(ws.project.ID); id != "" {
		m.reveal(id)
	}
	m.rebuild()
	m.selectID(state.SelectedIn(ws.project.ID))
	return m
}

func (m *editorModel) Init() tea.Cmd {
	return tea.SetWindowTitle("casetree · " + m.project.Name)
}

// ── rows and cursor ─────────────────────────────────────────────────────────

func (m *editorModel) current() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].Node
}

func (m *editorModel) currentID() string {
	if n := m.current(); n != nil {
		return n.ID
	}
	return ""
}

// rebuild recomputes the visible rows, keeping the cursor on the same node
// when it is still shown.
func (m *editorModel) rebuild() {
	id := m.currentID()
	f := m.ctrl.Forest()
	if m.filter == "" {
		m.rows = formatter.VisibleRows(f, func(n *tree.Node, depth int) bool {
			return m.state.IsExpanded(n.ID, depth)
		})
	} else {
		m.rows = filteredRows(f, m.filter)
	}
	m.selectID(id)
}

// filteredRows lists nodes whose name fuzzy-matches query together with
// their ancestors, indented by depth.
func filteredRows(f *tree.Forest, query string) []formatter.TreeRow {
	keep := make(map[string]bool)
	for _, n := range f.Flatten() {
		if fuzzy.MatchFold(query, n.Name) {
			keep[n.ID] = true
			for _, a := range f.AncestorsOf(n.ID) {
				keep[a.ID] = true
			}
		}
	}
	var rows []formatter.TreeRow
	for _, r := range formatter.VisibleRows(f, nil) {
		if keep[r.Node.ID] {
			r.Prefix = strings.Repeat("  ", r.Depth)
			rows = append(rows, r)
		}
	}
	return rows
}

func (m *editorModel) selectID(id string) {
	for i, r := range m.rows {
		if r.Node.ID == id {
			m.cursor = i
			m.scroll()
			return
		}
	}
	m.cursor = min(m.cursor, len(m.rows)-1)
	m.cursor = max(m.cursor, 0)
	m.scroll()
}

// reveal expands every ancestor of id so its row is visible.
func (m *editorModel) reveal(id string) {
	f := m.ctrl.Forest()
	for depth, a := range rootFirst(f.AncestorsOf(id)) {
		m.state.SetExpanded(a.ID, depth, true)
	}
}

func (m *editorModel) listHeight() int {
	if m.height == 0 {
		return len(m.rows)
	}
	return max(m.height-chromeLines, 1)
}

func (m *editorModel) scroll() {
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	m.offset = max(m.offset, 0)
}

func (m *editorModel) setStatus(failed bool, format string, args ...any) {
	m.failed = failed
	m.status = fmt.Sprintf(format, args...)
}

// ── update ──────────────────────────────────────────────────────────────────

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-20, 10)
		m.scroll()
		return m, nil

	case gestureDoneMsg:
		m.pending--
		if err := m.ctrl.Finish(msg.gesture, msg.res); err != nil {
			m.logger.Warn("editor_finish_gesture", "error", err)
		}
		m.afterWrite("Moved "+msg.name, msg.res)
		return m, m.maybeQuit()

	case editDoneMsg:
		m.pending--
		m.ctrl.Settle(msg.res)
		m.afterWrite(msg.verb, msg.res)
		return m, m.maybeQuit()

	case createDoneMsg:
		m.pending--
		if err := m.ctrl.FinishCreate(msg.placeholder, msg.res); err != nil {
			m.logger.Warn("editor_finish_create", "error", err)
		}
		if msg.res.Err == nil && msg.res.Created != nil {
			m.rebuild()
			m.selectID(msg.res.Created.ID)
			m.setStatus(false, "Created %s %s", formatter.KindTag(msg.res.Created.Kind), msg.res.Created.Name)
		} else {
			m.afterWrite("Created", msg.res)
		}
		return m, m.maybeQuit()

	case refreshedMsg:
		if msg.err != nil {
			m.setStatus(true, "Reload failed: %v", msg.err)
			return m, nil
		}
		m.ctrl.Replace(msg.forest)
		m.state.Prune(msg.forest)
		m.rebuild()
		m.setStatus(false, "Reloaded %d nodes", msg.forest.Len())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, m.quit()
		}
		switch m.mode {
		case modeRename, modeCreate, modeFilter:
			return m, m.updateInput(msg)
		case modeConfirmDelete:
			return m, m.updateConfirm(msg)
		case modeMove:
			return m, m.updateMove(msg)
		default:
			return m, m.updateBrowse(msg)
		}
	}
	return m, nil
}

// afterWrite reports a settled write. A failed write has already been
// reverted by reconciling with the store.
func (m *editorModel) afterWrite(verb string, res treesync.Result) {
	m.rebuild()
	switch {
	case res.Err == nil:
		m.setStatus(false, "%s", verb)
	case res.Reconciled && res.Forest != nil:
		m.setStatus(true, "Not saved, reloaded from the store: %v", res.Err)
	default:
		m.setStatus(true, "Not saved: %v", res.Err)
	}
}

func (m *editorModel) run(task treesync.Task, wrap func(treesync.Result) tea.Msg) tea.Cmd {
	m.pending++
	ctx := m.ctx
	return func() tea.Msg { return wrap(task(ctx)) }
}

func (m *editorModel) quit() tea.Cmd {
	if m.mode == modeCreate {
		_ = m.ctrl.CancelCreate(m.placeholder)
	}
	if m.gesture != nil {
		m.ctrl.Cancel(m.gesture)
		m.gesture = nil
	}
	m.mode = modeBrowse
	m.quitting = true
	return m.maybeQuit()
}

// maybeQuit quits once no write is in flight.
func (m *editorModel) maybeQuit() tea.Cmd {
	if !m.quitting {
		return nil
	}
	if m.pending > 0 {
		m.setStatus(false, "Waiting for %d unsaved change(s)…", m.pending)
		return nil
	}
	return tea.Quit
}

func (m *editorModel) updateBrowse(msg tea.KeyMsg) tea.Cmd {
	n := m.current()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.scroll()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.scroll()
		}
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.scroll()
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = max(len(m.rows)-1, 0)
		m.scroll()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Filter):
		m.mode = modeFilter
		m.input.Prompt = "/"
		m.input.Placeholder = "filter"
		m.input.SetValue(m.filter)
		m.input.CursorEnd()
		return m.input.Focus()
	case key.Matches(msg, m.keys.Refresh):
		syncer, ctx := m.syncer, m.ctx
		m.setStatus(false, "Reloading…")
		return func() tea.Msg {
			f, err := syncer.Reconcile(ctx)
			return refreshedMsg{forest: f, err: err}
		}
	case key.Matches(msg, m.keys.NewCase):
		return m.beginCreate(domain.KindTestCase)
	case key.Matches(msg, m.keys.NewSect):
		return m.beginCreate(domain.KindSection)
	case key.Matches(msg, m.keys.NewSuite):
		return m.beginCreate(domain.KindSuite)
	}

	if n == nil {
		return nil
	}
	row := m.rows[m.cursor]
	switch {
	case key.Matches(msg, m.keys.Toggle):
		if len(n.Children) > 0 && m.filter == "" {
			m.state.Toggle(n.ID, row.Depth)
			m.rebuild()
		}
	case key.Matches(msg, m.keys.Expand):
		if len(n.Children) > 0 && m.filter == "" {
			if !m.state.IsExpanded(n.ID, row.Depth) {
				m.state.SetExpanded(n.ID, row.Depth, true)
				m.rebuild()
			} else if m.cursor < len(m.rows)-1 {
				m.cursor++
				m.scroll()
			}
		}
	case key.Matches(msg, m.keys.Collapse):
		if len(n.Children) > 0 && m.filter == "" && m.state.IsExpanded(n.ID, row.Depth) {
			m.state.SetExpanded(n.ID, row.Depth, false)
			m.rebuild()
		} else if p := m.ctrl.Forest().ParentOf(n.ID); p != nil {
			m.selectID(p.ID)
		}
	case key.Matches(msg, m.keys.Move):
		g, err := m.ctrl.StartDrag(n.ID)
		if err != nil {
			m.setStatus(true, "%v", err)
			return nil
		}
		m.gesture = g
		m.mode = modeMove
		m.setStatus(false, "Moving %s", n.Name)
	case key.Matches(msg, m.keys.NudgeUp), key.Matches(msg, m.keys.NudgeDn):
		return m.nudge(n, key.Matches(msg, m.keys.NudgeUp))
	case key.Matches(msg, m.keys.Indent):
		return m.indent(n)
	case key.Matches(msg, m.keys.Outdent):
		return m.outdent(n)
	case key.Matches(msg, m.keys.Rename):
		m.mode = modeRename
		m.renaming = n.ID
		m.input.Prompt = "Rename: "
		m.input.Placeholder = ""
		m.input.SetValue(n.Name)
		m.input.CursorEnd()
		return m.input.Focus()
	case key.Matches(msg, m.keys.Delete):
		m.mode = modeConfirmDelete
		m.deleting = n.ID
	}
	return nil
}

// ── moving ──────────────────────────────────────────────────────────────────

// move runs a complete gesture for id: pick up, drop, and commit in the
// background.
func (m *editorModel) move(id string, target tree.Target, index int) tea.Cmd {
	g, err := m.ctrl.StartDrag(id)
	if err != nil {
		m.setStatus(true, "%v", err)
		return nil
	}
	m.gesture = g
	return m.drop(target, index)
}

func (m *editorModel) drop(target tree.Target, index int) tea.Cmd {
	g := m.gesture
	m.gesture = nil
	m.mode = modeBrowse
	name := g.NodeID
	if n := m.ctrl.Forest().Find(g.NodeID); n != nil {
		name = n.Name
	}

	task, err := m.ctrl.Drop(g, target, index)
	if err != nil {
		m.setStatus(true, "Cannot move %s there: %v", name, unwrapRejection(err))
		return nil
	}
	m.reveal(g.NodeID)
	m.rebuild()
	m.selectID(g.NodeID)
	if g.Plan.Empty() {
		m.setStatus(false, "%s is already there", name)
	} else {
		m.setStatus(false, "Moving %s…", name)
	}
	return m.run(task, func(res treesync.Result) tea.Msg {
		return gestureDoneMsg{gesture: g, name: name, res: res}
	})
}

// unwrapRejection drops the generic rejection prefix, leaving the rule.
func unwrapRejection(err error) error {
	if multi, ok := err.(interface{ Unwrap() []error }); ok && errors.Is(err, treesync.ErrRejected) {
		for _, e := range multi.Unwrap() {
			if e != treesync.ErrRejected {
				return e
			}
		}
	}
	return err
}

func (m *editorModel) updateMove(msg tea.KeyMsg) tea.Cmd {
	f := m.ctrl.Forest()
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.ctrl.Cancel(m.gesture)
		m.gesture = nil
		m.mode = modeBrowse
		m.setStatus(false, "Move cancelled")
		return nil
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.scroll()
		}
		return nil
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.scroll()
		}
		return nil
	case key.Matches(msg, m.keys.DropRoot):
		return m.drop(tree.RootTarget(), math.MaxInt)
	}

	at := m.current()
	drag := f.Find(m.gesture.NodeID)
	if at == nil || drag == nil {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Confirm), key.Matches(msg, m.keys.DropAfter):
		after := key.Matches(msg, m.keys.DropAfter)
		if at.ID == drag.ID {
			m.ctrl.Cancel(m.gesture)
			m.gesture = nil
			m.mode = modeBrowse
			m.setStatus(false, "%s stays where it is", drag.Name)
			return nil
		}
		if at.Kind == drag.Kind {
			target, index, err := placeBeside(f, drag, at, after)
			if err != nil {
				m.setStatus(true, "%v", err)
				return nil
			}
			return m.drop(target, index)
		}
		return m.drop(tree.NodeTarget(at.Kind, at.ID), math.MaxInt)
	case key.Matches(msg, m.keys.DropInto):
		return m.drop(tree.NodeTarget(at.Kind, at.ID), math.MaxInt)
	}
	return nil
}

// nudge swaps n with its previous or next sibling of the same kind.
func (m *editorModel) nudge(n *tree.Node, up bool) tea.Cmd {
	f := m.ctrl.Forest()
	var siblings []*tree.Node
	for _, s := range f.Siblings(tree.ScopeOfNode(n)) {
		if !s.Placeholder {
			siblings = append(siblings, s)
		}
	}
	pos := -1
	for i, s := range siblings {
		if s.ID == n.ID {
			pos = i
		}
	}
	next := pos + 1
	if up {
		next = pos - 1
	}
	if pos < 0 || next < 0 || next >= len(siblings) {
		m.setStatus(false, "%s is already at the %s", n.Name, map[bool]string{true: "top", false: "bottom"}[up])
		return nil
	}
	return m.move(n.ID, parentTarget(f, n), next)
}

// indent moves a section into the section just above it.
func (m *editorModel) indent(n *tree.Node) tea.Cmd {
	if n.Kind != domain.KindSection {
		m.setStatus(true, "Only sections can be indented")
		return nil
	}
	f := m.ctrl.Forest()
	var prev *tree.Node
	for _, s := range f.Siblings(tree.ScopeOfNode(n)) {
		if s.ID == n.ID {
			break
		}
		if !s.Placeholder {
			prev = s
		}
	}
	if prev == nil {
		m.setStatus(true, "No section above %s to indent into", n.Name)
		return nil
	}
	return m.move(n.ID, tree.NodeTarget(prev.Kind, prev.ID), math.MaxInt)
}

// outdent lifts n one level: a section lands after its parent section, a
// test case joins its grandparent section, anything else goes to the root.
func (m *editorModel) outdent(n *tree.Node) tea.Cmd {
	f := m.ctrl.Forest()
	p := f.ParentOf(n.ID)
	if p == nil {
		m.setStatus(true, "%s is already at the top level", n.Name)
		return nil
	}
	if n.Kind == p.Kind {
		target, index, err := placeBeside(f, n, p, true)
		if err != nil {
			m.setStatus(true, "%v", err)
			return nil
		}
		return m.move(n.ID, target, index)
	}
	if gp := f.ParentOf(p.ID); gp != nil && gp.Kind == domain.KindSection {
		return m.move(n.ID, tree.NodeTarget(gp.Kind, gp.ID), math.MaxInt)
	}
	return m.move(n.ID, tree.RootTarget(), math.MaxInt)
}

func parentTarget(f *tree.Forest, n *tree.Node) tree.Target {
	if p := f.ParentOf(n.ID); p != nil {
		return tree.NodeTarget(p.Kind, p.ID)
	}
	return tree.RootTarget()
}

// ── create, rename, delete, filter ──────────────────────────────────────────

// createTarget picks where a new node of kind goes relative to the cursor.
func (m *editorModel) createTarget(kind domain.NodeKind) (tree.Target, error) {
	f := m.ctrl.Forest()
	n := m.current()
	if kind == domain.KindSuite || n == nil {
		return tree.RootTarget(), nil
	}
	switch n.Kind {
	case domain.KindSection:
		return tree.NodeTarget(n.Kind, n.ID), nil
	case domain.KindSuite:
		if kind == domain.KindTestCase {
			return tree.Target{}, errors.New("test cases go in a section or at the root")
		}
		return tree.NodeTarget(n.Kind, n.ID), nil
	default:
		return parentTarget(f, n), nil
	}
}

func (m *editorModel) beginCreate(kind domain.NodeKind) tea.Cmd {
	if m.filter != "" {
		m.setStatus(true, "Clear the filter before adding nodes")
		return nil
	}
	target, err := m.createTarget(kind)
	if err != nil {
		m.setStatus(true, "%v", err)
		return nil
	}
	pid, err := m.ctrl.BeginCreate(target, kind)
	if err != nil {
		m.setStatus(true, "%v", err)
		return nil
	}
	if !target.IsRoot() {
		m.reveal(target.ID)
		depth := len(m.ctrl.Forest().AncestorsOf(target.ID))
		m.state.SetExpanded(target.ID, depth, true)
	}
	m.placeholder = pid
	m.mode = modeCreate
	m.rebuild()
	m.selectID(pid)

	m.input.Prompt = "New " + formatter.KindTag(kind) + ": "
	m.input.Placeholder = "name"
	m.input.SetValue("")
	m.status = ""
	return m.input.Focus()
}

func (m *editorModel) endInput() {
	m.input.Blur()
	m.mode = modeBrowse
}

func (m *editorModel) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		switch m.mode {
		case modeCreate:
			if err := m.ctrl.CancelCreate(m.placeholder); err != nil {
				m.logger.Warn("editor_cancel_create", "error", err)
			}
		case modeFilter:
			m.filter = ""
		}
		m.endInput()
		m.rebuild()
		return nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		switch m.mode {
		case modeFilter:
			m.endInput()
			return nil
		case modeRename:
			if value == "" {
				m.setStatus(true, "Name must not be empty")
				return nil
			}
			id := m.renaming
			m.endInput()
			task, err := m.ctrl.Rename(id, value)
			if err != nil {
				m.setStatus(true, "%v", err)
				return nil
			}
			m.rebuild()
			return m.run(task, func(res treesync.Result) tea.Msg {
				return editDoneMsg{verb: "Renamed to " + value, res: res}
			})
		case modeCreate:
			pid := m.placeholder
			m.endInput()
			if value == "" {
				_ = m.ctrl.CancelCreate(pid)
				m.rebuild()
				return nil
			}
			task, err := m.ctrl.CompleteCreate(pid, value)
			if err != nil {
				m.setStatus(true, "%v", err)
				_ = m.ctrl.CancelCreate(pid)
				m.rebuild()
				return nil
			}
			m.rebuild()
			return m.run(task, func(res treesync.Result) tea.Msg {
				return createDoneMsg{placeholder: pid, res: res}
			})
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.mode == modeFilter {
		m.filter = m.input.Value()
		m.rebuild()
	}
	return cmd
}

func (m *editorModel) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	id := m.deleting
	m.mode = modeBrowse
	m.deleting = ""
	if msg.String() != "y" && msg.String() != "Y" {
		m.setStatus(false, "Delete cancelled")
		return nil
	}
	name := id
	if n := m.ctrl.Forest().Find(id); n != nil {
		name = n.Name
	}
	task, err := m.ctrl.Delete(id)
	if err != nil {
		m.setStatus(true, "%v", err)
		return nil
	}
	m.rebuild()
	return m.run(task, func(res treesync.Result) tea.Msg {
		return editDoneMsg{verb: "Deleted " + name, res: res}
	})
}

// saveState records the selection and writes the view state.
func (m *editorModel) saveState(path string) error {
	if id := m.currentID(); id != "" && !tree.IsPlaceholderID(id) {
		m.state.Select(m.project.ID, id)
	}
	m.state.Prune(m.ctrl.Forest())
	return m.state.Save(path)
}

// ── view ────────────────────────────────────────────────────────────────────

func (m *editorModel) View() string {
	var b strings.Builder
	f := m.ctrl.Forest()

	b.WriteString(formatter.StyleHeader.Render(m.project.Name) + " " + formatter.Dim("("+m.project.DisplayID()+")"))
	b.WriteString("  " + formatter.Dim(formatter.CountForest(f).String()))
	if m.filter != "" {
		b.WriteString("  " + formatter.StyleYellow.Render("/"+m.filter))
	}
	if m.pending > 0 {
		b.WriteString("  " + formatter.StylePurple.Render("saving…"))
	}
	b.WriteString("\n\n")

	if len(m.rows) == 0 {
		b.WriteString(formatter.Dim("  Nothing here yet. Press S to add a suite, s for a section, c for a test case.") + "\n")
	}
	dragID := ""
	if m.gesture != nil {
		dragID = m.gesture.NodeID
	}
	end := min(m.offset+m.listHeight(), len(m.rows))
	for i := m.offset; i < end; i++ {
		r := m.rows[i]
		marker := "  "
		if i == m.cursor {
			marker = formatter.StyleHeader.Render("▶ ")
			if m.mode == modeMove {
				marker = formatter.StyleYellow.Render("↳ ")
			}
		}
		line := marker + formatter.RowTitle(r, false)
		if r.Node.ID == dragID {
			line += formatter.StyleYellow.Render("  ⇅ moving")
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case modeRename, modeCreate, modeFilter:
		b.WriteString(m.input.View() + "\n")
	case modeConfirmDelete:
		name := m.deleting
		below := 0
		if n := f.Find(m.deleting); n != nil {
			name = n.Name
			below = len(f.Descendants(n.ID))
		}
		q := fmt.Sprintf("Delete %s", name)
		if below > 0 {
			q += fmt.Sprintf(" and %d nodes below it", below)
		}
		b.WriteString(formatter.StyleRed.Render(q+"? (y/n)") + "\n")
	default:
		switch {
		case m.status == "":
			b.WriteString("\n")
		case m.failed:
			b.WriteString(formatter.StyleRed.Render(m.status) + "\n")
		default:
			b.WriteString(formatter.StyleGreen.Render(m.status) + "\n")
		}
	}

	if m.mode == modeMove {
		b.WriteString(m.help.View(moveHelp{m.keys}))
	} else {
		b.WriteString(m.help.View(browseHelp{m.keys}))
	}
	return b.String()
}

func runEditorProgram(m *editorModel) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
