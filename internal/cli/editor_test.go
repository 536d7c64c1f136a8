package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/casetree/internal/contract"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/teatest"
	"github.com/alexanderramin/casetree/internal/treesync"
	"github.com/alexanderramin/casetree/internal/viewstate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// EditorDriver wraps teatest.Driver with access to the editor model.
type EditorDriver struct {
	*teatest.Driver
}

// NewEditorDriver opens the editor on the app's single project. Store
// writes run inside the drain, so each key press settles before the next.
func NewEditorDriver(t *testing.T, app *App) *EditorDriver {
	t.Helper()
	ws, err := app.openWorkspace(context.Background())
	require.NoError(t, err)
	return newEditorDriverFor(t, ws)
}

func newEditorDriverFor(t *testing.T, ws *workspace) *EditorDriver {
	t.Helper()
	m := newEditorModel(context.Background(), ws, viewstate.Default(), nil)
	d := teatest.New(t, m, teatest.WithCmdTimeout(5*time.Second), teatest.WithSize(100, 30))
	d.DrainInit()
	return &EditorDriver{Driver: d}
}

func (d *EditorDriver) editor() *editorModel { return d.Model.(*editorModel) }

// Screen is the view without styling.
func (d *EditorDriver) Screen() string { return stripANSI(d.View()) }

// Goto moves the cursor onto the row named name.
func (d *EditorDriver) Goto(name string) {
	d.T.Helper()
	m := d.editor()
	for i, r := range m.rows {
		if r.Node.Name == name {
			for m.cursor > i {
				d.Press("up")
			}
			for m.cursor < i {
				d.Press("down")
			}
			return
		}
	}
	d.T.Fatalf("no visible row %q:\n%s", name, d.Screen())
}

func (d *EditorDriver) Selected() string {
	if n := d.editor().current(); n != nil {
		return n.Name
	}
	return ""
}

func (d *EditorDriver) clearInput() {
	for range d.editor().input.Value() {
		d.Press("backspace")
	}
}

func TestEditor_ShowsTree(t *testing.T) {
	app := testApp(t)
	seedTree(t, app)
	d := NewEditorDriver(t, app)

	screen := d.Screen()
	for _, want := range []string{"Web", "(WEB)", "Checkout", "Payments", "Pays by card", "Refunds a card", "Shipping"} {
		assert.Contains(t, screen, want)
	}
	assert.Equal(t, "Checkout", d.Selected())
}

func TestEditor_ToggleCollapsesSubtree(t *testing.T) {
	app := testApp(t)
	seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Payments")
	d.Press("enter")

	screen := d.Screen()
	assert.NotContains(t, screen, "Pays by card")
	assert.Contains(t, screen, "+2")

	d.Press("l")
	assert.Contains(t, d.Screen(), "Pays by card")
}

func TestEditor_NudgeReordersSiblings(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Shipping")
	d.Press("K")

	assert.Equal(t, map[string]int{"Shipping": 0, "Payments": 1}, sectionOrders(t, app, s.project.ID))
	assert.Equal(t, "Shipping", d.Selected())
	assert.Contains(t, d.Screen(), "Moved Shipping")
	assert.Zero(t, d.editor().pending)

	d.Press("K")
	assert.Contains(t, d.Screen(), "already at the top")
}

func TestEditor_MoveIntoOtherSection(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Refunds a card")
	d.Press("m")
	assert.Equal(t, modeMove, d.editor().mode)
	d.Contains("moving")

	d.Goto("Shipping")
	d.Press("enter")

	assert.Equal(t, modeBrowse, d.editor().mode)
	moved := testCaseByTitle(t, app, s.project.ID, "Refunds a card")
	assert.Equal(t, domain.UnderSection(s.shipping.ID), moved.Parent)
	assert.Equal(t, "Refunds a card", d.Selected(), "cursor follows the moved node")
}

func TestEditor_MoveBesideSibling(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Payments")
	d.Press("m")
	d.Goto("Shipping")
	d.Press("a")

	assert.Equal(t, map[string]int{"Shipping": 0, "Payments": 1}, sectionOrders(t, app, s.project.ID))
}

func TestEditor_RejectedDropChangesNothing(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Checkout")
	d.Press("m")
	d.Goto("Payments")
	d.Press("i")

	assert.Contains(t, d.Screen(), "Cannot move Checkout there")
	assert.Equal(t, modeBrowse, d.editor().mode)
	assert.Nil(t, d.editor().ctrl.Dragging())
	assert.Equal(t, map[string]int{"Payments": 0, "Shipping": 1}, sectionOrders(t, app, s.project.ID))
}

func TestEditor_CancelMove(t *testing.T) {
	app := testApp(t)
	seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Payments")
	d.Press("m")
	d.Press("esc")

	assert.Equal(t, modeBrowse, d.editor().mode)
	assert.Nil(t, d.editor().ctrl.Dragging())
	d.Contains("Move cancelled")
}

func TestEditor_IndentAndOutdent(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Shipping")
	d.Press(">")

	sections, err := app.Local.Trees.ListSections(context.Background(), s.project.ID)
	require.NoError(t, err)
	for _, sec := range sections {
		if sec.Name == "Shipping" {
			assert.Equal(t, domain.UnderSection(s.payments.ID), sec.Parent)
		}
	}

	d.Goto("Shipping")
	d.Press("<")
	assert.Equal(t, map[string]int{"Payments": 0, "Shipping": 1}, sectionOrders(t, app, s.project.ID))
}

func TestEditor_CreateTestCase(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Payments")
	d.Press("c")
	assert.Equal(t, modeCreate, d.editor().mode)
	d.Contains("New case:")

	d.Type("Declines expired card")
	d.Press("enter")

	tc := testCaseByTitle(t, app, s.project.ID, "Declines expired card")
	assert.Equal(t, domain.UnderSection(s.payments.ID), tc.Parent)
	assert.Equal(t, 2, tc.DisplayOrder)
	assert.Equal(t, tc.ID, d.editor().currentID(), "the placeholder is swapped for the stored node")
	d.Contains("Created case Declines expired card")
}

func TestEditor_CancelCreateLeavesNoPlaceholder(t *testing.T) {
	app := testApp(t)
	seedTree(t, app)
	d := NewEditorDriver(t, app)

	before := d.editor().ctrl.Forest().Len()
	d.Press("S")
	d.Type("Half typed")
	d.Press("esc")

	assert.Equal(t, before, d.editor().ctrl.Forest().Len())
	assert.Equal(t, modeBrowse, d.editor().mode)
}

func TestEditor_Rename(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Checkout")
	d.Press("r")
	d.clearInput()
	d.Type("Storefront")
	d.Press("enter")

	suites, err := app.Local.Trees.ListSuites(context.Background(), s.project.ID)
	require.NoError(t, err)
	require.Len(t, suites, 1)
	assert.Equal(t, "Storefront", suites[0].Name)
	d.Contains("Renamed to Storefront")
}

func TestEditor_DeleteAsksFirst(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Payments")
	d.Press("x")
	d.Contains("Delete Payments and 2 nodes below it? (y/n)")
	d.Press("n")
	assert.Len(t, sectionOrders(t, app, s.project.ID), 2)

	d.Press("x")
	d.Press("y")
	assert.Equal(t, map[string]int{"Shipping": 0}, sectionOrders(t, app, s.project.ID))
	assert.NotContains(t, d.Screen(), "Pays by card")
}

func TestEditor_Filter(t *testing.T) {
	app := testApp(t)
	seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Press("/")
	d.Type("refund")

	screen := d.Screen()
	assert.Contains(t, screen, "Refunds a card")
	assert.Contains(t, screen, "Payments", "ancestors of matches stay visible")
	assert.NotContains(t, screen, "Shipping")

	d.Press("esc")
	assert.Contains(t, d.Screen(), "Shipping")
}

// failingReorders refuses every reorder so commits fail after the optimistic
// change is shown.
type failingReorders struct {
	Backend
}

var errStoreDown = errors.New("store unavailable")

func (failingReorders) Reorder(context.Context, contract.ReorderRequest) error { return errStoreDown }

func TestEditor_FailedCommitRevertsFromStore(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	ws, err := app.openWorkspace(context.Background())
	require.NoError(t, err)

	b := failingReorders{Backend: ws.backend}
	ws.backend = b
	ws.syncer = treesync.NewSyncer(ws.project.ID, b, b)
	d := newEditorDriverFor(t, ws)

	d.Goto("Shipping")
	d.Press("K")

	d.Contains("Not saved, reloaded from the store")
	d.Contains(errStoreDown.Error())
	rows := d.editor().rows
	var order []string
	for _, r := range rows {
		order = append(order, r.Node.Name)
	}
	assert.Less(t, indexOf(order, "Payments"), indexOf(order, "Shipping"))
	assert.Equal(t, map[string]int{"Payments": 0, "Shipping": 1}, sectionOrders(t, app, s.project.ID))
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func TestEditor_SaveStateRemembersSelection(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	d := NewEditorDriver(t, app)

	d.Goto("Payments")
	d.Press("enter")
	d.Goto("Shipping")

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, d.editor().saveState(path))

	state, err := viewstate.Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.shipping.ID, state.SelectedIn(s.project.ID))
	assert.False(t, state.IsExpanded(s.payments.ID, 1))

	ws, err := app.openWorkspace(context.Background())
	require.NoError(t, err)
	m := newEditorModel(context.Background(), ws, state, nil)
	assert.Equal(t, "Shipping", m.current().Name, "a reopened editor restores the selection")
}

func TestEditor_QuitAndHelp(t *testing.T) {
	app := testApp(t)
	seedTree(t, app)
	d := NewEditorDriver(t, app)

	short := d.Screen()
	d.Press("?")
	assert.True(t, strings.Contains(d.Screen(), "reload"))
	assert.NotContains(t, short, "reload")

	d.Press("q")
	assert.True(t, d.Quitting)
}

func TestEditCmd_RunsEditorAndSavesState(t *testing.T) {
	app := testApp(t)
	s := seedTree(t, app)
	app.IsInteractive = func() bool { return true }
	app.RunEditor = func(m *editorModel) error {
		d := teatest.New(t, m, teatest.WithCmdTimeout(5*time.Second))
		d.DrainInit()
		for m.currentID() != s.shipping.ID {
			d.Press("down")
		}
		d.Press("q")
		return nil
	}

	_, err := executeCmd(t, app, "edit")
	require.NoError(t, err)

	state, err := viewstate.Load(app.Config.StatePath)
	require.NoError(t, err)
	assert.Equal(t, s.shipping.ID, state.SelectedIn(s.project.ID))
}
