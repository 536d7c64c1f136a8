package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/casetree/internal/cli/formatter"
	"github.com/alexanderramin/casetree/internal/domain"
	"github.com/alexanderramin/casetree/internal/tree"
	"github.com/alexanderramin/casetree/internal/treesync"
)

var (
	errNoProject    = errors.New("no project selected (use --project or CASETREE_PROJECT)")
	errNodeNotFound = errors.New("node not found")
	errAmbiguous    = errors.New("ambiguous reference")
)

// resolveProject finds a project by short ID, UUID or UUID prefix. With no
// input, a store holding exactly one project resolves to it.
func resolveProject(ctx context.Context, b Backend, input string) (*domain.Project, error) {
	projects, err := b.Projects(ctx)
	if err != nil {
		return nil, err
	}
	if input == "" {
		if len(projects) == 1 {
			return projects[0], nil
		}
		return nil, errNoProject
	}

	// 1. Exact short ID match (case-insensitive)
	for _, p := range projects {
		if strings.EqualFold(p.ShortID, input) {
			return p, nil
		}
	}
	// 2. Exact UUID match
	for _, p := range projects {
		if p.ID == input {
			return p, nil
		}
	}
	// 3. UUID prefix match
	var matches []*domain.Project
	for _, p := range projects {
		if strings.HasPrefix(p.ID, input) {
			matches = append(matches, p)
		}
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("project not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w: project ID prefix %q matches %d projects", errAmbiguous, input, len(matches))
	}
}

const minPrefixLen = 4

// resolveNode finds a node by ID, exact name (case-insensitive) or unique ID
// prefix of at least four characters. Placeholders never match.
func resolveNode(f *tree.Forest, input string) (*tree.Node, error) {
	if n := f.Find(input); n != nil && !n.Placeholder {
		return n, nil
	}
	var byName, byPrefix []*tree.Node
	for _, n := range f.Flatten() {
		if n.Placeholder {
			continue
		}
		if strings.EqualFold(n.Name, input) {
			byName = append(byName, n)
		}
		if len(input) >= minPrefixLen && strings.HasPrefix(n.ID, input) {
			byPrefix = append(byPrefix, n)
		}
	}
	for _, candidates := range [][]*tree.Node{byName, byPrefix} {
		switch len(candidates) {
		case 0:
			continue
		case 1:
			return candidates[0], nil
		default:
			return nil, fmt.Errorf("%w: %q matches %s", errAmbiguous, input, describeNodes(f, candidates))
		}
	}
	return nil, fmt.Errorf("%w: %q", errNodeNotFound, input)
}

func describeNodes(f *tree.Forest, nodes []*tree.Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		id := n.ID
		if len(id) > 8 {
			id = id[:8]
		}
		parts[i] = fmt.Sprintf("%s (%s %s)", pathOf(f, n), formatter.KindTag(n.Kind), id)
	}
	return strings.Join(parts, ", ")
}

// pathOf renders a node's ancestors and the node itself, root first.
func pathOf(f *tree.Forest, n *tree.Node) string {
	return formatter.PathString(append(rootFirst(f.AncestorsOf(n.ID)), n))
}

func rootFirst(ancestors []*tree.Node) []*tree.Node {
	out := make([]*tree.Node, len(ancestors))
	for i, a := range ancestors {
		out[len(ancestors)-1-i] = a
	}
	return out
}

// resolveTarget turns "root" or a node reference into a drop target.
func resolveTarget(f *tree.Forest, input string) (tree.Target, error) {
	if input == "" || strings.EqualFold(input, "root") {
		return tree.RootTarget(), nil
	}
	n, err := resolveNode(f, input)
	if err != nil {
		return tree.Target{}, err
	}
	return tree.NodeTarget(n.Kind, n.ID), nil
}

// workspace is one project's tree loaded from the backend.
type workspace struct {
	project *domain.Project
	backend Backend
	syncer  *treesync.Syncer
	forest  *tree.Forest
}

// openWorkspace resolves the selected project and loads its forest.
func (a *App) openWorkspace(ctx context.Context) (*workspace, error) {
	b, err := a.backend()
	if err != nil {
		return nil, err
	}
	p, err := resolveProject(ctx, b, a.Config.Project)
	if err != nil {
		return nil, err
	}
	syncer := treesync.NewSyncer(p.ID, b, b, treesync.WithLogger(a.Logger))
	f, err := syncer.Reconcile(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", p.DisplayID(), err)
	}
	return &workspace{project: p, backend: b, syncer: syncer, forest: f}, nil
}

func (w *workspace) controller() *treesync.Controller {
	return treesync.NewController(w.forest, w.syncer, w.backend)
}
