package docgen

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodedocs/pkg/catalog"
	"github.com/matzehuels/nodedocs/pkg/errors"
	"github.com/matzehuels/nodedocs/pkg/observability"
	"github.com/matzehuels/nodedocs/pkg/render"
	"github.com/matzehuels/nodedocs/pkg/xmldoc"
)

// Reasons passed to observability hooks when a spawner yields no document.
const (
	SkipFiltered     = "filtered"
	SkipUnmapped     = "unmapped"
	SkipExcluded     = "excluded_class"
	SkipDuplicate    = "duplicate"
	SkipSpawnFailed  = "spawn_failed"
	SkipNotScript    = "not_script"
	SkipRenderFailed = "render_failed"
	SkipDocFailed    = "doc_failed"
)

// Options configures a Generator.
type Options struct {
	// Title names the documentation set.
	Title string
	// OutputDir is the root of the generated tree.
	OutputDir string
	// ContextClass is the parent class of the scratch blueprint.
	ContextClass string
	// ExcludedClasses lists owning classes whose nodes are not documented.
	ExcludedClasses []string
	// Renderer draws node images. Required for GenerateNodeImage.
	Renderer render.Renderer
	Logger   *log.Logger
}

// NodeState is the per-node processing record filled by
// InitializeForSpawner and the image passes.
type NodeState struct {
	// ClassID identifies the class document the node is listed in.
	ClassID string
	// ClassDocsPath is the output directory of that class.
	ClassDocsPath string
	// RelImageBasePath is the image directory relative to the node document.
	RelImageBasePath string
	// ImageFilename is set by a successful collapsed pass.
	ImageFilename string
	// AdvancedImageFilename is set by a successful expanded pass.
	AdvancedImageFilename string
}

// Summary counts what a generator has documented.
type Summary struct {
	Classes int `json:"classes"`
	Nodes   int `json:"nodes"`
}

// Generator accumulates the document tree of one task.
type Generator struct {
	cat    *catalog.Catalog
	opts   Options
	logger *log.Logger

	excluded map[string]bool
	graph    *catalog.Graph

	index      *xmldoc.Document
	classDocs  map[string]*xmldoc.Document
	classOrder []string
	documented map[string]map[string]bool
	nodes      int
}

// New creates a generator over cat.
func New(cat *catalog.Catalog, opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	g := &Generator{
		cat:        cat,
		opts:       opts,
		logger:     opts.Logger,
		excluded:   make(map[string]bool, len(opts.ExcludedClasses)),
		classDocs:  make(map[string]*xmldoc.Document),
		documented: make(map[string]map[string]bool),
	}
	for _, c := range opts.ExcludedClasses {
		g.excluded[c] = true
	}
	return g
}

// OutputMarker is the file PrepareOutput leaves in every output directory it
// owns. Only directories carrying it are cleaned.
const OutputMarker = ".nodedocs"

// PrepareOutput creates the output directory, removing a previous run's
// tree first when clean is set. It runs on the worker before Init.
//
// A non-empty directory without OutputMarker is never removed, nor is the
// working directory or any directory above it.
func (g *Generator) PrepareOutput(clean bool) error {
	dir := g.opts.OutputDir
	if dir == "" {
		return errors.New(errors.ErrCodeInvalidPath, "output directory is empty")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve output directory %s", dir)
	}
	if clean && containsWorkingDir(abs) {
		return errors.New(errors.ErrCodeInvalidPath, "refusing to clean %s: it contains the working directory", dir)
	}

	entries, err := os.ReadDir(abs)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return fmt.Errorf("read %s: %w", dir, err)
	case len(entries) == 0:
	case !clean:
		return nil
	default:
		if _, err := os.Stat(filepath.Join(abs, OutputMarker)); err != nil {
			return errors.New(errors.ErrCodeInvalidPath, "refusing to clean %s: not a nodedocs output directory", dir)
		}
		if err := os.RemoveAll(abs); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
	}

	if err := os.MkdirAll(abs, 0755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(abs, OutputMarker), nil, 0644); err != nil {
		return fmt.Errorf("mark %s: %w", dir, err)
	}
	return nil
}

// containsWorkingDir reports whether abs is the working directory or one of
// its ancestors.
func containsWorkingDir(abs string) bool {
	wd, err := os.Getwd()
	if err != nil {
		return true
	}
	rel, err := filepath.Rel(abs, wd)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// =============================================================================
// Live-object phase
// =============================================================================

// Init creates and roots the scratch graph and starts the index document.
func (g *Generator) Init() error {
	graph, err := g.cat.NewGraph(g.opts.ContextClass)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInitFailed, err, "create scratch graph")
	}
	w := g.cat.World()
	w.AddToRoot(graph.Blueprint)
	w.AddToRoot(graph)
	g.graph = graph

	g.index = xmldoc.New("index")
	g.index.Root.AppendText("name", g.opts.Title)
	g.index.Root.Append("classes")
	return nil
}

// InitializeForSpawner spawns the node s produces for source, roots it and
// fills state. It returns nil when the spawner is not documentable or the
// node cannot be placed in a class.
func (g *Generator) InitializeForSpawner(ctx context.Context, s *catalog.Spawner, source catalog.Object, state *NodeState) *catalog.Node {
	_, isBlueprint := source.(*catalog.Blueprint)
	if !IsSpawnerDocumentable(s, isBlueprint) {
		g.skip(ctx, SkipFiltered)
		return nil
	}

	cls := spawnerClass(s, source)
	if cls == nil {
		g.logger.Warn("no class for spawner", "spawner", s.ObjectName(), "source", source.ObjectName())
		g.skip(ctx, SkipUnmapped)
		return nil
	}
	if g.excluded[ClassDocID(cls)] {
		g.skip(ctx, SkipExcluded)
		return nil
	}
	if g.documented[ClassDocID(cls)][s.Template.DocID] {
		g.logger.Debug("node already documented", "class", ClassDocID(cls), "node", s.Template.DocID)
		g.skip(ctx, SkipDuplicate)
		return nil
	}

	n := s.Invoke(g.graph)
	if n == nil {
		g.logger.Warn("failed to spawn node", "spawner", s.ObjectName())
		g.skip(ctx, SkipSpawnFailed)
		return nil
	}
	if !n.Kind.IsScript() {
		g.logger.Warn("spawned node is not a script node", "spawner", s.ObjectName(), "kind", n.Kind)
		g.graph.RemoveNode(n)
		g.skip(ctx, SkipNotScript)
		return nil
	}

	cls = MapToAssociatedClass(n, source)
	if cls == nil {
		g.graph.RemoveNode(n)
		g.skip(ctx, SkipUnmapped)
		return nil
	}
	classID := g.ensureClassDoc(cls)

	*state = NodeState{
		ClassID:          classID,
		ClassDocsPath:    filepath.Join(g.opts.OutputDir, classID),
		RelImageBasePath: ".",
	}
	g.cat.World().AddToRoot(n)
	return n
}

// ensureClassDoc creates the class document and its index entry on first
// use and returns the class id.
func (g *Generator) ensureClassDoc(cls *catalog.Class) string {
	id := ClassDocID(cls)
	if _, ok := g.classDocs[id]; ok {
		return id
	}

	doc := xmldoc.New("class")
	doc.Root.AppendText("id", id)
	doc.Root.AppendText("name", cls.FriendlyName())
	doc.Root.Append("functions")
	parent := doc.Root.Append("path").Append("parent")
	parent.AppendText("uri", "../index.xml")
	parent.AppendText("name", g.opts.Title)

	g.classDocs[id] = doc
	g.classOrder = append(g.classOrder, id)

	entry := g.index.Root.Find("classes").Append("class")
	entry.AppendText("id", id)
	entry.AppendText("name", cls.FriendlyName())
	return id
}

// AdjustNodeForSnapshot hides the default value box of the target pin.
func AdjustNodeForSnapshot(n *catalog.Node) {
	if self := n.FindPin(catalog.SelfPinName); self != nil {
		self.DefaultValueIgnored = true
	}
}

// GenerateNodeImage renders n and writes the PNG into the node's directory.
// The file is <node-id>_advanced.png when advanced pins are shown and
// <node-id>.png otherwise; the name is recorded in state.
func (g *Generator) GenerateNodeImage(ctx context.Context, n *catalog.Node, state *NodeState) error {
	if g.opts.Renderer == nil {
		return fmt.Errorf("no renderer configured")
	}
	nodeID := NodeDocID(n)
	advanced := n.AdvancedPinDisplay == catalog.AdvancedShown
	pass, file := "simple", nodeID+".png"
	if advanced {
		pass, file = "advanced", nodeID+"_advanced.png"
	}

	AdjustNodeForSnapshot(n)
	img, err := g.renderImage(ctx, pass, render.WidgetFor(n))
	if err != nil {
		return fmt.Errorf("render %s: %w", nodeID, err)
	}

	dir := filepath.Join(state.ClassDocsPath, nodeID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, file))
	if err != nil {
		return err
	}
	if err := render.WriteOpaquePNG(f, img); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", file, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if advanced {
		state.AdvancedImageFilename = file
	} else {
		state.ImageFilename = file
	}
	return nil
}

// GenerateNodeDocs writes the node document and lists the node in its class
// document.
func (g *Generator) GenerateNodeDocs(n *catalog.Node, state *NodeState) error {
	classDoc, ok := g.classDocs[state.ClassID]
	if !ok {
		return fmt.Errorf("no class document %q", state.ClassID)
	}
	nodeID := NodeDocID(n)

	doc := xmldoc.New("node")
	root := doc.Root
	path := root.Append("path")
	parent := path.Append("parent")
	parent.AppendText("uri", "../../index.xml")
	parent.AppendText("name", g.opts.Title)
	parent = path.Append("parent")
	parent.AppendText("uri", "../index.xml")
	parent.AppendText("name", classDoc.Root.Find("id").Text)

	root.AppendText("id", nodeID)
	root.AppendText("shorttitle", strings.TrimRightFunc(n.Title(catalog.TitleListView), unicode.IsSpace))
	root.AppendText("name", trimTarget(n.Title(catalog.TitleFull)))
	root.AppendCDATA("description", trimTarget(n.TooltipText()))
	root.AppendText("category", n.MenuCategory())

	images := root.Append("images")
	if state.ImageFilename != "" {
		images.AppendText("simple", state.RelImageBasePath+"/"+state.ImageFilename)
	}
	if state.AdvancedImageFilename != "" {
		images.AppendText("advanced", state.RelImageBasePath+"/"+state.AdvancedImageFilename)
	}

	inputs, outputs := root.Append("inputs"), root.Append("outputs")
	for _, p := range n.Pins {
		if p.Hidden {
			continue
		}
		list := inputs
		if p.Direction == catalog.DirOutput {
			list = outputs
		}
		pd := DocumentPin(n, p)
		param := list.Append("param")
		param.AppendText("name", pd.Name)
		param.AppendText("type", pd.Type)
		param.AppendCDATA("description", pd.Description)
	}

	file := filepath.Join(state.ClassDocsPath, nodeID, "index.xml")
	if err := doc.Save(file, stylesheetHref(2)); err != nil {
		return fmt.Errorf("save %s: %w", file, err)
	}

	entry := classDoc.Root.Find("functions").Append("function")
	entry.AppendText("id", nodeID)
	entry.AppendText("name", n.Title(catalog.TitleListView))

	if g.documented[state.ClassID] == nil {
		g.documented[state.ClassID] = make(map[string]bool)
	}
	g.documented[state.ClassID][nodeID] = true
	g.nodes++
	return nil
}

// ReleaseNode unroots n and detaches it from the scratch graph so the next
// collection destroys it.
func (g *Generator) ReleaseNode(n *catalog.Node) {
	if n == nil {
		return
	}
	g.cat.World().RemoveFromRoot(n)
	if graph := n.Graph(); graph != nil {
		graph.RemoveNode(n)
	}
}

// CleanUp unroots the scratch graph and its blueprint.
func (g *Generator) CleanUp() {
	if g.graph == nil {
		return
	}
	w := g.cat.World()
	w.RemoveFromRoot(g.graph)
	w.RemoveFromRoot(g.graph.Blueprint)
	g.graph = nil
}

// Summary reports the classes and nodes documented so far.
func (g *Generator) Summary() Summary {
	return Summary{Classes: len(g.classOrder), Nodes: g.nodes}
}

func (g *Generator) renderImage(ctx context.Context, pass string, w render.Widget) (image.Image, error) {
	start := time.Now()
	img, err := g.opts.Renderer.Render(ctx, w)
	observability.Render().OnRender(ctx, pass, time.Since(start), err)
	return img, err
}

func (g *Generator) skip(ctx context.Context, reason string) {
	observability.Task().OnNodeSkipped(ctx, reason)
}

// NodeDocID returns the identifier used for a node's directory and
// document. Identifiers that cannot name a directory fall back to one
// derived from the object id.
func NodeDocID(n *catalog.Node) string {
	id := n.DocumentationExcerptName()
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Sprintf("Node_%d", n.ObjectID())
	}
	return id
}
