package processor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodedocs/pkg/bridge"
	"github.com/matzehuels/nodedocs/pkg/catalog"
	"github.com/matzehuels/nodedocs/pkg/docgen"
	"github.com/matzehuels/nodedocs/pkg/enumerate"
	"github.com/matzehuels/nodedocs/pkg/errors"
	"github.com/matzehuels/nodedocs/pkg/notify"
	"github.com/matzehuels/nodedocs/pkg/observability"
)

// current is the state of the task being processed.
//
// Fields marked (bridge) are only touched inside bridge calls; the rest
// belong to the worker.
type current struct {
	task   *Task
	logger *log.Logger

	cat     *catalog.Catalog       // (bridge)
	gen     *docgen.Generator      // (bridge) until Finalize
	pending []enumerate.Enumerator // (bridge)
	enum    enumerate.Enumerator   // (bridge)
	missing []string

	object    catalog.Weak[catalog.Object]
	spawners  []catalog.Weak[*catalog.Spawner]
	processed map[catalog.ID]bool

	// lost is set when the bridge stops answering mid-task.
	lost bool
}

// processTask drives one task to a terminal outcome.
func (p *Processor) processTask(ctx context.Context, t *Task) {
	start := time.Now()
	id := t.ID.String()
	t.setRunning()
	observability.Task().OnTaskStart(ctx, id)
	t.handle.SetText(notify.TextInProgress)
	t.handle.SetState(notify.InProgress)

	logger := p.logger.With("task", t.Settings.Title)
	logger.Info("generating documentation", "output", t.Settings.OutputDir)

	res := p.generate(ctx, t, logger)
	res.Duration = time.Since(start)

	switch res.Outcome {
	case Success:
		t.handle.SetText(notify.TextCompleted)
		t.handle.SetState(notify.Success)
		logger.Info("documentation complete", "nodes", res.Nodes, "classes", res.Classes, "duration", res.Duration)
	case NoNodes:
		t.handle.SetText(notify.TextNoNodes)
		t.handle.SetState(notify.Fail)
		logger.Error("no nodes documented")
	default:
		t.handle.SetText(notify.TextFailed)
		t.handle.SetState(notify.Fail)
		logger.Error("documentation failed", "outcome", res.Outcome, "err", res.Err)
	}
	t.handle.Expire()

	observability.Task().OnTaskComplete(ctx, id, res.Outcome.String(), res.Nodes, res.Duration)
	t.finish(res)
	if p.onFinish != nil {
		p.onFinish(ctx, t.Info())
	}
}

func (p *Processor) generate(ctx context.Context, t *Task, logger *log.Logger) Result {
	s := &t.Settings
	res := Result{OutputDir: s.OutputDir}
	fail := func(o Outcome, err error) Result {
		res.Outcome, res.Err = o, err
		return res
	}

	cur := &current{task: t, logger: logger, processed: make(map[catalog.ID]bool)}
	initErr, ok := bridge.Call(p.br, func() error { return p.initTask(cur) })
	if !ok {
		return fail(InitFailed, errors.New(errors.ErrCodeUnavailable, "privileged context unavailable"))
	}
	if cur.gen != nil {
		defer p.br.Post(cur.gen.CleanUp)
	}
	if initErr != nil {
		return fail(InitFailed, initErr)
	}
	if err := cur.gen.PrepareOutput(!s.KeepOutput); err != nil {
		return fail(InitFailed, errors.Wrap(errors.ErrCodeInitFailed, err, "prepare output"))
	}
	res.Missing = cur.missing
	for _, name := range res.Missing {
		logger.Warn("native module not found", "module", name)
	}

	for p.enumerateNextObject(ctx, cur) {
		for {
			var state docgen.NodeState
			ref, ok := p.enumerateNextNode(ctx, cur, &state)
			if !ok {
				break
			}
			if p.processNode(ctx, cur, ref, &state) {
				res.Nodes++
				observability.Task().OnNodeDocumented(ctx, state.ClassID)
			}
			p.br.Post(func() {
				if n, ok := ref.Get(cur.cat.World()); ok {
					cur.gen.ReleaseNode(n)
				}
			})
		}
	}

	if cur.lost {
		return fail(Cancelled, errBridgeLost())
	}
	if p.stopping(ctx) {
		return fail(Cancelled, errors.New(errors.ErrCodeCancelled, "generation stopped"))
	}
	if o, err := p.finish(cur, &res); err != nil {
		return fail(o, err)
	}
	res.Outcome = Success
	return res
}

func errBridgeLost() error {
	return errors.New(errors.ErrCodeUnavailable, "privileged context stopped during generation")
}

// finish reads the generator's totals and writes the documents once every
// node has been counted into res.
func (p *Processor) finish(cur *current, res *Result) (Outcome, error) {
	summary, ok := bridge.Call(p.br, cur.gen.Summary)
	if !ok {
		return Cancelled, errBridgeLost()
	}
	res.Classes = summary.Classes
	if res.Nodes == 0 {
		return NoNodes, errors.New(errors.ErrCodeNoNodes, "no documentable nodes found")
	}
	if cur.task.Settings.GenerateXML() {
		if err := cur.gen.Finalize(); err != nil {
			return FinalizeFailed, err
		}
	}
	return Success, nil
}

// initTask runs on the bridge. It creates the generator and the task's
// enumerators.
func (p *Processor) initTask(cur *current) error {
	s := &cur.task.Settings
	if p.cat == nil {
		return errors.New(errors.ErrCodeInitFailed, "no catalog loaded")
	}
	cur.cat = p.cat
	cur.gen = docgen.New(cur.cat, docgen.Options{
		Title:           s.Title,
		OutputDir:       s.OutputDir,
		ContextClass:    s.BlueprintContextClass,
		ExcludedClasses: s.ExcludedClasses,
		Renderer:        p.renderer,
		Logger:          cur.logger,
	})
	if err := cur.gen.Init(); err != nil {
		return err
	}
	cur.pending, cur.missing = enumerate.ForTask(cur.cat, s.NativeModules, s.ContentPaths)
	return nil
}

// enumerateNextObject advances to the next source object that has not been
// visited in this task and has at least one spawner. It returns false when
// every enumerator is exhausted or the task should stop.
func (p *Processor) enumerateNextObject(ctx context.Context, cur *current) bool {
	type candidate struct {
		end      bool
		object   catalog.Weak[catalog.Object]
		name     string
		spawners []catalog.Weak[*catalog.Spawner]
	}

	for {
		if p.stopping(ctx) {
			return false
		}
		c, ok := bridge.Call(p.br, func() candidate {
			for {
				if cur.enum == nil {
					if len(cur.pending) == 0 {
						return candidate{end: true}
					}
					cur.enum, cur.pending = cur.pending[0], cur.pending[1:]
				}
				o := cur.enum.Next()
				if o == nil {
					cur.enum = nil
					continue
				}
				c := candidate{object: catalog.WeakOf(o), name: o.ObjectName()}
				for _, s := range cur.cat.Actions(o) {
					c.spawners = append(c.spawners, catalog.WeakOf(s))
				}
				return c
			}
		})
		if !ok {
			cur.lost = true
			return false
		}
		if c.end {
			return false
		}
		if cur.processed[c.object.ID()] || len(c.spawners) == 0 {
			continue
		}

		cur.processed[c.object.ID()] = true
		cur.object = c.object
		cur.spawners = c.spawners
		cur.logger.Debug("processing source object", "object", c.name, "spawners", len(c.spawners))
		return true
	}
}

// enumerateNextNode spawns the node of the next documentable spawner of the
// current object. It returns false once the object's spawners are used up.
func (p *Processor) enumerateNextNode(ctx context.Context, cur *current, state *docgen.NodeState) (catalog.Weak[*catalog.Node], bool) {
	type spawned struct {
		node       catalog.Weak[*catalog.Node]
		sourceGone bool
	}

	for len(cur.spawners) > 0 {
		ref := cur.spawners[0]
		cur.spawners = cur.spawners[1:]

		var st docgen.NodeState
		r, ok := bridge.Call(p.br, func() spawned {
			w := cur.cat.World()
			source, ok := cur.object.Get(w)
			if !ok {
				return spawned{sourceGone: true}
			}
			s, ok := ref.Get(w)
			if !ok {
				return spawned{}
			}
			n := cur.gen.InitializeForSpawner(ctx, s, source, &st)
			if n == nil {
				return spawned{}
			}
			return spawned{node: catalog.WeakOf(n)}
		})
		if !ok {
			cur.lost = true
			return catalog.Weak[*catalog.Node]{}, false
		}
		if r.sourceGone {
			cur.logger.Warn("source object expired", "id", cur.object.ID())
			cur.spawners = nil
			break
		}
		if r.node.IsZero() {
			continue
		}
		*state = st
		return r.node, true
	}
	return catalog.Weak[*catalog.Node]{}, false
}

// processNode renders and documents one spawned node. It reports whether
// the node was documented.
func (p *Processor) processNode(ctx context.Context, cur *current, ref catalog.Weak[*catalog.Node], state *docgen.NodeState) bool {
	s := &cur.task.Settings

	if s.GenerateImages() {
		if s.PinDisplay.Simple() && !p.imagePass(ctx, cur, ref, state, false) {
			return false
		}
		if s.PinDisplay.Advanced() && !p.imagePass(ctx, cur, ref, state, true) {
			return false
		}
	}

	if s.GenerateXML() {
		err, ok := bridge.Call(p.br, func() error {
			n, ok := ref.Get(cur.cat.World())
			if !ok {
				return errors.New(errors.ErrCodeNotFound, "node expired")
			}
			return cur.gen.GenerateNodeDocs(n, state)
		})
		if !ok || err != nil {
			cur.logger.Warn("failed to document node", "class", state.ClassID, "err", err)
			observability.Task().OnNodeSkipped(ctx, docgen.SkipDocFailed)
			return false
		}
	}
	return true
}

// imagePass renders one image of the node. The advanced pass expands hidden
// advanced pins first.
func (p *Processor) imagePass(ctx context.Context, cur *current, ref catalog.Weak[*catalog.Node], state *docgen.NodeState, advanced bool) bool {
	err, ok := bridge.Call(p.br, func() error {
		n, ok := ref.Get(cur.cat.World())
		if !ok {
			return errors.New(errors.ErrCodeNotFound, "node expired")
		}
		if advanced && n.AdvancedPinDisplay == catalog.AdvancedHidden {
			n.AdvancedPinDisplay = catalog.AdvancedShown
		}
		return cur.gen.GenerateNodeImage(ctx, n, state)
	})
	if !ok || err != nil {
		cur.logger.Warn("failed to render node image", "class", state.ClassID, "advanced", advanced, "err", err)
		observability.Task().OnNodeSkipped(ctx, docgen.SkipRenderFailed)
		return false
	}
	return true
}
