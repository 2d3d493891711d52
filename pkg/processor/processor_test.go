package processor

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/nodedocs/pkg/bridge"
	"github.com/matzehuels/nodedocs/pkg/catalog"
	"github.com/matzehuels/nodedocs/pkg/config"
	"github.com/matzehuels/nodedocs/pkg/docgen"
	"github.com/matzehuels/nodedocs/pkg/errors"
	"github.com/matzehuels/nodedocs/pkg/notify"
	"github.com/matzehuels/nodedocs/pkg/render"
)

const manifest = `
modules:
  - name: Engine
    classes:
      - name: Actor
        functions:
          - {name: GetActorLocation}
          - {name: SetActorHidden}
          - {name: InternalTick, access: private}
        actions:
          - {spawner: function, function: GetActorLocation, title: Get Actor Location}
          - spawner: function
            function: SetActorHidden
            title: Set Actor Hidden
            pins:
              - {type: exec}
              - {name: bHidden, type: bool, advanced: true}
          - {spawner: function, function: InternalTick}
          - {spawner: variable, title: Location}
      - name: Pawn
        parent: Actor
        functions: [{name: AddInput}]
        actions:
          - {spawner: function, function: AddInput, title: Add Input}
  - name: Empty
  - name: Hidden
    classes:
      - name: Secret
        functions: [{name: Peek, access: private}]
        actions:
          - {spawner: function, function: Peek}
blueprints:
  - name: BP_Door
    path: /Game/BP_Door
    parent: Actor
    functions: [{name: Open}]
    actions:
      - {spawner: function, function: Open}
`

type fixture struct {
	br    *bridge.Context
	board *notify.Board
	proc  *Processor
	root  string

	mu       sync.Mutex
	finished []Info
}

func solid(context.Context, render.Widget) (image.Image, error) {
	return image.NewNRGBA(image.Rect(0, 0, 4, 4)), nil
}

func newFixture(t *testing.T, r render.Renderer) *fixture {
	t.Helper()
	cat, err := catalog.Parse(strings.NewReader(manifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r == nil {
		r = render.RendererFunc(solid)
	}

	f := &fixture{br: bridge.New(), board: notify.NewBoard(), root: t.TempDir()}
	go f.br.Run(context.Background())
	f.proc = New(Options{
		Bridge:   f.br,
		Catalog:  cat,
		Renderer: r,
		Sink:     f.board,
		OnFinish: func(_ context.Context, info Info) {
			f.mu.Lock()
			f.finished = append(f.finished, info)
			f.mu.Unlock()
		},
	})
	t.Cleanup(func() {
		f.proc.RequestStop()
		f.br.Close()
		<-f.br.Done()
	})
	return f
}

func (f *fixture) start(t *testing.T) <-chan error {
	t.Helper()
	errc := make(chan error, 1)
	go func() { errc <- f.proc.Run(context.Background()) }()
	return errc
}

func (f *fixture) settings(title string, modules ...string) config.Settings {
	return config.Settings{
		Title:         title,
		OutputDir:     filepath.Join(f.root, title),
		NativeModules: modules,
	}
}

func (f *fixture) submit(t *testing.T, s config.Settings) *Task {
	t.Helper()
	task, err := f.proc.Submit(s)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	return task
}

func wait(t *testing.T, task *Task) Result {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	res, err := task.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	return res
}

func TestProcessorSuccess(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	s := f.settings("Engine", "Engine", "Empty", "Missing")
	s.ContentPaths = []string{"/Game"}
	task := f.submit(t, s)
	res := wait(t, task)

	if res.Outcome != Success {
		t.Fatalf("Outcome = %v (%v), want success", res.Outcome, res.Err)
	}
	if res.Nodes != 4 || res.Classes != 3 {
		t.Errorf("Nodes, Classes = %d, %d, want 4, 3", res.Nodes, res.Classes)
	}
	if diff := cmp.Diff([]string{"Missing"}, res.Missing); diff != "" {
		t.Errorf("Missing mismatch (-want +got):\n%s", diff)
	}
	for _, path := range []string{
		"index.xml",
		"index.html",
		"Actor/index.xml",
		"Actor/SetActorHidden/index.xml",
		"Actor/SetActorHidden/SetActorHidden.png",
		"Pawn/AddInput/AddInput.png",
		"BP_Door_C/Open/index.xml",
		"static/transform.xslt",
	} {
		if _, err := os.Stat(filepath.Join(s.OutputDir, filepath.FromSlash(path))); err != nil {
			t.Errorf("missing %s: %v", path, err)
		}
	}

	want := []notify.State{notify.Pending, notify.InProgress, notify.Success}
	if diff := cmp.Diff(want, f.board.Transitions(1)); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}
	snap := f.board.List()[0]
	if snap.Text != notify.TextCompleted || !snap.Expired {
		t.Errorf("notification = %q expired=%v", snap.Text, snap.Expired)
	}

	info := task.Info()
	if info.Status != StatusDone || info.Result == nil || info.Started == nil {
		t.Errorf("Info() = %+v, want done with result", info)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.finished) != 1 || f.finished[0].ID != task.ID.String() {
		t.Errorf("OnFinish calls = %+v", f.finished)
	}
}

func TestProcessorNoNodes(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	s := f.settings("Quiet", "Empty", "Hidden")
	res := wait(t, f.submit(t, s))

	if res.Outcome != NoNodes {
		t.Fatalf("Outcome = %v, want no_nodes", res.Outcome)
	}
	if !errors.Is(res.Err, errors.ErrCodeNoNodes) {
		t.Errorf("Err = %v, want NO_NODES", res.Err)
	}
	if _, err := os.Stat(filepath.Join(s.OutputDir, "index.xml")); !os.IsNotExist(err) {
		t.Errorf("index.xml written for an empty task: %v", err)
	}
	snap := f.board.List()[0]
	if snap.Text != notify.TextNoNodes || snap.State != notify.Fail {
		t.Errorf("notification = %q %v, want %q fail", snap.Text, snap.State, notify.TextNoNodes)
	}
}

func TestProcessorInitFailed(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	s := f.settings("Broken", "Engine")
	s.BlueprintContextClass = "NoSuchClass"
	res := wait(t, f.submit(t, s))

	if res.Outcome != InitFailed {
		t.Fatalf("Outcome = %v, want init_failed", res.Outcome)
	}
	if res.Error == "" {
		t.Error("Error is empty")
	}
	if got := f.board.List()[0].Text; got != notify.TextFailed {
		t.Errorf("notification text = %q, want %q", got, notify.TextFailed)
	}
}

func TestFinishAfterBridgeStops(t *testing.T) {
	cat, err := catalog.Parse(strings.NewReader(manifest))
	if err != nil {
		t.Fatal(err)
	}
	br := bridge.New()
	br.Close()
	p := New(Options{Bridge: br, Catalog: cat})

	dir := t.TempDir()
	s := config.Settings{Title: "Docs", OutputDir: dir, NativeModules: []string{"Engine"}}
	cur := &current{
		task: &Task{Settings: s},
		gen:  docgen.New(cat, docgen.Options{Title: s.Title, OutputDir: dir}),
	}
	res := Result{Nodes: 3}
	outcome, err := p.finish(cur, &res)
	if outcome != Cancelled {
		t.Errorf("outcome = %v, want cancelled", outcome)
	}
	if !errors.Is(err, errors.ErrCodeUnavailable) {
		t.Errorf("err = %v, want UNAVAILABLE", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.xml")); !os.IsNotExist(err) {
		t.Errorf("documents written after the bridge stopped: %v", err)
	}
}

func TestProcessorXMLOnly(t *testing.T) {
	rendered := 0
	f := newFixture(t, render.RendererFunc(func(ctx context.Context, w render.Widget) (image.Image, error) {
		rendered++
		return solid(ctx, w)
	}))
	f.start(t)

	s := f.settings("XML", "Engine")
	s.SkipImages = true
	res := wait(t, f.submit(t, s))

	if res.Outcome != Success || res.Nodes != 3 {
		t.Fatalf("result = %v with %d nodes, want success with 3", res.Outcome, res.Nodes)
	}
	// The renderer only ever runs on the bridge goroutine.
	if n, ok := bridge.Call(f.br, func() int { return rendered }); !ok || n != 0 {
		t.Errorf("renderer called %d times with images disabled", n)
	}
}

func TestProcessorDeduplicatesObjects(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	res := wait(t, f.submit(t, f.settings("Twice", "Engine", "Engine")))
	if res.Outcome != Success || res.Nodes != 3 {
		t.Errorf("result = %v with %d nodes, want success with 3", res.Outcome, res.Nodes)
	}
}

func TestProcessorFIFO(t *testing.T) {
	f := newFixture(t, nil)

	var tasks []*Task
	for _, title := range []string{"First", "Second", "Third"} {
		tasks = append(tasks, f.submit(t, f.settings(title, "Engine")))
	}
	f.start(t)
	for _, task := range tasks {
		wait(t, task)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	var got []string
	for _, info := range f.finished {
		got = append(got, info.Title)
	}
	if diff := cmp.Diff([]string{"First", "Second", "Third"}, got); diff != "" {
		t.Errorf("completion order mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(tasks); i++ {
		prev, cur := tasks[i-1].Info(), tasks[i].Info()
		if cur.Started.Before(*prev.Finished) {
			t.Errorf("%s started before %s finished", cur.Title, prev.Title)
		}
	}
}

func TestProcessorStop(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f := newFixture(t, render.RendererFunc(func(ctx context.Context, w render.Widget) (image.Image, error) {
		once.Do(func() {
			close(entered)
			<-release
		})
		return solid(ctx, w)
	}))
	errc := f.start(t)

	running := f.submit(t, f.settings("Running", "Engine"))
	queued := f.submit(t, f.settings("Queued", "Engine"))

	<-entered
	f.proc.RequestStop()
	close(release)

	if res := wait(t, running); res.Outcome != Cancelled {
		t.Errorf("running task outcome = %v, want cancelled", res.Outcome)
	}
	res := wait(t, queued)
	if res.Outcome != Cancelled || !errors.Is(res.Err, errors.ErrCodeCancelled) {
		t.Errorf("queued task = %v %v, want cancelled", res.Outcome, res.Err)
	}
	if err := <-errc; err != nil {
		t.Errorf("Run() = %v, want nil after RequestStop", err)
	}
	if f.proc.State() != Stopped {
		t.Errorf("State() = %v, want stopped", f.proc.State())
	}
	if _, err := f.proc.Submit(f.settings("Late", "Engine")); !errors.Is(err, errors.ErrCodeUnavailable) {
		t.Errorf("Submit after stop = %v, want UNAVAILABLE", err)
	}
	for _, snap := range f.board.List() {
		if snap.State != notify.Fail || !snap.Expired {
			t.Errorf("notification %q = %v expired=%v, want expired failure", snap.Title, snap.State, snap.Expired)
		}
	}
}

func TestProcessorContextCancel(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- f.proc.Run(ctx) }()

	cancel()
	if err := <-errc; err != context.Canceled {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
}

func TestProcessorRunTwice(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)
	for f.proc.State() != Running {
		time.Sleep(time.Millisecond)
	}
	if err := f.proc.Run(context.Background()); !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("second Run() = %v, want INTERNAL", err)
	}
}

func TestSubmitValidates(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.proc.Submit(config.Settings{Title: "Nothing"}); err == nil {
		t.Error("Submit with no sources succeeded")
	}
	if len(f.proc.Tasks()) != 0 {
		t.Errorf("Tasks() = %d, want 0", len(f.proc.Tasks()))
	}
}

func TestTaskLookup(t *testing.T) {
	f := newFixture(t, nil)
	task := f.submit(t, f.settings("Lookup", "Engine"))

	got, ok := f.proc.Task(task.ID.String())
	if !ok || got != task {
		t.Errorf("Task(%q) = %v, %v", task.ID, got, ok)
	}
	if _, ok := f.proc.Task("not-a-uuid"); ok {
		t.Error("Task(not-a-uuid) found a task")
	}
	if info := f.proc.Tasks()[0]; info.Status != StatusQueued || info.Result != nil {
		t.Errorf("queued info = %+v", info)
	}
}

func TestSetCatalog(t *testing.T) {
	f := newFixture(t, nil)
	f.start(t)

	other, err := catalog.Parse(strings.NewReader("modules:\n  - name: Engine\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !f.proc.SetCatalog(other) {
		t.Fatal("SetCatalog() = false")
	}
	if res := wait(t, f.submit(t, f.settings("Swapped", "Engine"))); res.Outcome != NoNodes {
		t.Errorf("Outcome = %v, want no_nodes with the empty catalog", res.Outcome)
	}
}

func TestOutcomeText(t *testing.T) {
	for _, o := range []Outcome{Success, InitFailed, NoNodes, FinalizeFailed, Cancelled} {
		text, _ := o.MarshalText()
		var got Outcome
		if err := got.UnmarshalText(text); err != nil || got != o {
			t.Errorf("UnmarshalText(%q) = %v, %v, want %v", text, got, err, o)
		}
	}
	var o Outcome
	if err := o.UnmarshalText([]byte("exploded")); err == nil {
		t.Error("UnmarshalText(exploded) succeeded")
	}
}
