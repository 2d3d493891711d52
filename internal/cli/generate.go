package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/nodedocs/pkg/catalog"
	"github.com/matzehuels/nodedocs/pkg/config"
	"github.com/matzehuels/nodedocs/pkg/errors"
	"github.com/matzehuels/nodedocs/pkg/notify"
	"github.com/matzehuels/nodedocs/pkg/processor"
)

// watchDebounce groups the burst of events an editor save produces.
const watchDebounce = 300 * time.Millisecond

type generateFlags struct {
	catalog      string
	title        string
	output       string
	modules      []string
	paths        []string
	exclude      []string
	contextClass string
	pins         string
	noImages     bool
	noXML        bool
	keep         bool
	noCache      bool
	noHistory    bool
	tui          bool
	watch        bool
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate node documentation for modules and content paths",
		Long: `Generate spawns every documentable node reachable from the given native
modules and content paths, renders an image of each and writes the XML
documentation tree.

Flags override the [task] section of the config file.`,
		Example: `  nodedocs generate --catalog catalog.yaml -m Engine -m Gameplay
  nodedocs generate -p /Game/Props --title "Props" --pins both
  nodedocs generate --watch --tui`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			settings, err := f.settings(cmd, cfg.Task)
			if err != nil {
				return err
			}
			if f.catalog == "" {
				f.catalog = cfg.Catalog
			}
			return c.runGenerate(cmd.Context(), cfg, settings, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.catalog, "catalog", "", "catalog manifest (YAML)")
	flags.StringVarP(&f.title, "title", "t", "", "documentation title (default \""+config.DefaultTitle+"\")")
	flags.StringVarP(&f.output, "output", "o", "", "output directory (default "+config.DefaultOutputRoot+"/<title>)")
	flags.StringArrayVarP(&f.modules, "module", "m", nil, "native module to document (repeatable)")
	flags.StringArrayVarP(&f.paths, "path", "p", nil, "content path to document (repeatable)")
	flags.StringArrayVar(&f.exclude, "exclude", nil, "class to leave out (repeatable)")
	flags.StringVar(&f.contextClass, "context-class", "", "parent class of the scratch blueprint")
	flags.StringVar(&f.pins, "pins", "", "advanced pin images: none, hidden, advanced, both (default \"hidden\")")
	flags.BoolVar(&f.noImages, "no-images", false, "skip node images")
	flags.BoolVar(&f.noXML, "no-xml", false, "skip XML documents")
	flags.BoolVar(&f.keep, "keep", false, "keep existing files in the output directory")
	flags.BoolVar(&f.noCache, "no-cache", false, "render every image even if cached")
	flags.BoolVar(&f.noHistory, "no-history", false, "do not record the run")
	flags.BoolVar(&f.tui, "tui", false, "show the task board")
	flags.BoolVarP(&f.watch, "watch", "w", false, "regenerate whenever the catalog manifest changes")

	cmd.RegisterFlagCompletionFunc("module", c.completeModules(&f.catalog))
	cmd.RegisterFlagCompletionFunc("pins", completePinDisplays)
	return cmd
}

// settings merges changed flags over the config's task defaults.
func (f *generateFlags) settings(cmd *cobra.Command, base config.Settings) (config.Settings, error) {
	s := base.Clone()
	changed := cmd.Flags().Changed
	if changed("title") {
		s.Title = f.title
		if !changed("output") {
			s.OutputDir = ""
		}
	}
	if changed("output") {
		s.OutputDir = f.output
	}
	if changed("module") {
		s.NativeModules = f.modules
	}
	if changed("path") {
		s.ContentPaths = f.paths
	}
	if changed("exclude") {
		s.ExcludedClasses = f.exclude
	}
	if changed("context-class") {
		s.BlueprintContextClass = f.contextClass
	}
	if changed("pins") {
		s.PinDisplay = config.PinDisplay(f.pins)
	}
	if changed("no-images") {
		s.SkipImages = f.noImages
	}
	if changed("no-xml") {
		s.SkipXML = f.noXML
	}
	if changed("keep") {
		s.KeepOutput = f.keep
	}
	if err := s.ValidateAndSetDefaults(); err != nil {
		return s, err
	}
	return s, nil
}

func (c *CLI) runGenerate(ctx context.Context, cfg *config.File, s config.Settings, f generateFlags) error {
	var spin *Spinner
	opts := runtimeOptions{catalogPath: f.catalog, noCache: f.noCache, noHistory: f.noHistory}
	switch {
	case f.tui:
		if !c.Verbose() {
			c.SetLogLevel(log.ErrorLevel)
		}
	case c.Verbose():
		opts.sink = notify.NewLogSink(c.Logger)
	default:
		spin = newSpinnerWithContext(ctx, "Starting")
		opts.sink = spin
	}

	rt, err := c.newRuntime(ctx, cfg, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rt.bridge.Run(gctx) })
	g.Go(func() error {
		defer rt.bridge.Close()
		return rt.proc.Run(gctx)
	})
	if f.tui {
		// Quitting the board ends a watch session.
		g.Go(func() error {
			err := runBoard(gctx, rt.board, !f.watch)
			if f.watch {
				cancel()
			}
			return err
		})
	}

	// The board owns the terminal, so reports wait until it exits.
	gen := &generation{cli: c, rt: rt, settings: s, spin: spin, quiet: f.tui}
	res, runErr := gen.once(gctx)
	if f.watch && gctx.Err() == nil {
		// A failed first run still leaves the catalog worth watching.
		runErr = gen.watch(gctx, f.catalog)
	}

	rt.proc.RequestStop()
	if err := g.Wait(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}
	if f.tui && !f.watch {
		return c.report(s, res)
	}
	return nil
}

// generation runs one settings value against a runtime, repeatedly in
// watch mode.
type generation struct {
	cli      *CLI
	rt       *runtime
	settings config.Settings
	spin     *Spinner
	quiet    bool
}

// once submits the task and waits for it. Outside quiet mode the result is
// reported as it arrives.
func (g *generation) once(ctx context.Context) (processor.Result, error) {
	task, err := g.rt.proc.Submit(g.settings)
	if err != nil {
		return processor.Result{}, err
	}
	if g.spin != nil {
		g.spin.Start()
	}
	res, err := task.Wait(ctx)
	if g.spin != nil {
		g.spin.Stop()
	}
	if err != nil {
		return res, err
	}
	if g.quiet {
		return res, nil
	}
	return res, g.cli.report(g.settings, res)
}

// watch reloads the catalog and regenerates on every change until ctx is
// done.
func (g *generation) watch(ctx context.Context, path string) error {
	c := g.cli
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch catalog: %w", err)
	}
	defer w.Close()

	// Editors replace files on save, so watch the directory.
	dir, name := filepath.Split(filepath.Clean(path))
	if dir == "" {
		dir = "."
	}
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if !g.quiet {
		c.printInfo("Watching %s", StyleValue.Render(path))
	}

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Errors:
			c.Logger.Warn("watch error", "err", err)
		case ev := <-w.Events:
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			debounce = time.After(watchDebounce)
		case <-debounce:
			debounce = nil
			cat, err := catalog.Load(path)
			if err != nil {
				c.Logger.Error("reload catalog", "path", path, "err", err)
				continue
			}
			if !g.rt.proc.SetCatalog(cat) {
				return errors.New(errors.ErrCodeUnavailable, "processor stopped")
			}
			c.Logger.Info("catalog changed, regenerating", "path", path)
			if _, err := g.once(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				c.Logger.Debug("generation failed", "err", err)
			}
		}
	}
}

// report prints a task result and turns failed outcomes into errors.
func (c *CLI) report(s config.Settings, res processor.Result) error {
	for _, m := range res.Missing {
		c.printWarning("Native module %s not found", m)
	}
	switch res.Outcome {
	case processor.Success:
		c.printSuccess("Documented %s nodes in %s classes", StyleNumber.Render(fmt.Sprint(res.Nodes)), StyleNumber.Render(fmt.Sprint(res.Classes)))
		c.printResult(res)
		if s.GenerateXML() {
			c.printFile(filepath.Join(res.OutputDir, "index.html"))
		}
		return nil
	case processor.Cancelled:
		if errors.Is(res.Err, errors.ErrCodeCancelled) {
			return context.Canceled
		}
		return res.Err
	default:
		c.printError("%s", errors.UserMessage(res.Err))
		return res.Err
	}
}

