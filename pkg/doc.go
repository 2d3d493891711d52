// Package pkg provides the libraries behind nodedocs, a generator of
// browsable documentation for graph editor nodes.
//
// # Overview
//
// A documentation task names native modules and content paths. For every
// class they reach, nodedocs spawns each node the class's actions produce,
// renders an image of it and writes an XML document. The pkg directory is
// organized into four areas:
//
//  1. Object model: [catalog] (modules, classes, blueprints, spawners and
//     the object world) and [enumerate] (walking a task's sources).
//  2. Generation: [docgen] (per-node documents), [xmldoc] (the XML
//     writer), [render] (node images) and [assets] (stylesheet and loaders).
//  3. Execution: [bridge] (the goroutine that owns the object world),
//     [processor] (the task queue and worker) and [notify] (progress).
//  4. Infrastructure: [config], [errors], [cache], [history], [server],
//     [metrics] and [observability].
//
// # Architecture
//
// The typical data flow of one task:
//
//	config.Settings
//	       ↓
//	processor.Submit (queue, FIFO)
//	       ↓
//	enumerate (source objects) → catalog spawners (nodes)
//	       ↓                          ↓
//	render (image passes)       docgen (XML documents)
//	       ↓
//	docgen.Finalize (index, stylesheet, loaders)
//
// Everything that touches the object world runs on the bridge goroutine;
// the worker only renders and writes files.
//
// # Quick Start
//
//	cat, _ := catalog.Load("catalog.yaml")
//	br := bridge.New()
//	proc := processor.New(processor.Options{Bridge: br, Catalog: cat})
//	go br.Run(ctx)
//	go proc.Run(ctx)
//
//	task, _ := proc.Submit(config.Settings{NativeModules: []string{"Engine"}})
//	res, _ := task.Wait(ctx)
//
// [catalog]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/catalog
// [enumerate]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/enumerate
// [docgen]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/docgen
// [xmldoc]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/xmldoc
// [render]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/render
// [assets]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/assets
// [bridge]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/bridge
// [processor]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/processor
// [notify]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/notify
// [config]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/errors
// [cache]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/cache
// [history]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/history
// [server]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/server
// [metrics]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/metrics
// [observability]: https://pkg.go.dev/github.com/matzehuels/nodedocs/pkg/observability
package pkg
