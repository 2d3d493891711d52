// Package docgen builds the documentation tree for spawned nodes.
//
// # Contexts
//
// A [Generator] is split across the two goroutines of a task. Methods that
// touch live catalog objects ([Generator.Init], [Generator.InitializeForSpawner],
// [Generator.GenerateNodeImage], [Generator.GenerateNodeDocs],
// [Generator.ReleaseNode] and [Generator.CleanUp]) must run on the goroutine
// that owns the catalog's World, normally inside a bridge call. The class and
// index documents are only mutated by those methods. [Generator.PrepareOutput]
// and [Generator.Finalize] run on the worker before and after that phase.
//
// # Output layout
//
//	index.xml                      index document
//	<class-id>/index.xml           one per owning class
//	<class-id>/<node-id>/index.xml one per documented node
//	<class-id>/<node-id>/*.png     node images
//	static/                        transform.xslt and friends
//
// Every document carries an xml-stylesheet instruction on its second line
// pointing at static/transform.xslt relative to its own directory.
package docgen
