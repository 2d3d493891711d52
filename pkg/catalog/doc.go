// Package catalog models the live object world that node documentation is
// extracted from.
//
// # Overview
//
// A [Catalog] holds native modules and their classes, content-path
// blueprints, the functions they declare and, per source object, the ordered
// list of node [Spawner]s the editor would offer for it. Spawning a node
// creates a [Node] inside a scratch [Graph]; nodes expose the same display
// accessors the documentation generator reads: list and full titles, tooltip,
// menu category, pins and per-pin hover text.
//
// # Ownership
//
// Every object lives in a [World]. The world is not safe for concurrent use:
// it is owned by exactly one goroutine (the privileged context in
// package bridge) and everything else refers to objects through [Weak]
// handles that must be re-resolved with [Weak.Get] at the point of use.
// Objects created during generation are transient: they survive
// [World.Collect] only while rooted or owned by a rooted outer.
//
// # Manifests
//
// Catalogs are described by a YAML manifest:
//
//	modules:
//	  - name: Engine
//	    classes:
//	      - name: KismetMathLibrary
//	        display_name: Kismet Math Library
//	        functions:
//	          - {name: Add_IntInt, access: public, static: true}
//	        actions:
//	          - spawner: function
//	            function: Add_IntInt
//	            title: "Add (integer)"
//	            category: "Math|Integer"
//	            pins:
//	              - {name: A, dir: in, type: int}
//	              - {name: ReturnValue, dir: out, type: int}
//
// Load a manifest with [Load] or [Parse], or build one in code with [Build].
package catalog
