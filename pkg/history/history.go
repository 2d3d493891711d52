// Package history records finished documentation runs.
//
// Every task that reaches a terminal outcome becomes a [Record]. Records are
// kept by a [Store]:
//   - [FileStore]: one JSON file per run, for the CLI
//   - [MongoStore]: a MongoDB collection, for servers sharing a history
//
// Usage:
//
//	store, err := history.NewFileStore("")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	store.Add(ctx, history.FromTask(task.Info()))
//	runs, err := store.List(ctx, 20)
package history

import (
	"context"
	"time"

	"github.com/matzehuels/nodedocs/pkg/processor"
)

// DefaultLimit is the number of runs List returns when limit is not positive.
const DefaultLimit = 50

// Record is one finished run.
type Record struct {
	ID        string        `json:"id" bson:"_id"`
	Title     string        `json:"title" bson:"title"`
	Outcome   string        `json:"outcome" bson:"outcome"`
	Nodes     int           `json:"nodes" bson:"nodes"`
	Classes   int           `json:"classes" bson:"classes"`
	OutputDir string        `json:"output_dir" bson:"output_dir"`
	Modules   []string      `json:"native_modules,omitempty" bson:"native_modules,omitempty"`
	Paths     []string      `json:"content_paths,omitempty" bson:"content_paths,omitempty"`
	Missing   []string      `json:"missing_modules,omitempty" bson:"missing_modules,omitempty"`
	Error     string        `json:"error,omitempty" bson:"error,omitempty"`
	Submitted time.Time     `json:"submitted" bson:"submitted"`
	Finished  time.Time     `json:"finished" bson:"finished"`
	Duration  time.Duration `json:"duration" bson:"duration"`
}

// Succeeded reports whether the run produced documentation.
func (r Record) Succeeded() bool { return r.Outcome == processor.Success.String() }

// FromTask builds a record from a finished task. Tasks without a result
// produce a record with an empty outcome.
func FromTask(info processor.Info) Record {
	r := Record{
		ID:        info.ID,
		Title:     info.Title,
		OutputDir: info.Settings.OutputDir,
		Modules:   info.Settings.NativeModules,
		Paths:     info.Settings.ContentPaths,
		Submitted: info.Submitted,
	}
	if info.Finished != nil {
		r.Finished = *info.Finished
	}
	if res := info.Result; res != nil {
		r.Outcome = res.Outcome.String()
		r.Nodes = res.Nodes
		r.Classes = res.Classes
		r.Missing = res.Missing
		r.Error = res.Error
		r.Duration = res.Duration
		if res.OutputDir != "" {
			r.OutputDir = res.OutputDir
		}
	}
	return r
}

// Store persists run records.
type Store interface {
	// Add stores a record, replacing any record with the same ID.
	Add(ctx context.Context, r Record) error
	// List returns up to limit records, most recently finished first.
	List(ctx context.Context, limit int) ([]Record, error)
	// Close releases the backend.
	Close() error
}
