package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/nodedocs/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultTitle names the documentation set when none is given.
	DefaultTitle = "Docs"

	// DefaultOutputRoot is the directory under which a task without an
	// explicit output directory writes <title>/.
	DefaultOutputRoot = "nodedocs-out"
)

// PinDisplay selects which image passes run for nodes with advanced pins.
type PinDisplay string

const (
	// PinDisplayNone renders no image pass.
	PinDisplayNone PinDisplay = "none"
	// PinDisplayHidden renders the node with advanced pins collapsed.
	PinDisplayHidden PinDisplay = "hidden"
	// PinDisplayAdvanced renders the node with advanced pins expanded.
	PinDisplayAdvanced PinDisplay = "advanced"
	// PinDisplayBoth renders both passes.
	PinDisplayBoth PinDisplay = "both"
)

// DefaultPinDisplay is the pin display mode when none is given.
const DefaultPinDisplay = PinDisplayHidden

// ValidPinDisplays is the set of supported pin display modes.
var ValidPinDisplays = map[PinDisplay]bool{
	PinDisplayNone:     true,
	PinDisplayHidden:   true,
	PinDisplayAdvanced: true,
	PinDisplayBoth:     true,
}

// Simple reports whether the collapsed pass runs.
func (p PinDisplay) Simple() bool { return p == PinDisplayHidden || p == PinDisplayBoth }

// Advanced reports whether the expanded pass runs.
func (p PinDisplay) Advanced() bool { return p == PinDisplayAdvanced || p == PinDisplayBoth }

// =============================================================================
// Settings - One Documentation Task
// =============================================================================

// Settings describes one documentation task.
// This struct supports JSON serialization for API requests and TOML for the
// [task] table of the config file.
type Settings struct {
	Title                 string     `json:"title" toml:"title"`
	OutputDir             string     `json:"output_dir,omitempty" toml:"output_dir"`
	NativeModules         []string   `json:"native_modules,omitempty" toml:"native_modules"`
	ContentPaths          []string   `json:"content_paths,omitempty" toml:"content_paths"`
	ExcludedClasses       []string   `json:"excluded_classes,omitempty" toml:"excluded_classes"`
	BlueprintContextClass string     `json:"blueprint_context_class,omitempty" toml:"blueprint_context_class"`
	PinDisplay            PinDisplay `json:"pin_display,omitempty" toml:"pin_display"`
	SkipImages            bool       `json:"skip_images,omitempty" toml:"skip_images"` // default false = render images
	SkipXML               bool       `json:"skip_xml,omitempty" toml:"skip_xml"`       // default false = write documents
	KeepOutput            bool       `json:"keep_output,omitempty" toml:"keep_output"` // default false = clean output dir first

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// GenerateImages reports whether any image pass runs.
func (s *Settings) GenerateImages() bool {
	return !s.SkipImages && s.PinDisplay != PinDisplayNone
}

// GenerateXML reports whether documents are written.
func (s *Settings) GenerateXML() bool { return !s.SkipXML }

// ValidateAndSetDefaults checks the settings and fills in defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (s *Settings) ValidateAndSetDefaults() error {
	if s.validated {
		return nil
	}

	if s.Title == "" {
		s.Title = DefaultTitle
	}
	if err := errors.ValidateTitle(s.Title); err != nil {
		return err
	}
	if s.OutputDir == "" {
		s.OutputDir = OutputDirFor(DefaultOutputRoot, s.Title)
	}
	if s.PinDisplay == "" {
		s.PinDisplay = DefaultPinDisplay
	}
	s.PinDisplay = PinDisplay(strings.ToLower(string(s.PinDisplay)))
	if !ValidPinDisplays[s.PinDisplay] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid pin_display: %q (must be one of: none, hidden, advanced, both)", s.PinDisplay)
	}

	if len(s.NativeModules) == 0 && len(s.ContentPaths) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one native module or content path is required")
	}
	for _, m := range s.NativeModules {
		if err := errors.ValidateIdentifier("module", m); err != nil {
			return err
		}
	}
	for _, p := range s.ContentPaths {
		if err := errors.ValidateContentPath(p); err != nil {
			return err
		}
	}
	for _, c := range s.ExcludedClasses {
		if err := errors.ValidateIdentifier("class", c); err != nil {
			return err
		}
	}
	if s.BlueprintContextClass != "" {
		if err := errors.ValidateIdentifier("class", s.BlueprintContextClass); err != nil {
			return err
		}
	}
	if s.SkipImages && s.SkipXML {
		return errors.New(errors.ErrCodeInvalidInput, "skip_images and skip_xml together leave nothing to generate")
	}

	s.validated = true
	return nil
}

// Clone returns a deep copy that must be validated again.
func (s Settings) Clone() Settings {
	s.NativeModules = slices.Clone(s.NativeModules)
	s.ContentPaths = slices.Clone(s.ContentPaths)
	s.ExcludedClasses = slices.Clone(s.ExcludedClasses)
	s.validated = false
	return s
}

// String summarises the settings for log lines.
func (s *Settings) String() string {
	return fmt.Sprintf("%s (%d modules, %d content paths)", s.Title, len(s.NativeModules), len(s.ContentPaths))
}

// OutputDirFor returns the directory under root that a task titled title
// writes to when no output directory is given.
func OutputDirFor(root, title string) string {
	return filepath.Join(root, safeDirName(title))
}

// safeDirName replaces path separators and spaces so a title can name a
// directory. The result is never empty or made only of dots.
func safeDirName(title string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", " ", "_", "..", "_")
	name := r.Replace(strings.TrimSpace(title))
	if strings.Trim(name, ".") == "" {
		return "_"
	}
	return name
}
