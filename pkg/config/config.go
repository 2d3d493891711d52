// Package config loads nodedocs configuration from TOML files.
//
// A config file holds the catalog location, a default [task] table and the
// settings of the supporting services: the image cache, the task history and
// the HTTP server. Every section is optional.
//
//	catalog = "catalog.yaml"
//
//	[task]
//	title = "Engine"
//	native_modules = ["Engine"]
//	pin_display = "both"
//
//	[cache]
//	backend = "redis"
//	url = "redis://localhost:6379/0"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/nodedocs/pkg/errors"
)

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "nodedocs.toml"

// Backend names shared by [cache] and [history].
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Service defaults.
const (
	DefaultCacheTTL        = 30 * 24 * time.Hour
	DefaultDPI             = 96
	DefaultMongoDatabase   = "nodedocs"
	DefaultRedisPrefix     = "nodedocs:"
	DefaultServerAddr      = ":8080"
	DefaultCollectInterval = 30 * time.Second
)

// Duration is a time.Duration that decodes from strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// File is the decoded config file.
type File struct {
	Catalog string   `toml:"catalog"`
	Task    Settings `toml:"task"`
	Render  Render   `toml:"render"`
	Cache   Cache    `toml:"cache"`
	History History  `toml:"history"`
	Server  Server   `toml:"server"`

	// Path is the file the config was loaded from, if any.
	Path string `toml:"-"`
}

// Render configures image rendering.
type Render struct {
	DPI float64 `toml:"dpi"`
}

// Cache configures the rendered image cache.
type Cache struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	URL     string   `toml:"url"`
	Prefix  string   `toml:"prefix"`
	TTL     Duration `toml:"ttl"`
}

// History configures where finished task records are kept.
type History struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Server configures the HTTP front end.
type Server struct {
	Addr string `toml:"addr"`
	// CollectInterval is how often the processor collects released nodes
	// while idle.
	CollectInterval Duration `toml:"collect_interval"`
}

// Default returns a config with every service default filled in.
func Default() *File {
	f := &File{}
	f.setDefaults()
	return f
}

// Load reads path. An empty path loads DefaultFileName from the working
// directory if it exists and returns defaults otherwise.
func Load(path string) (*File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	f := &File{}
	md, err := toml.DecodeFile(path, f)
	if err != nil {
		if os.IsNotExist(err) {
			if !explicit {
				return Default(), nil
			}
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	f.Path = path
	if f.Catalog != "" && !filepath.IsAbs(f.Catalog) {
		f.Catalog = filepath.Join(filepath.Dir(path), f.Catalog)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	f.setDefaults()
	return f, nil
}

func (f *File) setDefaults() {
	if f.Render.DPI == 0 {
		f.Render.DPI = DefaultDPI
	}
	if f.Cache.Backend == "" {
		f.Cache.Backend = BackendFile
	}
	if f.Cache.Prefix == "" {
		f.Cache.Prefix = DefaultRedisPrefix
	}
	if f.Cache.TTL.Duration == 0 {
		f.Cache.TTL.Duration = DefaultCacheTTL
	}
	if f.History.Backend == "" {
		f.History.Backend = BackendFile
	}
	if f.History.Database == "" {
		f.History.Database = DefaultMongoDatabase
	}
	if f.Server.Addr == "" {
		f.Server.Addr = DefaultServerAddr
	}
	if f.Server.CollectInterval.Duration == 0 {
		f.Server.CollectInterval.Duration = DefaultCollectInterval
	}
}

func (f *File) validate() error {
	switch f.Cache.Backend {
	case "", BackendFile, BackendNone:
	case BackendRedis:
		if err := errors.ValidateURL(f.Cache.URL, "redis", "rediss"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[cache] url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "[cache] backend %q (must be one of: file, redis, none)", f.Cache.Backend)
	}
	switch f.History.Backend {
	case "", BackendFile, BackendNone:
	case BackendMongo:
		if err := errors.ValidateURL(f.History.URI, "mongodb", "mongodb+srv"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[history] uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "[history] backend %q (must be one of: file, mongo, none)", f.History.Backend)
	}
	if f.Render.DPI < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "[render] dpi must be positive")
	}
	return nil
}
