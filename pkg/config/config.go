// Package config loads run configuration from an optional YAML file and
// SHELFMARK_-prefixed environment variables, in that order, on top of
// built-in defaults.
package config

import (
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const envPrefix = "SHELFMARK_"

type Config struct {
	// SourceDir holds the loose files to organize.
	SourceDir string `koanf:"source_dir" validate:"required"`
	// LibraryDir is the root of the organized tree.
	LibraryDir string `koanf:"library_dir" validate:"required"`

	// OrganizeBy is "author" or "genre".
	OrganizeBy      string `koanf:"organize_by" default:"author" validate:"oneof=author genre"`
	FilenamePattern string `koanf:"filename_pattern" default:"{author} - {title} ({year})"`
	MaxFilenameLen  int    `koanf:"max_filename_len" default:"180" validate:"min=20,max=255"`

	WorkerProcesses int `koanf:"worker_processes" default:"2" validate:"min=1,max=16"`

	DownloadCovers bool `koanf:"download_covers" default:"true"`
	// StripAccents and CleanCharacters normalize accepted metadata
	// before it is used for naming.
	StripAccents    bool `koanf:"strip_accents" default:"true"`
	CleanCharacters bool `koanf:"clean_characters" default:"true"`

	// Directory names under the library root for files that cannot be
	// filed normally, and for downloaded cover images.
	UnknownDir    string `koanf:"unknown_dir" default:"Unknown" validate:"required"`
	DuplicatesDir string `koanf:"duplicates_dir" default:"Duplicates" validate:"required"`
	CoversDir     string `koanf:"covers_dir" default:"covers" validate:"required"`

	// Simulate enables the offline fallback table when providers fail.
	Simulate  bool   `koanf:"simulate" default:"true"`
	ISBNdbKey string `koanf:"isbndb_key"`

	// CachePath is the lookup cache database. Empty disables caching.
	CachePath string `koanf:"cache_path" default:"shelfmark_cache.db"`
	// AuditLogPath is the CSV record of every filing action.
	AuditLogPath string `koanf:"audit_log_path" default:"shelfmark_log.csv"`

	// KnownAuthors extends the built-in list used by the filename
	// parser.
	KnownAuthors []string `koanf:"known_authors"`
}

// Load reads configuration. A missing file at path is only an error
// when the path was given explicitly.
func Load(path string, explicit bool) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, errors.Wrapf(err, "failed to load config file %s", path)
			}
		case explicit:
			return nil, errors.Wrapf(statErr, "config file %s", path)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
