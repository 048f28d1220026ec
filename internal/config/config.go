package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"dirdoc/internal/validate"
	"dirdoc/internal/walker"
)

const (
	// DefaultFile is looked up in the working directory when no config path
	// is given.
	DefaultFile = "dirdoc.config.json"
	// DefaultDocument is where the tree document is written by default.
	DefaultDocument = "dirdoc.json"
)

type Config struct {
	Scan       Scan       `json:"scan" yaml:"scan"`
	Validation Validation `json:"validation" yaml:"validation"`
}

type Scan struct {
	Root    string  `json:"root" yaml:"root" validate:"required"`
	Depth   Depth   `json:"depth" yaml:"depth"`
	Exclude Exclude `json:"exclude" yaml:"exclude"`
	Include Include `json:"include" yaml:"include"`
}

type Depth struct {
	Default     int            `json:"default" yaml:"default" validate:"gte=0"`
	Directories map[string]int `json:"directories" yaml:"directories" validate:"dive,keys,required,endkeys,gte=0"`
}

type Exclude struct {
	Patterns []string `json:"patterns" yaml:"patterns" validate:"dive,required"`
	Files    []string `json:"files" yaml:"files" validate:"dive,required"`
}

type Include struct {
	RootFiles        bool `json:"root_files" yaml:"root_files"`
	EmptyDirectories bool `json:"empty_directories" yaml:"empty_directories"`
}

type Validation struct {
	RequireDescription   bool `json:"require_description" yaml:"require_description"`
	MinDescriptionLength int  `json:"min_description_length" yaml:"min_description_length" validate:"gte=0"`
}

func DefaultConfig() *Config {
	return &Config{
		Scan: Scan{
			Root: ".",
			Depth: Depth{
				Default:     1,
				Directories: map[string]int{},
			},
			Exclude: Exclude{
				Patterns: []string{
					"vendor/*",
					"node_modules/*",
					".git/*",
				},
				Files: []string{
					"*.log",
					"*.cache",
				},
			},
			Include: Include{
				RootFiles:        true,
				EmptyDirectories: false,
			},
		},
		Validation: Validation{
			RequireDescription:   true,
			MinDescriptionLength: 10,
		},
	}
}

// LoadConfig reads path over the defaults. Keys present in the file replace
// the default value, except depth overrides, which are added to the default
// map. A missing file yields the defaults unchanged.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}

	// An explicit null clears the map; keep lookups safe.
	if cfg.Scan.Depth.Directories == nil {
		cfg.Scan.Depth.Directories = map[string]int{}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks field constraints and glob syntax. Every problem is
// reported, not just the first.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := newValidator().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return errors.Wrap(err, "validate config")
		}
		for _, fe := range fieldErrs {
			result = multierror.Append(result, errors.Errorf("%s: failed %q constraint", fe.Namespace(), constraint(fe)))
		}
	}

	for _, pattern := range c.Scan.Exclude.Patterns {
		if !doublestar.ValidatePattern(pattern) {
			result = multierror.Append(result, errors.Errorf("scan.exclude.patterns: bad pattern %q", pattern))
		}
	}
	for _, pattern := range c.Scan.Exclude.Files {
		if !doublestar.ValidatePattern(pattern) {
			result = multierror.Append(result, errors.Errorf("scan.exclude.files: bad pattern %q", pattern))
		}
	}

	return result.ErrorOrNil()
}

// ScanOptions converts the scan section for the walker.
func (c *Config) ScanOptions() walker.Options {
	return walker.Options{
		DefaultDepth:            c.Scan.Depth.Default,
		DirectoryDepths:         c.Scan.Depth.Directories,
		ExcludePatterns:         c.Scan.Exclude.Patterns,
		ExcludeFiles:            c.Scan.Exclude.Files,
		IncludeRootFiles:        c.Scan.Include.RootFiles,
		IncludeEmptyDirectories: c.Scan.Include.EmptyDirectories,
	}
}

func (c *Config) ValidationOptions() validate.Options {
	return validate.Options{
		RequireDescription:   c.Validation.RequireDescription,
		MinDescriptionLength: c.Validation.MinDescriptionLength,
	}
}

// newValidator reports fields by their document keys.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func constraint(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}
