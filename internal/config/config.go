// Package config loads polyenum's project configuration.
//
// Settings are layered, lowest first: built-in defaults, the config file,
// POLYENUM_* environment variables, and command-line flags. Per-file
// //polyenum:options directives sit above all of these and are applied by
// the generator itself.
package config

import (
	"go/token"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/broady/polyenum/polyenumgen"
	"github.com/broady/polyenum/polyenumgen/model"
	"github.com/broady/polyenum/polyenumgen/source"
)

// FileNames are the config file names searched for, in order.
var FileNames = []string{"polyenum.toml", "polyenum.yaml", "polyenum.yml"}

// Config is the resolved project configuration.
type Config struct {
	Suffix           string   `mapstructure:"suffix" validate:"required,endswith=.go"`
	Receiver         string   `mapstructure:"receiver" validate:"required,oneof=value pointer ptr"`
	PositionalPrefix string   `mapstructure:"positional_prefix" validate:"required,goident"`
	RuntimeImport    string   `mapstructure:"runtime_import" validate:"required"`
	Jobs             int      `mapstructure:"jobs" validate:"gte=1"`
	Header           []string `mapstructure:"header"`

	// Builder has no config key: a builder name only makes sense for one
	// union, so it comes from a flag or an options directive.
	Builder string `mapstructure:"-" validate:"omitempty,goident"`

	// File is the config file that was read, or "" if none was found.
	File string `mapstructure:"-"`
}

// Options controls where Load looks.
type Options struct {
	// Path is an explicit config file. It must exist.
	Path string
	// Dir is where the upward search starts. Default: the working directory.
	Dir string
}

// Overrides holds flag values. Empty strings and zero ints leave the
// loaded value alone. The struct tags describe the flags to kong.
type Overrides struct {
	Suffix           string `help:"Output file suffix (default _polyenum.go)."`
	Receiver         string `help:"Default dispatcher receiver: value or pointer."`
	PositionalPrefix string `help:"Prefix of synthesized positional field names (default F)."`
	Builder          string `help:"Name of the builder helper (default: the lower-cased union name)."`
	Jobs             int    `help:"Maximum inputs generated in parallel (default: number of CPUs)." short:"j"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	_ = validate.RegisterValidation("goident", func(fl validator.FieldLevel) bool {
		return token.IsIdentifier(fl.Field().String())
	})
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("suffix", polyenumgen.DefaultSuffix)
	v.SetDefault("receiver", model.ReceiverValue.String())
	v.SetDefault("positional_prefix", source.DefaultPositionalPrefix)
	v.SetDefault("runtime_import", source.DefaultRuntimeImport)
	v.SetDefault("jobs", runtime.NumCPU())
	v.SetDefault("header", []string{})
}

// Load resolves the configuration. A missing config file is not an error
// unless opts.Path names it.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix("POLYENUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	path := opts.Path
	if path == "" {
		dir := opts.Dir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return nil, errors.Wrap(err, "get working directory")
			}
			dir = wd
		}
		path = Find(dir)
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WithHint(
				errors.Wrapf(err, "read config %s", path),
				"config files are TOML or YAML; the extension selects the format")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	cfg.File = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Find walks up from dir looking for one of FileNames. The search stops
// at the first directory holding a go.mod, so a module never picks up a
// config from outside itself. It returns "" when nothing is found.
func Find(dir string) string {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range FileNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Apply layers flag values over c and validates the result.
func (c *Config) Apply(o Overrides) error {
	if o.Suffix != "" {
		c.Suffix = o.Suffix
	}
	if o.Receiver != "" {
		c.Receiver = o.Receiver
	}
	if o.PositionalPrefix != "" {
		c.PositionalPrefix = o.PositionalPrefix
	}
	if o.Builder != "" {
		c.Builder = o.Builder
	}
	if o.Jobs != 0 {
		c.Jobs = o.Jobs
	}
	return c.Validate()
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			err = errors.Newf("invalid %s %#v (%s)", configKey(fe.StructField()), fe.Value(), fe.Tag())
		}
		where := "config"
		if c.File != "" {
			where = c.File
		}
		return errors.Wrap(err, where)
	}
	return nil
}

// Generator returns the generator settings for c.
func (c *Config) Generator(log *zap.Logger) polyenumgen.Config {
	recv, _ := model.ParseReceiverKind(c.Receiver)
	return polyenumgen.Config{
		Suffix:           c.Suffix,
		Receiver:         recv,
		Builder:          c.Builder,
		PositionalPrefix: c.PositionalPrefix,
		RuntimeImport:    c.RuntimeImport,
		Header:           c.Header,
		Logger:           log,
	}
}

func configKey(field string) string {
	switch field {
	case "PositionalPrefix":
		return "positional_prefix"
	case "RuntimeImport":
		return "runtime_import"
	default:
		return strings.ToLower(field)
	}
}
