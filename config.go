package dictcol

import (
	"flag"
	"os"

	"github.com/hexbee-net/errors"
	"gopkg.in/yaml.v2"
)

const errInvalidConfig = errors.Error("invalid configuration")

// Config controls how a column chunk is split into arrays.
type Config struct {
	ChunkSize int `yaml:"chunk_size"`
	Limit     int `yaml:"limit"`
	KeyWidth  int `yaml:"key_width"`
}

// DefaultConfig returns the configuration with every flag default applied.
func DefaultConfig() Config {
	var cfg Config
	cfg.RegisterFlags(flag.NewFlagSet("", flag.ContinueOnError))

	return cfg
}

// RegisterFlags registers the configuration flags on f.
func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	cfg.RegisterFlagsWithPrefix("", f)
}

// RegisterFlagsWithPrefix registers the configuration flags on f, each name prefixed with prefix.
func (cfg *Config) RegisterFlagsWithPrefix(prefix string, f *flag.FlagSet) {
	f.IntVar(&cfg.ChunkSize, prefix+"chunk-size", 0, "Number of rows of each decoded array. 0 to decode the whole column chunk into a single array.")
	f.IntVar(&cfg.Limit, prefix+"limit", 0, "Maximum number of rows read from the column chunk. 0 to disable.")
	f.IntVar(&cfg.KeyWidth, prefix+"key-width", 32, "Width in bits of the dictionary keys (8, 16, 32 or 64). 0 to accept any key type.")
}

func (cfg *Config) Validate() error {
	if cfg.ChunkSize < 0 {
		return errors.WithFields(
			errors.Wrap(errInvalidConfig, "chunk_size must not be negative"),
			errors.Fields{"chunk_size": cfg.ChunkSize})
	}

	if cfg.Limit < 0 {
		return errors.WithFields(
			errors.Wrap(errInvalidConfig, "limit must not be negative"),
			errors.Fields{"limit": cfg.Limit})
	}

	switch cfg.KeyWidth {
	case 0, 8, 16, 32, 64:
	default:
		return errors.WithFields(
			errors.Wrap(errInvalidConfig, "key_width must be one of 8, 16, 32 or 64"),
			errors.Fields{"key_width": cfg.KeyWidth})
	}

	return nil
}

// LoadConfig reads a YAML configuration file. Missing fields keep their default value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read configuration file")
	}

	if err := yaml.UnmarshalStrict(buf, &cfg); err != nil {
		return cfg, errors.WithFields(
			errors.Wrap(err, "failed to parse configuration file"),
			errors.Fields{"path": path})
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
