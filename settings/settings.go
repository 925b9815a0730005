/*
Package settings controls reading configuration from a YAML file and the
environment, assigning defaults and setting up the logger.

Precedence is defaults, then the YAML file, then environment variables named
SK__<SECTION>__<KEY> (e.g. SK__HLL__PRECISION=12).
*/
package settings

import (
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment overrides
const EnvPrefix = "SK"

type SKBloom struct {
	// Number of bits in the filter
	Size uint `yaml:"size" mapstructure:"size"`
	// Number of hash probes per item
	NumHashes uint `yaml:"num_hashes" mapstructure:"num_hashes"`
	// When both are set the filter is sized from these instead of size/num_hashes
	ExpectedItems uint    `yaml:"expected_items" mapstructure:"expected_items"`
	ErrorRate     float64 `yaml:"error_rate" mapstructure:"error_rate"`
}

type SKHLL struct {
	// 2^precision registers, in [4, 18]
	Precision uint8 `yaml:"precision" mapstructure:"precision"`
	// murmur3, xxhash or metro
	Hash string `yaml:"hash" mapstructure:"hash"`
}

type SKCompare struct {
	// JSON-lines access log to read addresses from
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
	// gjson path of the address in each record
	Field string `yaml:"field" mapstructure:"field"`
}

type SKRedis struct {
	// redis:// or rediss:// url, required for the redis backend
	URL string `yaml:"url" mapstructure:"url"`
}

type SKSettings struct {
	// memory or redis
	Backend string `yaml:"backend" mapstructure:"backend"`
	// zerolog level name
	LogLevel string `yaml:"log_level" mapstructure:"log_level"`
	// directory for a rotating log file, empty logs to stderr only
	LogPath string    `yaml:"log_path" mapstructure:"log_path"`
	Bloom   SKBloom   `yaml:"bloom" mapstructure:"bloom"`
	HLL     SKHLL     `yaml:"hll" mapstructure:"hll"`
	Compare SKCompare `yaml:"compare" mapstructure:"compare"`
	Redis   SKRedis   `yaml:"redis" mapstructure:"redis"`
}

var defaults = SKSettings{
	Backend:  "memory",
	LogLevel: "info",
	LogPath:  "",
	Bloom: SKBloom{
		Size:      1000,
		NumHashes: 3,
	},
	HLL: SKHLL{
		Precision: 14, // 2^14 registers, ~0.8% relative error
		Hash:      "murmur3",
	},
	Compare: SKCompare{
		LogFile: "access.log",
		Field:   "remote_addr",
	},
}

// Defaults returns a copy of the default settings
func Defaults() SKSettings {
	return defaults
}

// Load builds settings from the defaults, the YAML file at _path_ (skipped when
// empty) and the environment. Callers apply their own overrides, then Validate.
func Load(path string) (*SKSettings, error) {
	s := SKSettings{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("sketchkit: reading config: %w", err)
		}
		err = yaml.Unmarshal(data, &s)
		if err != nil {
			return nil, fmt.Errorf("sketchkit: parsing config %s: %w", path, err)
		}
	}
	// fields left unset by the file fall back to the defaults
	err := mergo.Merge(&s, defaults)
	if err != nil {
		return nil, err
	}
	err = applyEnv(&s, os.Environ())
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the values that can't be fixed up later
func (s *SKSettings) Validate() error {
	switch s.Backend {
	case "memory":
	case "redis":
		if s.Redis.URL == "" {
			return fmt.Errorf("sketchkit: redis backend needs redis.url")
		}
	default:
		return fmt.Errorf("sketchkit: unknown backend %q", s.Backend)
	}
	switch s.HLL.Hash {
	case "murmur3", "xxhash", "metro":
	default:
		return fmt.Errorf("sketchkit: unknown hll hash %q", s.HLL.Hash)
	}
	return nil
}

// applyEnv overlays SK__SECTION__KEY variables onto _s_
func applyEnv(s *SKSettings, environ []string) error {
	overrides := map[string]interface{}{}
	prefix := EnvPrefix + "__"
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		path := strings.Split(strings.ToLower(strings.TrimPrefix(key, prefix)), "__")
		node := overrides
		for _, part := range path[:len(path)-1] {
			child, ok := node[part].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[part] = child
			}
			node = child
		}
		node[path[len(path)-1]] = value
	}
	if len(overrides) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           s,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	err = decoder.Decode(overrides)
	if err != nil {
		return fmt.Errorf("sketchkit: environment overrides: %w", err)
	}
	return nil
}
