// Package config loads gqlrecover settings from defaults, an optional
// YAML file and GQLRECOVER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config is given. It may be absent.
const DefaultPath = "gqlrecover.yaml"

const envPrefix = "GQLRECOVER_"

type Config struct {
	BaseURL           string        `yaml:"base_url" validate:"required,url"`
	ChunkID           string        `yaml:"chunk_id" validate:"required"`
	BuildIDMarker     string        `yaml:"build_id_marker" validate:"required"`
	UserAgent         string        `yaml:"user_agent"`
	RequestsPerSecond float64       `yaml:"requests_per_second" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"gt=0"`
	Cache             CacheConfig   `yaml:"cache"`
	Output            OutputConfig  `yaml:"output"`
	Extract           ExtractConfig `yaml:"extract"`
	Publish           PublishConfig `yaml:"publish"`
}

type CacheConfig struct {
	// Entries bounds the in-process response memo.
	Entries int `yaml:"entries" validate:"gte=0"`
	// Dir enables the on-disk response cache when set.
	Dir string        `yaml:"dir"`
	TTL time.Duration `yaml:"ttl" validate:"gte=0"`
}

type OutputConfig struct {
	Dir         string `yaml:"dir" validate:"required"`
	QueriesFile string `yaml:"queries_file" validate:"required,excludesall=/\\"`
	SchemaFile  string `yaml:"schema_file" validate:"required,excludesall=/\\"`
}

type ExtractConfig struct {
	AllKinds        bool   `yaml:"all_kinds"`
	ScalarNames     bool   `yaml:"scalar_names"`
	CollisionPolicy string `yaml:"collision_policy" validate:"oneof=first-wins last-wins"`
}

type PublishConfig struct {
	Endpoint  string `yaml:"endpoint" validate:"omitempty,hostname_port"`
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket" validate:"required_with=Endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func Default() Config {
	return Config{
		BaseURL:       "https://voidpet.com",
		ChunkID:       "5308",
		BuildIDMarker: "buildId",
		UserAgent:     "gqlrecover/1",
		Timeout:       30 * time.Second,
		Cache: CacheConfig{
			Entries: 64,
			TTL:     6 * time.Hour,
		},
		Output: OutputConfig{
			Dir:         ".",
			QueriesFile: "queries.graphql",
			SchemaFile:  "schema.graphql",
		},
		Extract: ExtractConfig{
			CollisionPolicy: "first-wins",
		},
		Publish: PublishConfig{
			Region: "us-east-1",
			UseSSL: true,
		},
	}
}

// DefaultYAML is the file written by `gqlrecover init`.
const DefaultYAML = `base_url: https://voidpet.com
chunk_id: "5308"
build_id_marker: buildId
user_agent: gqlrecover/1
requests_per_second: 0
timeout: 30s
cache:
  entries: 64
  dir: ""
  ttl: 6h
output:
  dir: .
  queries_file: queries.graphql
  schema_file: schema.graphql
extract:
  all_kinds: false
  scalar_names: false
  collision_policy: first-wins
publish:
  endpoint: ""
  region: us-east-1
  bucket: ""
  use_ssl: true
`

// Load builds the configuration. An empty path reads DefaultPath if it
// exists; a non-empty path must exist. A .env file in the working
// directory is loaded into the environment first without overriding
// variables that are already set.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := readFile(path, explicit, &cfg); err != nil {
		return Config{}, err
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	if err := ApplyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readFile(path string, required bool, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with GQLRECOVER_* variables found by lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(envPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
	strs := map[string]*string{
		"BASE_URL":         &cfg.BaseURL,
		"CHUNK_ID":         &cfg.ChunkID,
		"BUILD_ID_MARKER":  &cfg.BuildIDMarker,
		"USER_AGENT":       &cfg.UserAgent,
		"CACHE_DIR":        &cfg.Cache.Dir,
		"OUTPUT_DIR":       &cfg.Output.Dir,
		"COLLISION_POLICY": &cfg.Extract.CollisionPolicy,
		"S3_ENDPOINT":      &cfg.Publish.Endpoint,
		"S3_REGION":        &cfg.Publish.Region,
		"S3_BUCKET":        &cfg.Publish.Bucket,
		"S3_ACCESS_KEY":    &cfg.Publish.AccessKey,
		"S3_SECRET_KEY":    &cfg.Publish.SecretKey,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}
	durations := map[string]*time.Duration{
		"TIMEOUT":   &cfg.Timeout,
		"CACHE_TTL": &cfg.Cache.TTL,
	}
	for name, dst := range durations {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}
	if v, ok := get("REQUESTS_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sREQUESTS_PER_SECOND: %w", envPrefix, err)
		}
		cfg.RequestsPerSecond = f
	}
	if v, ok := get("CACHE_ENTRIES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCACHE_ENTRIES: %w", envPrefix, err)
		}
		cfg.Cache.Entries = n
	}
	bools := map[string]*bool{
		"ALL_KINDS":    &cfg.Extract.AllKinds,
		"SCALAR_NAMES": &cfg.Extract.ScalarNames,
		"S3_USE_SSL":   &cfg.Publish.UseSSL,
	}
	for name, dst := range bools {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = b
		}
	}
	return nil
}

var validate = validator.New()

// Validate checks the struct tags and reports every failing field.
func Validate(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// PublishEnabled reports whether an S3 destination is configured.
func (c Config) PublishEnabled() bool {
	return c.Publish.Endpoint != "" && c.Publish.Bucket != ""
}
