// Package config loads the muninboard TOML configuration.
//
// Loading happens in three steps: defaults, the TOML file, and MUNINBOARD_*
// environment overrides. The result is validated before it is returned.
//
//	[server]
//	addr = ":8080"
//
//	[directory]
//	backend = "elasticsearch"
//	timeout = "10s"
//
//	[directory.elasticsearch]
//	url = "http://localhost:9200"
//	index = "munin-node"
//
//	[[hosts]]
//	address = "db1.example.com"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/muninboard/pkg/errors"
)

// DefaultPath is the configuration file read when none is given.
const DefaultPath = "muninboard.toml"

// Directory backends.
const (
	BackendElasticsearch = "elasticsearch"
	BackendMongo         = "mongo"
	BackendFile          = "file"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Duration is a time.Duration read from strings such as "5m".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Directory DirectoryConfig `toml:"directory"`
	Cache     CacheConfig     `toml:"cache"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Log       LogConfig       `toml:"log"`
	Indexer   IndexerConfig   `toml:"indexer"`
	Hosts     []HostConfig    `toml:"hosts" validate:"dive"`
}

type ServerConfig struct {
	Addr            string   `toml:"addr" validate:"required"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type DirectoryConfig struct {
	Backend       string              `toml:"backend" validate:"oneof=elasticsearch mongo file"`
	Timeout       Duration            `toml:"timeout"`
	MaxNodes      int                 `toml:"max_nodes" validate:"gte=0"`
	Elasticsearch ElasticsearchConfig `toml:"elasticsearch"`
	Mongo         MongoConfig         `toml:"mongo"`
	File          FileConfig          `toml:"file"`
}

type ElasticsearchConfig struct {
	URL      string `toml:"url" validate:"omitempty,url"`
	Index    string `toml:"index"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	APIKey   string `toml:"api_key"`
}

type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

type FileConfig struct {
	Path string `toml:"path"`
}

type CacheConfig struct {
	Backend string      `toml:"backend" validate:"oneof=none file redis"`
	TTL     Duration    `toml:"ttl"`
	Dir     string      `toml:"dir"`
	Redis   RedisConfig `toml:"redis"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	DB       int    `toml:"db" validate:"gte=0"`
	Prefix   string `toml:"prefix"`
}

type DashboardConfig struct {
	Prefix           string `toml:"prefix"`
	DefaultTimespan  string `toml:"default_timespan"`
	DefaultLineWidth int    `toml:"default_linewidth" validate:"gte=1"`
	LinkBase         string `toml:"link_base"`
	Refresh          string `toml:"refresh"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

type IndexerConfig struct {
	Interval    Duration `toml:"interval"`
	Concurrency int      `toml:"concurrency" validate:"gte=1"`
	Port        int      `toml:"port" validate:"gte=1,lte=65535"`
	Timeout     Duration `toml:"timeout"`
	Filter      string   `toml:"filter"`
}

// HostConfig is one munin node polled by the indexer.
type HostConfig struct {
	Address    string `toml:"address" validate:"required"`
	Name       string `toml:"name"`
	RemoteNode string `toml:"remote_node"`
	Prefix     string `toml:"prefix"`
}

// Defaults returns the configuration used when nothing is configured.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{30 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Directory: DirectoryConfig{
			Backend: BackendElasticsearch,
			Timeout: Duration{10 * time.Second},
			Elasticsearch: ElasticsearchConfig{
				URL:   "http://localhost:9200",
				Index: "munin-node",
			},
			Mongo: MongoConfig{
				URI:        "mongodb://localhost:27017",
				Database:   "muninboard",
				Collection: "nodes",
			},
			File: FileConfig{Path: "nodes.json"},
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     Duration{5 * time.Minute},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "muninboard:",
			},
		},
		Dashboard: DashboardConfig{
			Prefix:           "servers",
			DefaultTimespan:  "6h",
			DefaultLineWidth: 2,
			LinkBase:         "/api/v1/dashboard",
			Refresh:          "5m",
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Indexer: IndexerConfig{
			Interval:    Duration{5 * time.Minute},
			Concurrency: 4,
			Port:        4949,
			Timeout:     Duration{10 * time.Second},
		},
	}
}

// Load reads the configuration at path. A missing file is only an error
// when explicit is set; otherwise the defaults are used.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Defaults()
	if path == "" {
		path = DefaultPath
	}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err, "read config")
	}

	if err := applyEnvOverrides(&cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Parse decodes TOML text on top of the defaults and validates the result.
// Environment overrides are not applied.
func Parse(text string) (*Config, error) {
	cfg := Defaults()
	meta, err := toml.Decode(text, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, err, "parse config")
	}
	if err := checkUndecoded(meta); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, err, "parse %s", filepath.Base(path))
	}
	return checkUndecoded(meta)
}

func checkUndecoded(meta toml.MetaData) error {
	undecoded := meta.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	sort.Strings(keys)
	return errors.New(errors.ErrCodeConfigInvalid, "unknown config keys: %s", strings.Join(keys, ", "))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and the settings the selected backends
// need.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, err, "invalid config")
	}

	switch c.Directory.Backend {
	case BackendElasticsearch:
		if err := errors.ValidateURL(c.Directory.Elasticsearch.URL); err != nil {
			return errors.Wrap(errors.ErrCodeConfigInvalid, err, "directory.elasticsearch.url")
		}
		if c.Directory.Elasticsearch.Index == "" {
			return errors.New(errors.ErrCodeConfigInvalid, "directory.elasticsearch.index is required")
		}
	case BackendMongo:
		if c.Directory.Mongo.URI == "" {
			return errors.New(errors.ErrCodeConfigInvalid, "directory.mongo.uri is required")
		}
	case BackendFile:
		if c.Directory.File.Path == "" {
			return errors.New(errors.ErrCodeConfigInvalid, "directory.file.path is required")
		}
	}

	if c.Cache.Backend == CacheRedis && c.Cache.Redis.Addr == "" {
		return errors.New(errors.ErrCodeConfigInvalid, "cache.redis.addr is required")
	}
	if err := errors.ValidateTimespan(c.Dashboard.DefaultTimespan); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, err, "dashboard.default_timespan")
	}
	return nil
}

// envOverride applies one MUNINBOARD_* variable.
type envOverride struct {
	name  string
	apply func(c *Config, v string) error
}

var envOverrides = []envOverride{
	{"MUNINBOARD_SERVER_ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"MUNINBOARD_DIRECTORY_BACKEND", func(c *Config, v string) error { c.Directory.Backend = v; return nil }},
	{"MUNINBOARD_DIRECTORY_TIMEOUT", func(c *Config, v string) error { return c.Directory.Timeout.UnmarshalText([]byte(v)) }},
	{"MUNINBOARD_ELASTICSEARCH_URL", func(c *Config, v string) error { c.Directory.Elasticsearch.URL = v; return nil }},
	{"MUNINBOARD_ELASTICSEARCH_INDEX", func(c *Config, v string) error { c.Directory.Elasticsearch.Index = v; return nil }},
	{"MUNINBOARD_ELASTICSEARCH_USERNAME", func(c *Config, v string) error { c.Directory.Elasticsearch.Username = v; return nil }},
	{"MUNINBOARD_ELASTICSEARCH_PASSWORD", func(c *Config, v string) error { c.Directory.Elasticsearch.Password = v; return nil }},
	{"MUNINBOARD_ELASTICSEARCH_API_KEY", func(c *Config, v string) error { c.Directory.Elasticsearch.APIKey = v; return nil }},
	{"MUNINBOARD_MONGO_URI", func(c *Config, v string) error { c.Directory.Mongo.URI = v; return nil }},
	{"MUNINBOARD_FILE_PATH", func(c *Config, v string) error { c.Directory.File.Path = v; return nil }},
	{"MUNINBOARD_CACHE_BACKEND", func(c *Config, v string) error { c.Cache.Backend = v; return nil }},
	{"MUNINBOARD_CACHE_DIR", func(c *Config, v string) error { c.Cache.Dir = v; return nil }},
	{"MUNINBOARD_REDIS_ADDR", func(c *Config, v string) error { c.Cache.Redis.Addr = v; return nil }},
	{"MUNINBOARD_REDIS_PASSWORD", func(c *Config, v string) error { c.Cache.Redis.Password = v; return nil }},
	{"MUNINBOARD_DASHBOARD_PREFIX", func(c *Config, v string) error { c.Dashboard.Prefix = v; return nil }},
	{"MUNINBOARD_LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = strings.ToLower(v); return nil }},
	{"MUNINBOARD_LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = strings.ToLower(v); return nil }},
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	for _, o := range envOverrides {
		v, ok := lookup(o.name)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			return errors.Wrap(errors.ErrCodeConfigInvalid, err, "%s", o.name)
		}
	}
	return nil
}

// CacheTTL returns the configured cache TTL, or zero when caching is off.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.Backend == CacheNone {
		return 0
	}
	return c.Cache.TTL.Duration
}

// String renders the configuration as TOML with secrets masked.
func (c Config) String() string {
	c.Directory.Elasticsearch.Password = mask(c.Directory.Elasticsearch.Password)
	c.Directory.Elasticsearch.APIKey = mask(c.Directory.Elasticsearch.APIKey)
	c.Cache.Redis.Password = mask(c.Cache.Redis.Password)

	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}
