package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/vango-dev/urlquery/internal/errors"
	"github.com/vango-dev/urlquery/pkg/filterschema"
	"github.com/vango-dev/urlquery/pkg/urlquery"
)

const (
	// ConfigName is the base name of the configuration file.
	ConfigName = "urlquery"

	// ConfigFileName is the default configuration file.
	ConfigFileName = ConfigName + ".json"

	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "URLQUERY"

	DefaultAddr            = ":8080"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultMetricsPrefix   = "urlquery"
	DefaultTracerName      = "github.com/vango-dev/urlquery"
	DefaultBufferSize      = 1024
	DefaultReadTimeout     = 60 * time.Second
	DefaultMaxMessageBytes = 64 * 1024
)

// Config is the complete urlquery configuration.
type Config struct {
	// Addr is the server listen address.
	Addr string `json:"addr" mapstructure:"addr"`

	// Sorts is the sortable column list in its initial order.
	Sorts []urlquery.SortParam `json:"sorts" mapstructure:"sorts"`

	// NormalizeFromURL seeds query state from the request URL.
	NormalizeFromURL bool `json:"normalizeFromUrl" mapstructure:"normalizeFromUrl"`

	// Filters lists "column=spec" validator entries, e.g. "age=int".
	Filters []string `json:"filters,omitempty" mapstructure:"filters"`

	Log       LogConfig       `json:"log" mapstructure:"log"`
	Metrics   MetricsConfig   `json:"metrics" mapstructure:"metrics"`
	Tracing   TracingConfig   `json:"tracing" mapstructure:"tracing"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`

	// path the config was loaded from, empty for defaults.
	path string
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" mapstructure:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	Namespace string `json:"namespace" mapstructure:"namespace"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Name    string `json:"name" mapstructure:"name"`
}

// WebSocketConfig configures live query sessions.
type WebSocketConfig struct {
	ReadBufferSize  int           `json:"readBufferSize" mapstructure:"readBufferSize"`
	WriteBufferSize int           `json:"writeBufferSize" mapstructure:"writeBufferSize"`
	ReadTimeout     time.Duration `json:"readTimeout" mapstructure:"readTimeout"`
	MaxMessageBytes int64         `json:"maxMessageBytes" mapstructure:"maxMessageBytes"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Addr:             DefaultAddr,
		NormalizeFromURL: true,
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsPrefix,
		},
		Tracing: TracingConfig{
			Name: DefaultTracerName,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  DefaultBufferSize,
			WriteBufferSize: DefaultBufferSize,
			ReadTimeout:     DefaultReadTimeout,
			MaxMessageBytes: DefaultMaxMessageBytes,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("addr", d.Addr)
	v.SetDefault("normalizeFromUrl", d.NormalizeFromURL)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.name", d.Tracing.Name)

	v.SetDefault("websocket.readBufferSize", d.WebSocket.ReadBufferSize)
	v.SetDefault("websocket.writeBufferSize", d.WebSocket.WriteBufferSize)
	v.SetDefault("websocket.readTimeout", d.WebSocket.ReadTimeout)
	v.SetDefault("websocket.maxMessageBytes", d.WebSocket.MaxMessageBytes)
}

// Load reads the configuration. An explicit path must exist; with an empty
// path urlquery.* is looked up in the working directory and defaults are
// used when none is found. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Keys without defaults are only seen by AutomaticEnv once bound.
	_ = v.BindEnv("sorts")
	_ = v.BindEnv("filters")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); path != "" || !notFound {
			return nil, errors.New("Q001").
				WithDetail(fmt.Sprintf("Could not read %s.", displayPath(path))).
				Wrap(err)
		}
	}

	cfg := Default()
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		sortParamHook,
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		return nil, errors.New("Q001").Wrap(err)
	}
	cfg.path = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func displayPath(path string) string {
	if path == "" {
		return ConfigFileName
	}
	return filepath.Clean(path)
}

// sortParamHook lets sorts be written as bare column names.
func sortParamHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(urlquery.SortParam{}) || from.Kind() != reflect.String {
		return data, nil
	}
	column := strings.TrimSpace(data.(string))
	return urlquery.SortParam{Column: column}, nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// Validate checks sort columns and filter validator specs.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Sorts))
	for i, s := range c.Sorts {
		if s.Column == "" {
			return errors.New("Q002").
				WithDetail(fmt.Sprintf("Sort entry %d has no column.", i))
		}
		if seen[s.Column] {
			return errors.New("Q002").
				WithDetail(fmt.Sprintf("Sort column %q is listed twice.", s.Column)).
				WithSuggestion("Remove the duplicate entry from sorts")
		}
		seen[s.Column] = true
	}
	if _, err := c.FilterSchema(); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("Q001").Wrap(err)
	}
	return nil
}

// FilterSpecs splits Filters into a column to spec map.
func (c *Config) FilterSpecs() (map[string]string, error) {
	specs := make(map[string]string, len(c.Filters))
	for _, entry := range c.Filters {
		column, spec, ok := strings.Cut(entry, "=")
		column = strings.TrimSpace(column)
		if !ok || column == "" {
			return nil, fmt.Errorf("filter entry %q is not column=spec", entry)
		}
		if _, dup := specs[column]; dup {
			return nil, fmt.Errorf("filter %q is listed twice", column)
		}
		specs[column] = strings.TrimSpace(spec)
	}
	return specs, nil
}

// FilterSchema builds the validators named in Filters.
func (c *Config) FilterSchema() (urlquery.FilterSchema, error) {
	if len(c.Filters) == 0 {
		return nil, nil
	}
	specs, err := c.FilterSpecs()
	if err != nil {
		return nil, errors.New("Q003").Wrap(err)
	}
	schema, err := filterschema.ParseSchema(specs)
	if err != nil {
		return nil, errors.New("Q003").Wrap(err)
	}
	return schema, nil
}

// QueryOptions returns the urlquery options for a new QueryState, without
// a search-param source.
func (c *Config) QueryOptions(logger *slog.Logger) ([]urlquery.Option, error) {
	schema, err := c.FilterSchema()
	if err != nil {
		return nil, err
	}
	opts := []urlquery.Option{
		urlquery.WithSorts(c.Sorts...),
		urlquery.WithNormalizeFromURL(c.NormalizeFromURL),
	}
	if schema != nil {
		opts = append(opts, urlquery.WithFilterSchema(schema))
	}
	if logger != nil {
		opts = append(opts, urlquery.WithLogger(logger))
	}
	return opts, nil
}

// Logger builds a slog logger writing to w. A nil w writes to stderr.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
