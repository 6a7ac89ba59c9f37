package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hupe1980/qsql"
	"github.com/hupe1980/qsql/prommetrics"
	"github.com/hupe1980/qsql/resource"
	"github.com/hupe1980/qsql/scoring"
	"github.com/hupe1980/qsql/source/minio"
)

const envPrefix = "QSQL"

// config is the merged view of flags, QSQL_* environment variables and the
// optional config file, in that order of precedence.
type config struct {
	Mode        string
	Workers     int
	Seed        uint64
	MaxUnits    int
	Strict      bool
	Limit       int
	JSON        bool
	LogLevel    string
	LogFormat   string
	MetricsAddr string
	CacheBytes  int64

	Resources resource.Config
	Minio     minio.Config
}

func loadConfig(cmd *cobra.Command) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "auto")
	v.SetDefault("workers", qsql.DefaultWorkers)
	v.SetDefault("max-units", qsql.DefaultMaxUnits)
	v.SetDefault("limit", 40)
	v.SetDefault("cache-bytes", 64<<20)
	v.SetDefault("log-level", "warn")
	v.SetDefault("log-format", "text")
	v.SetDefault("minio.secure", true)

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config %s: %w", file, err)
			}
		}
	}

	return &config{
		Mode:        v.GetString("mode"),
		Workers:     v.GetInt("workers"),
		Seed:        v.GetUint64("seed"),
		MaxUnits:    v.GetInt("max-units"),
		Strict:      v.GetBool("strict"),
		Limit:       v.GetInt("limit"),
		JSON:        v.GetBool("json"),
		LogLevel:    v.GetString("log-level"),
		LogFormat:   v.GetString("log-format"),
		MetricsAddr: v.GetString("metrics-addr"),
		CacheBytes:  v.GetInt64("cache-bytes"),
		Resources: resource.Config{
			MemoryLimitBytes:     v.GetInt64("resources.memory-limit"),
			MaxConcurrentQueries: v.GetInt64("resources.max-queries"),
			QueriesPerSecond:     v.GetFloat64("resources.qps"),
			LoadBytesPerSec:      v.GetInt64("resources.load-bytes-per-sec"),
			CacheLimitBytes:      v.GetInt64("resources.cache-limit"),
		},
		Minio: minio.Config{
			Endpoint:  v.GetString("minio.endpoint"),
			AccessKey: v.GetString("minio.access-key"),
			SecretKey: v.GetString("minio.secret-key"),
			Secure:    v.GetBool("minio.secure"),
			Region:    v.GetString("minio.region"),
		},
	}, nil
}

// engineOptions translates the config into engine options. The returned
// controller is shared with table loads.
func (c *config) engineOptions(metrics *prommetrics.Collector) ([]qsql.Option, *resource.Controller, error) {
	mode, err := scoring.ParseMode(c.Mode)
	if err != nil {
		return nil, nil, err
	}

	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	logger := qsql.NewTextLogger(level)
	if strings.EqualFold(c.LogFormat, "json") {
		logger = qsql.NewJSONLogger(level)
	}

	rc := resource.NewController(c.Resources)

	opts := []qsql.Option{
		qsql.WithMode(mode),
		qsql.WithWorkers(c.Workers),
		qsql.WithMaxUnits(c.MaxUnits),
		qsql.WithSeed(c.Seed),
		qsql.WithStrictLexing(c.Strict),
		qsql.WithResourceController(rc),
		qsql.WithLogger(logger),
	}
	if metrics != nil {
		opts = append(opts, qsql.WithMetricsCollector(metrics))
	}

	return opts, rc, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}
