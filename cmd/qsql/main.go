// Command qsql evaluates probabilistic filter conditions over tabular data.
//
//	qsql query --file patients.csv --where "bp > 100 and bp < 130"
//	qsql query --file s3://bucket/patients.csv.zst --where "diabetic" --export scores.csv.lz4
//	qsql shell
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/qsql"
	"github.com/hupe1980/qsql/prommetrics"
	"github.com/hupe1980/qsql/render"
	"github.com/hupe1980/qsql/resource"
	"github.com/hupe1980/qsql/source"
	miniostore "github.com/hupe1980/qsql/source/minio"
	s3store "github.com/hupe1980/qsql/source/s3"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qsql",
		Short:         "Probabilistic filter evaluation over tables",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (yaml, toml or json)")
	pf.String("mode", "auto", "Scoring mode: auto, deterministic, statevector, accelerated, sparse")
	pf.Int("workers", qsql.DefaultWorkers, "Number of batch workers")
	pf.Uint64("seed", 0, "Seed for sparse mode")
	pf.Int("max-units", qsql.DefaultMaxUnits, "Maximum literals per condition in circuit modes")
	pf.Bool("strict", false, "Reject conditions with unknown characters")
	pf.IntP("limit", "l", 40, "Maximum number of rows to display (0 for unlimited)")
	pf.BoolP("json", "j", false, "Print query results as JSON")
	pf.String("log-level", "warn", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	pf.Int64("cache-bytes", 64<<20, "Memory for caching remote objects")

	root.AddCommand(newQueryCmd(), newShellCmd())
	return root
}

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Evaluate a condition over a CSV table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				file, _ := cmd.Flags().GetString("file")
				where, _ := cmd.Flags().GetString("where")
				export, _ := cmd.Flags().GetString("export")
				codecName, _ := cmd.Flags().GetString("codec")
				return runQuery(ctx, rt, file, where, export, codecName)
			})
		},
	}

	cmd.Flags().StringP("file", "f", "", "Table to query: path, file://, s3:// or minio:// URI")
	cmd.Flags().StringP("where", "w", "", "Filter condition")
	cmd.Flags().String("export", "", "Write index,score,match CSV to this file")
	cmd.Flags().String("codec", "", "Export codec: none, zstd or lz4 (default from extension)")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("where")

	return cmd
}

func newShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive statement shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
				in := newInterpreter(cmd.OutOrStdout(), rt.cfg.Limit, rt.resolve, rt.rc, rt.opts...)
				in.json = rt.cfg.JSON

				if script, _ := cmd.Flags().GetString("file"); script != "" {
					f, err := os.Open(script)
					if err != nil {
						return err
					}
					defer func() { _ = f.Close() }()
					return runScript(ctx, in, f)
				}

				if stat, err := os.Stdin.Stat(); err == nil && stat.Mode()&os.ModeCharDevice == 0 {
					return runScript(ctx, in, os.Stdin)
				}

				sh, err := newShell(in)
				if err != nil {
					return err
				}
				defer func() { _ = sh.Close() }()
				return sh.Run(ctx)
			})
		},
	}

	cmd.Flags().StringP("file", "f", "", "Execute statements from a file and exit")
	return cmd
}

// runtime bundles what every command needs after config resolution.
type runtime struct {
	cfg     *config
	opts    []qsql.Option
	rc      *resource.Controller
	resolve StoreResolver
}

func withRuntime(cmd *cobra.Command, fn func(context.Context, *runtime) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var metrics *prommetrics.Collector
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics = prommetrics.New(reg)

		srv := serveMetrics(cfg.MetricsAddr, reg)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	opts, rc, err := cfg.engineOptions(metrics)
	if err != nil {
		return err
	}

	return fn(cmd.Context(), &runtime{
		cfg:     cfg,
		opts:    opts,
		rc:      rc,
		resolve: newResolver(cfg, rc),
	})
}

func serveMetrics(addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", prommetrics.Handler(g))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "metrics server: %v\n", err)
		}
	}()
	return srv
}

// newResolver maps locations to stores. Remote stores are wrapped in a
// CachingStore per bucket so repeated loads are served from memory. MinIO
// connections take their endpoint and credentials from the minio.* keys.
func newResolver(cfg *config, rc *resource.Controller) StoreResolver {
	var (
		mu     sync.Mutex
		caches = make(map[string]*source.CachingStore)
	)

	cached := func(loc source.Location, open func() (source.Store, error)) (source.Store, error) {
		key := string(loc.Scheme) + "://" + loc.Bucket

		mu.Lock()
		defer mu.Unlock()
		if s, ok := caches[key]; ok {
			return s, nil
		}
		inner, err := open()
		if err != nil {
			return nil, err
		}
		s := source.NewCachingStore(inner, cfg.CacheBytes, rc)
		caches[key] = s
		return s, nil
	}

	return func(ctx context.Context, loc source.Location) (source.Store, string, error) {
		var (
			store source.Store
			err   error
		)

		switch loc.Scheme {
		case source.SchemeFile:
			return source.NewLocalStore(""), loc.Key, nil
		case source.SchemeS3:
			store, err = cached(loc, func() (source.Store, error) {
				return s3store.NewFromConfig(ctx, loc.Bucket)
			})
		case source.SchemeMinio:
			store, err = cached(loc, func() (source.Store, error) {
				mc := cfg.Minio
				if mc.Endpoint == "" {
					return nil, errors.New("minio: endpoint not configured (set QSQL_MINIO_ENDPOINT)")
				}
				mc.Bucket = loc.Bucket
				return miniostore.Dial(mc)
			})
		default:
			err = fmt.Errorf("%w: unsupported scheme %q", source.ErrInvalidURI, loc.Scheme)
		}
		if err != nil {
			return nil, "", err
		}
		return store, loc.Key, nil
	}
}

func runQuery(ctx context.Context, rt *runtime, file, where, export, codecName string) error {
	loc, err := source.ParseURI(file)
	if err != nil {
		return err
	}
	store, key, err := rt.resolve(ctx, loc)
	if err != nil {
		return err
	}

	t, err := source.LoadTable(ctx, store, key, "", source.WithThrottle(rt.rc))
	if err != nil {
		return err
	}

	eng, err := qsql.New(t.Columns(), rt.opts...)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	res, err := eng.RunTable(ctx, t, where)
	if err != nil {
		return err
	}

	if rt.cfg.JSON {
		if err := render.JSON(os.Stdout, t.Columns(), res); err != nil {
			return err
		}
	} else {
		render.Table(os.Stdout, t.Columns(), res, rt.cfg.Limit)
	}

	if export == "" {
		return nil
	}
	return exportResult(export, codecName, res)
}

func exportResult(path, codecName string, res *qsql.Result) error {
	codec := render.CodecFor(path)
	if codecName != "" {
		c, err := render.ParseCodec(codecName)
		if err != nil {
			return err
		}
		codec = c
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.Export(f, res, codec); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
