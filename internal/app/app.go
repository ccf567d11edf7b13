package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chandana/internal/config"
	"chandana/internal/dashboard"
	"chandana/internal/domain"
	"chandana/internal/export"
	"chandana/internal/httpx"
	"chandana/internal/notify"
	"chandana/internal/pipeline"
	"chandana/internal/refresh"
	"chandana/internal/snapshot"
	"chandana/internal/source"
	"chandana/internal/storage/sqlite"
)

const shutdownTimeout = 10 * time.Second

var exportOut string

var rootCmd = &cobra.Command{
	Use:           "chandana",
	Short:         "HPLC and HPOS screening dashboard",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the normalized HPLC and HPOS tables as dated CSV files",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Load both datasets once and print the headline metrics",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", ".", "directory to write CSV files into")
	rootCmd.AddCommand(serveCmd, exportCmd, summaryCmd)
}

func Main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("chandana: %v", err)
	}
}

type runtime struct {
	cfg   config.Config
	db    *sql.DB
	cache *snapshot.Cache
}

func setup() (*runtime, error) {
	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. HPLC=%s HPOS=%s Target=%d Thresholds=%.2f/%.2f CacheTTL=%s AutoRefresh=%q Timezone=%s ExternalHTTPTimeout=%s",
		describeSource(cfg.HPLCDataPath),
		describeSource(cfg.HPOSDataURL),
		cfg.TargetHPLCTests,
		cfg.HPOSThresholdLow,
		cfg.HPOSThresholdHigh,
		cfg.CacheTTL(),
		cfg.AutoRefreshSchedule,
		cfg.Timezone,
		appliedHTTPTimeout,
	)

	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	log.Printf("Database initialized at %s", dbLabel(cfg.DBPath))

	notifier := notify.New(cfg.SlackBotToken, cfg.SlackChannelID)
	cache := snapshot.NewCache(
		newLoader("hplc", cfg.HPLCDataPath),
		newLoader("hpos", cfg.HPOSDataURL),
		snapshot.Options{
			TTL:           cfg.CacheTTL(),
			Thresholds:    cfg.Thresholds(),
			Pipeline:      pipeline.Options{DateColumn: cfg.HPLCDateColumn, Location: cfg.Location},
			SyntheticRows: cfg.SyntheticRows,
			SyntheticSeed: cfg.SyntheticSeed,
		},
		db,
		notifier,
	)
	return &runtime{cfg: cfg, db: db, cache: cache}, nil
}

// newLoader returns nil for an unset source so the cache falls back to
// synthetic data without attempting a load.
func newLoader(name, src string) snapshot.TableLoader {
	if strings.TrimSpace(src) == "" {
		return nil
	}
	return source.NewLoader(name, src)
}

func describeSource(src string) string {
	switch {
	case strings.TrimSpace(src) == "":
		return "synthetic"
	case source.IsRemote(src):
		return "remote"
	default:
		return src
	}
}

func dbLabel(path string) string {
	if path == "" {
		return "memory"
	}
	return path
}

func runServe(cmd *cobra.Command, _ []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap := rt.cache.Get(ctx)
	log.Printf("Initial load: %s", strings.ReplaceAll(snapshot.FormatLoadSummary(snap), "\n", " | "))
	refresh.Start(ctx, rt.cfg.AutoRefreshSchedule, rt.cfg.Location, rt.cache)

	dash := dashboard.NewServer(rt.cache, rt.db, dashboard.Options{
		PageTitle:  rt.cfg.PageTitle,
		Target:     rt.cfg.TargetHPLCTests,
		Deadline:   rt.cfg.Deadline,
		Thresholds: rt.cfg.Thresholds(),
		Location:   rt.cfg.Location,
	})
	srv := &http.Server{
		Addr:              rt.cfg.ListenAddr,
		Handler:           dash.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting dashboard on %s", rt.cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down dashboard...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runExport(cmd *cobra.Command, _ []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	snap := rt.cache.Get(cmd.Context())
	day := time.Now().In(rt.cfg.Location)
	for _, out := range []struct {
		prefix string
		table  domain.Table
	}{
		{export.HPLCPrefix, snap.HPLC.Table},
		{export.HPOSPrefix, snap.HPOS.Table},
	} {
		path, err := export.WriteCSVFile(out.table, exportOut, out.prefix, day)
		if err != nil {
			return fmt.Errorf("export %s: %w", out.prefix, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows)\n", path, out.table.Len())
	}
	return nil
}

func runSummary(cmd *cobra.Command, _ []string) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	defer rt.db.Close()

	now := time.Now().In(rt.cfg.Location)
	snap := rt.cache.Get(cmd.Context())
	fallbacks, err := sqlite.CountFallbacksSince(rt.db, now.Add(-24*time.Hour))
	if err != nil {
		log.Printf("load history error: %v", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), FormatSummary(snap, rt.cfg.TargetHPLCTests, rt.cfg.Deadline, now, fallbacks))
	return nil
}
