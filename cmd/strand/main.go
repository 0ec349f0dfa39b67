// Command strand is the interactive timeline board: a zoomable,
// drag-editable lane view over calendar-day events backed by sqlite.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hylla/strand/internal/adapters/server"
	"github.com/hylla/strand/internal/adapters/storage/sqlite"
	"github.com/hylla/strand/internal/app"
	"github.com/hylla/strand/internal/config"
	"github.com/hylla/strand/internal/platform"
	"github.com/hylla/strand/internal/tui"
)

// version is stamped by the release build.
var version = "dev"

// program abstracts the bubbletea program loop for tests.
type program interface {
	Run() (tea.Model, error)
}

// programFactory stores a package-level helper value.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

// main handles main.
func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run runs the requested command flow.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCmd assembles the command tree with env-derived flag defaults.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &rootFlags{}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("STRAND_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultApp := strings.TrimSpace(os.Getenv("STRAND_APP_NAME"))
	if defaultApp == "" {
		defaultApp = "strand"
	}

	root := &cobra.Command{
		Use:           "strand",
		Short:         "Interactive timeline board for calendar-day events",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(flags, stderr)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to sqlite database")
	root.PersistentFlags().StringVar(&flags.appName, "app", defaultApp, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&flags.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(newPathsCmd(flags, stdout))
	root.AddCommand(newExportCmd(flags, stdout, stderr))
	root.AddCommand(newImportCmd(flags, stdout, stderr))
	root.AddCommand(newServeCmd(flags, stderr))
	return root
}

// newPathsCmd reports the resolved config/data locations without touching them.
func newPathsCmd(flags *rootFlags, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := platform.DefaultPathsWithOptions(platform.Options{
				AppName: flags.appName,
				DevMode: flags.devMode,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", flags.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", flags.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

// newExportCmd writes the full event set as a portable snapshot.
func newExportCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		outPath string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all events as a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := openRuntime(flags, "export", stderr)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := runExport(cmd.Context(), rt, outPath, format, stdout); err != nil {
				rt.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "export")
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "snapshot format: json or yaml (default from file extension)")
	return cmd
}

// newImportCmd loads events from a snapshot file.
func newImportCmd(flags *rootFlags, stdout, stderr io.Writer) *cobra.Command {
	var (
		inPath  string
		format  string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import events from a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := openRuntime(flags, "import", stderr)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := runImport(cmd.Context(), rt, inPath, format, replace, stdout); err != nil {
				rt.logger.Error("command flow failed", "command", "import", "err", err)
				return fmt.Errorf("run import command: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "import")
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot file path (required)")
	cmd.Flags().StringVar(&format, "format", "", "snapshot format: json or yaml (default from file extension)")
	cmd.Flags().BoolVar(&replace, "replace", false, "drop existing events before importing")
	return cmd
}

// newServeCmd exposes the timeline over HTTP and MCP.
func newServeCmd(flags *rootFlags, stderr io.Writer) *cobra.Command {
	var (
		bind        string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timeline over HTTP and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, cleanup, err := openRuntime(flags, "serve", stderr)
			if err != nil {
				return err
			}
			defer cleanup()
			serverCfg := server.Config{
				HTTPBind:      bind,
				APIEndpoint:   apiEndpoint,
				MCPEndpoint:   mcpEndpoint,
				ServerName:    rt.appName,
				ServerVersion: version,
			}
			rt.logger.Info("command flow start", "command", "serve", "bind", bind)
			if err := server.Run(cmd.Context(), serverCfg, rt.svc); err != nil {
				rt.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run server: %w", err)
			}
			rt.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&apiEndpoint, "api", "/api/v1", "HTTP API endpoint prefix")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp", "/mcp", "MCP streamable HTTP endpoint")
	return cmd
}

// runtimeState bundles the wired service stack for one command invocation.
type runtimeState struct {
	appName    string
	devMode    bool
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
	repo       *sqlite.Repository
	svc        *app.Service
}

// openRuntime resolves paths and config, then opens the logger, repository and service.
// The returned cleanup closes everything and is safe to defer immediately.
func openRuntime(flags *rootFlags, command string, stderr io.Writer) (*runtimeState, func(), error) {
	configPath, dbPath, dbOverridden, paths, err := resolveRuntimePaths(flags)
	if err != nil {
		return nil, nil, err
	}

	defaultCfg := config.Default(dbPath)
	cfg, err := config.Load(configPath, defaultCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, flags.appName, flags.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Keep TUI rendering clean: runtime logs stay in the dev-file sink while the board is active.
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", flags.appName, "dev_mode", flags.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", dbPath)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		if closeErr := logger.Close(); closeErr != nil {
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
		return nil, nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	logger.Info("sqlite repository ready", "db_path", cfg.Database.Path, "migrations", "ensured")

	rt := &runtimeState{
		appName:    flags.appName,
		devMode:    flags.devMode,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
		repo:       repo,
		svc:        app.NewService(repo, uuid.NewString, nil),
	}
	cleanup := func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Warn("sqlite close failed", "db_path", cfg.Database.Path, "err", closeErr)
		}
		if closeErr := logger.Close(); closeErr != nil && logger.shouldLogToSink(logger.consoleSink) {
			// Keep TUI shutdown quiet on the terminal when console logging is intentionally muted.
			_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
		}
	}
	return rt, cleanup, nil
}

// resolveRuntimePaths applies the flag > env > platform-default precedence for
// the config and database locations.
func resolveRuntimePaths(flags *rootFlags) (configPath, dbPath string, dbOverridden bool, paths platform.Paths, err error) {
	paths, err = platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return "", "", false, platform.Paths{}, err
	}

	configPath = strings.TrimSpace(flags.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("STRAND_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}

	dbPath = strings.TrimSpace(flags.dbPath)
	dbOverridden = dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("STRAND_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}
	return configPath, dbPath, dbOverridden, paths, nil
}

// runTUI opens the runtime stack and hands control to the board program loop.
func runTUI(flags *rootFlags, stderr io.Writer) error {
	rt, cleanup, err := openRuntime(flags, "tui", stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	m := tui.NewModel(rt.svc, tui.WithTimelineConfig(toTimelineConfig(rt.cfg.Timeline)))
	rt.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		rt.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	rt.logger.Info("command flow complete", "command", "tui")
	return nil
}

// toTimelineConfig maps persisted config values into board layout options.
func toTimelineConfig(cfg config.TimelineConfig) tui.TimelineConfig {
	return tui.TimelineConfig{
		BufferDays:   cfg.BufferDays,
		BaseDayWidth: cfg.BaseDayWidth,
		ZoomMin:      cfg.ZoomMin,
		ZoomMax:      cfg.ZoomMax,
		ZoomFactor:   cfg.ZoomFactor,
	}
}

// runExport writes the current snapshot to stdout or a file.
func runExport(ctx context.Context, rt *runtimeState, outPath, format string, stdout io.Writer) error {
	rt.logger.Info("command flow start", "command", "export", "out", outPath)

	resolved, err := snapshotFormat(format, outPath)
	if err != nil {
		return err
	}
	snapshot, err := rt.svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	data, err := encodeSnapshot(snapshot, resolved)
	if err != nil {
		return err
	}

	if outPath == "" || outPath == "-" {
		_, err = stdout.Write(data)
		return err
	}
	if dir := filepath.Dir(outPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "exported %d events to %s\n", len(snapshot.Events), outPath)
	return nil
}

// runImport reads a snapshot file and loads its events.
func runImport(ctx context.Context, rt *runtimeState, inPath, format string, replace bool, stdout io.Writer) error {
	if strings.TrimSpace(inPath) == "" {
		return fmt.Errorf("import requires --in")
	}
	rt.logger.Info("command flow start", "command", "import", "in", inPath, "replace", replace)

	resolved, err := snapshotFormat(format, inPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	snapshot, err := decodeSnapshot(data, resolved)
	if err != nil {
		return err
	}

	count, err := rt.svc.ImportEvents(ctx, snapshot.Events, replace)
	if err != nil {
		return fmt.Errorf("import events: %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "imported %d events\n", count)
	return nil
}

// snapshotFormat resolves an explicit format flag, falling back to the file extension.
func snapshotFormat(explicit, path string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "json":
		return "json", nil
	case "yaml", "yml":
		return "yaml", nil
	case "":
	default:
		return "", fmt.Errorf("unknown snapshot format: %q", explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml", nil
	default:
		return "json", nil
	}
}

// encodeSnapshot renders a snapshot in the requested wire format.
func encodeSnapshot(snapshot app.Snapshot, format string) ([]byte, error) {
	if format == "yaml" {
		data, err := yaml.Marshal(snapshot)
		if err != nil {
			return nil, fmt.Errorf("encode yaml snapshot: %w", err)
		}
		return data, nil
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// decodeSnapshot parses a snapshot in the requested wire format.
func decodeSnapshot(data []byte, format string) (app.Snapshot, error) {
	var snapshot app.Snapshot
	if format == "yaml" {
		if err := yaml.Unmarshal(data, &snapshot); err != nil {
			return app.Snapshot{}, fmt.Errorf("decode yaml snapshot: %w", err)
		}
		return snapshot, nil
	}
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return app.Snapshot{}, fmt.Errorf("decode json snapshot: %w", err)
	}
	return snapshot, nil
}

// parseBoolEnv reads an optional boolean environment variable.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return value, true
}
