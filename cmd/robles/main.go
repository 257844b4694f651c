package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"robles/internal/config"
	"robles/internal/logging"
	"robles/internal/records"
	"robles/internal/session"
	"robles/internal/ui"
)

var (
	cfg    config.Config
	logger *zap.Logger

	configPath string
	server     string
	useMock    bool
	insecure   bool
	timeout    time.Duration
	logLevel   string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "robles",
	Short: "Terminal dashboard for the Robles de la Laguna records service",
	Long: `robles manages the clients, appointments and payments of the
Robles de la Laguna sales office, and shows the per-client report.

Run it with no arguments to open the dashboard.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.File)
		if err != nil {
			return err
		}
		logger.Debug("config loaded",
			zap.String("command", cmd.Name()),
			zap.String("server", cfg.Server),
			zap.Bool("mock", cfg.Mock),
			zap.Duration("timeout", cfg.Timeout))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		m := ui.NewModel(cfg, newService(), sessionStore(), logger)
		p := tea.NewProgram(m, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			logger.Error("dashboard exited", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to config file (default "+config.DefaultPath()+")")
	pf.StringVar(&server, "server", "", "records service URL (overrides config + ROBLES_SERVER)")
	pf.BoolVar(&useMock, "mock", false, "use the in-memory records service")
	pf.BoolVar(&insecure, "insecure", false, "skip TLS verification")
	pf.DurationVar(&timeout, "timeout", 0, "per-request timeout, 0 disables (default from config)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFile, "log-file", "", "log file path, or stderr")

	rootCmd.AddCommand(reportCmd, logoutCmd, mockServerCmd)
}

// loadConfig applies the command-line flags over the loaded config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if server != "" {
		c.Server = server
	}
	if useMock {
		c.Mock = true
	}
	if flags.Changed("timeout") {
		c.Timeout = timeout
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		c.Log.File = logFile
	}
	return c, c.Validate()
}

func newService() records.Service {
	if cfg.Mock {
		return records.NewMockClient()
	}
	h := records.NewHTTPClient(cfg.Server)
	h.Timeout = cfg.Timeout
	h.Insecure = insecure
	h.Logger = logger
	return h
}

func sessionStore() session.FileStore {
	return session.FileStore{Path: cfg.SessionFile}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
