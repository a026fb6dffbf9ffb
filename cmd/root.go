package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mindcheck/internal/config"
	"github.com/abhisek/mindcheck/internal/logging"
	"github.com/abhisek/mindcheck/internal/store"
	"github.com/abhisek/mindcheck/internal/store/mongostore"
)

var (
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "mindcheck",
	Short: "A short, private check-in on how you're doing",
	Long: "MindCheck asks a handful of AI-generated questions on a wellbeing topic " +
		"and gives you a gentle analysis, advice and a stability snapshot.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides MINDCHECK_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/mindcheck/config.yaml)")
	rootCmd.PersistentFlags().String("export-dir", "", "Directory for exported PDFs (default ~/Documents)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads .env and the config file and builds the file logger.
func setup(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath()
	}
	c, err := config.LoadOrInit(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dir, _ := cmd.Flags().GetString("export-dir"); dir != "" {
		c.ExportDir = dir
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	cfg = c

	verbose, _ := cmd.Flags().GetBool("verbose")
	l, err := logging.New(verbose, cfg.LogFile)
	if err != nil {
		return err
	}
	logger = l
	logger.Debug("config loaded",
		zap.String("path", path),
		zap.String("store", cfg.Store.Backend),
		zap.String("namespace", cfg.Namespace))
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then MINDCHECK_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// stores bundles the local database with the configured asked-record
// backend.
type stores struct {
	local *store.Store
	asked store.AskedRepo
	mongo *mongostore.Store
}

func (s *stores) Close() {
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.mongo.Close(ctx); err != nil {
			logger.Warn("disconnect mongo", zap.Error(err))
		}
	}
	s.local.Close()
}

// openStores opens the SQLite database, which always holds the LLM event
// log, and the asked-record store selected by store.backend.
func openStores(cmd *cobra.Command) (*stores, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	local, err := store.Open(dbPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	s := &stores{local: local, asked: local.AskedRepo()}

	if cfg.Store.Backend == "mongo" {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.StoreTimeout())
		defer cancel()
		m, err := mongostore.Connect(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase, logger)
		if err != nil {
			local.Close()
			return nil, err
		}
		s.mongo = m
		s.asked = m.AskedRepo()
	}
	return s, nil
}
