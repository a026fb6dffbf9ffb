package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mindcheck/internal/analysis"
	"github.com/abhisek/mindcheck/internal/app"
	"github.com/abhisek/mindcheck/internal/export"
	"github.com/abhisek/mindcheck/internal/llm"
	"github.com/abhisek/mindcheck/internal/questions"
	"github.com/abhisek/mindcheck/internal/workflow"
)

// runApp opens the stores, builds the workflow controller and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := openStores(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	provider, err := llm.NewProviderFromEnv(ctx, st.local.EventRepo(), logger)
	if err != nil {
		return fmt.Errorf("LLM provider not configured: %w\n"+
			"Set ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY or OPENROUTER_API_KEY, "+
			"or MINDCHECK_LLM_PROVIDER with its MINDCHECK_*_API_KEY", err)
	}
	logger.Info("starting", zap.String("model", provider.ModelID()), zap.String("store", cfg.Store.Backend))

	ctrl := workflow.New(workflow.Config{
		Namespace:    cfg.Namespace,
		UserID:       cfg.UserID,
		Counts:       cfg.QuestionCounts,
		DefaultCount: cfg.DefaultCount,
		Timeouts: workflow.Timeouts{
			Classify:  cfg.ClassifyTimeout(),
			Generate:  cfg.GenerateTimeout(),
			Analyze:   cfg.AnalyzeTimeout(),
			Stability: cfg.StabilityTimeout(),
			Store:     cfg.StoreTimeout(),
		},
	}, workflow.Deps{
		Generator: questions.New(provider, questions.DefaultConfig()),
		Analysis:  analysis.New(provider, analysis.DefaultConfig()),
		Asked:     st.asked,
		Exporter:  export.NewPDFExporter(cfg.ExportDir, logger),
		Logger:    logger,
	})

	return app.Run(app.Options{Controller: ctrl, Logger: logger})
}
