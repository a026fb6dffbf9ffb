package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mindcheck/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect or reset the questions already asked per topic",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List topics with their asked-question counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		topics, err := st.asked.AskedTopics(cmd.Context(), cfg.Namespace, cfg.UserID)
		if err != nil {
			return fmt.Errorf("list topics: %w", err)
		}
		if len(topics) == 0 {
			fmt.Println("No questions asked yet.")
			return nil
		}

		fmt.Printf("%-32s  %9s  %s\n", "Topic", "Questions", "Last updated")
		fmt.Println(strings.Repeat("─", 64))
		for _, t := range topics {
			name := t.Topic
			if name == "" {
				name = t.Slug
			}
			fmt.Printf("%-32s  %9d  %s\n",
				truncate(name, 32), t.Count, t.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget asked questions so they can be asked again",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")

		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		key := func(t string) store.AskedKey {
			return store.AskedKey{Namespace: cfg.Namespace, UserID: cfg.UserID, Topic: t}
		}

		if topic != "" {
			if store.Slug(topic) == "" {
				return fmt.Errorf("invalid topic %q", topic)
			}
			if err := st.asked.ClearAsked(ctx, key(topic)); err != nil {
				return fmt.Errorf("clear %q: %w", topic, err)
			}
			logger.Info("asked record cleared", zap.String("topic", topic))
			fmt.Printf("Cleared history for %q.\n", topic)
			return nil
		}

		topics, err := st.asked.AskedTopics(ctx, cfg.Namespace, cfg.UserID)
		if err != nil {
			return fmt.Errorf("list topics: %w", err)
		}
		for _, t := range topics {
			if err := st.asked.ClearAsked(ctx, key(t.Slug)); err != nil {
				return fmt.Errorf("clear %q: %w", t.Slug, err)
			}
		}
		logger.Info("asked records cleared", zap.Int("topics", len(topics)))
		fmt.Printf("Cleared history for %d topic(s).\n", len(topics))
		return nil
	},
}

func init() {
	historyClearCmd.Flags().StringP("topic", "t", "", "Only clear this topic")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyClearCmd)
}
