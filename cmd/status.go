package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/vocadrill/internal/config"
	"github.com/example/vocadrill/internal/spaced_repetition"
	"github.com/example/vocadrill/pkg/models"
)

const resetConfirmKey = "reset.yes"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show box distribution and what is due today",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sessionCfg, err := cfg.SessionDefaults()
		if err != nil {
			return err
		}

		b, err := openBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		table, err := b.store.Load(ctx)
		if err != nil {
			return err
		}

		printStatus(cmd.OutOrStdout(), table, newLeitner(config.Seed(0)), sessionCfg)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the review progress of every word",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if !viper.GetBool(resetConfirmKey) {
			return fmt.Errorf("this clears all boxes, review dates and mistakes; rerun with --yes")
		}

		b, err := openBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		table, err := b.store.Load(ctx)
		if err != nil {
			return err
		}
		newLeitner(config.Seed(0)).Reset(table)
		if err := b.store.Save(ctx, table); err != nil {
			return fmt.Errorf("failed to save reset progress: %w", err)
		}

		cmd.Printf("Progress reset for %d words\n", len(table))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)

	resetCmd.Flags().Bool("yes", false, "confirm the reset")
	bindFlagToViper(resetConfirmKey, resetCmd.Flags().Lookup("yes"))
}

func printStatus(out io.Writer, table models.Table, leitner *spaced_repetition.Leitner, sessionCfg models.SessionConfig) {
	boxes := make([]int, leitner.MaxBox+1)
	mastered, never := 0, 0
	for _, item := range table {
		boxes[item.Box]++
		if leitner.Mastered(item) {
			mastered++
		}
		if item.IsNeverReviewed() {
			never++
		}
	}

	fmt.Fprintf(out, "Words: %d (new %d, mastered %d)\n", len(table), never, mastered)
	for box, count := range boxes {
		fmt.Fprintf(out, "  box %d: %3d %s\n", box, count, strings.Repeat("#", count*40/max(len(table), 1)))
	}

	due := leitner.DueItems(table, sessionCfg)
	mistakesCfg := sessionCfg
	mistakesCfg.Mode = models.ModeMistakesOnly
	mistakes := leitner.DueItems(table, mistakesCfg)

	fmt.Fprintf(out, "Due today for %s: %d\n", describe(sessionCfg), len(due))
	fmt.Fprintf(out, "Waiting in mistakes review: %d\n", len(mistakes))
	if topics := table.Topics(); len(topics) > 0 {
		fmt.Fprintf(out, "Topics: %s\n", strings.Join(topics, ", "))
	}
}

func describe(c models.SessionConfig) string {
	topic := c.Topic
	if c.AllTopicsSelected() {
		topic = models.AllTopics
	}
	return fmt.Sprintf("topic %s, levels %d-%d", topic, c.MinLevel, c.MaxLevel)
}
