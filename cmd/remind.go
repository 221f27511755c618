package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/vocadrill/internal/config"
	"github.com/example/vocadrill/internal/scheduler"
)

const remindOnceKey = "remind.once"

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Send a daily reminder when words are due",
	Long: `remind checks the bank every day at remind.at (HH:MM, local time) and
logs a reminder when the configured session has due words or mistakes to
review. With --once it checks immediately and exits.`,
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

		s := scheduler.New(b.store, newLeitner(config.Seed(0)), sessionCfg,
			scheduler.LogNotifier{Logger: logger}, cfg.Remind.At, logger)

		if viper.GetBool(remindOnceKey) {
			r, err := s.RunManualCheck(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("Due: %d  Mistakes: %d  Goal: %d\n", r.Due, r.Mistakes, r.Goal)
			if len(r.Preview) > 0 {
				cmd.Printf("Next up: %s\n", strings.Join(r.Preview, ", "))
			}
			return nil
		}

		return s.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(remindCmd)

	remindCmd.Flags().String("at", "", "time of the daily check (HH:MM)")
	remindCmd.Flags().Bool("once", false, "check now and exit")

	bindFlagToViper("remind.at", remindCmd.Flags().Lookup("at"))
	bindFlagToViper(remindOnceKey, remindCmd.Flags().Lookup("once"))
}
