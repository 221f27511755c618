package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/vocadrill/internal/config"
)

var (
	configFile string

	cfg    *config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vocadrill",
	Short: "Vocabulary drills with spaced repetition and generated quizzes",
	Long: `vocadrill keeps a vocabulary bank, schedules words with a Leitner box
model and quizzes you with generated synonym and fill-in-the-blank questions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = newLogger(cfg.Log)
		return nil
	},
}

// Execute runs the root command until it finishes or ctx is cancelled
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./vocadrill.yaml)")
	flags.String("driver", "", "item store: sqlite3, postgres, xlsx or csv")
	flags.String("db", "", "store location: sqlite file, postgres DSN or spreadsheet path")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (text or json)")

	bindFlagToViper("database.driver", flags.Lookup("driver"))
	bindFlagToViper("database.dsn", flags.Lookup("db"))
	bindFlagToViper("log.level", flags.Lookup("log-level"))
	bindFlagToViper("log.format", flags.Lookup("log-format"))
}

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

func newLogger(c config.LogConfig) *logrus.Logger {
	l := logrus.New()
	lvl, err := logrus.ParseLevel(c.Level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	if c.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
