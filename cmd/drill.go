package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/example/vocadrill/internal/audio"
	"github.com/example/vocadrill/internal/config"
	"github.com/example/vocadrill/internal/quiz"
	"github.com/example/vocadrill/internal/session"
	"github.com/example/vocadrill/internal/spaced_repetition"
	"github.com/example/vocadrill/pkg/models"
)

var drillCmd = &cobra.Command{
	Use:   "drill",
	Short: "Run a study session in the terminal",
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
		if len(table) == 0 {
			cmd.Println("The vocabulary bank is empty. Add words with `vocadrill import`.")
			return nil
		}

		seed := config.Seed(cfg.Session.Seed)
		rng := rand.New(rand.NewSource(seed))
		generator := quiz.NewGenerator(rng)
		generator.StrictAnswers = cfg.Quiz.StrictAnswers

		s, err := session.New(sessionCfg, table, b.store, spaced_repetition.NewLeitner(rng), generator, logger)
		if err != nil {
			return err
		}

		var renderer *audio.Renderer
		if cfg.Audio.Enabled {
			renderer = newRenderer(cfg)
		}

		logger.WithField("seed", seed).Debug("session started")
		return runDrill(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), s, renderer, logger)
	},
}

func init() {
	rootCmd.AddCommand(drillCmd)

	flags := drillCmd.Flags()
	flags.String("topic", "", "study only this topic (all for every topic)")
	flags.Int("goal", 0, "number of answers in the session")
	flags.Int("min-level", 0, "lowest difficulty level")
	flags.Int("max-level", 0, "highest difficulty level")
	flags.String("mode", "", "standard or mistakes-only")
	flags.Int64("seed", 0, "random seed for reproducible sessions")
	flags.Bool("strict", false, "accept only the displayed synonym")
	flags.Bool("audio", false, "render pronunciation audio for each word")

	bindFlagToViper("session.topic", flags.Lookup("topic"))
	bindFlagToViper("session.goal", flags.Lookup("goal"))
	bindFlagToViper("session.min_level", flags.Lookup("min-level"))
	bindFlagToViper("session.max_level", flags.Lookup("max-level"))
	bindFlagToViper("session.mode", flags.Lookup("mode"))
	bindFlagToViper("session.seed", flags.Lookup("seed"))
	bindFlagToViper("quiz.strict_answers", flags.Lookup("strict"))
	bindFlagToViper("audio.enabled", flags.Lookup("audio"))
}

// errQuit ends the quiz loop early at the learner's request
var errQuit = errors.New("quit")

// runDrill is the terminal flow: setup summary, quiz loop, summary.
func runDrill(ctx context.Context, in io.Reader, out io.Writer, s *session.Session,
	renderer *audio.Renderer, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	scanner := bufio.NewScanner(in)
	sc := s.Config()

	topic := sc.Topic
	if sc.AllTopicsSelected() {
		topic = "all topics"
	}
	fmt.Fprintf(out, "Session: %s, levels %d-%d, goal %d, mode %s\n",
		topic, sc.MinLevel, sc.MaxLevel, sc.Goal, sc.Mode)
	if topics := s.Table().Topics(); len(topics) > 0 {
		fmt.Fprintf(out, "Topics in the bank: %s\n", strings.Join(topics, ", "))
	}
	fmt.Fprintln(out, "Answer with the option number or text, q to finish early.")

	for !s.Done() {
		q, sel := s.Next(ctx)
		if q == nil {
			fmt.Fprintln(out, emptyMessage(sel))
			break
		}

		if renderer != nil {
			if _, err := renderer.Render(ctx, q.TargetWord); err == nil {
				fmt.Fprintf(out, "Audio: %s\n", renderer.CachePath(q.TargetWord))
			} else {
				log.WithError(err).Debug("audio skipped")
			}
		}

		choice, err := ask(scanner, out, s, q)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			return err
		}

		outcome, err := s.Answer(ctx, choice)
		if err != nil && !errors.Is(err, session.ErrSaveFailed) {
			return err
		}
		if err != nil {
			fmt.Fprintln(out, "Warning: progress could not be saved, it is kept for this session.")
		}
		showOutcome(out, outcome)
	}

	stats := s.Stats()
	fmt.Fprintln(out, "\nSession complete")
	fmt.Fprintf(out, "Correct: %d  Wrong: %d  Total: %d\n", stats.Correct, stats.Wrong, stats.Total)
	fmt.Fprintf(out, "Final Score: %d%%\n", stats.Score())
	return nil
}

func ask(scanner *bufio.Scanner, out io.Writer, s *session.Session, q *models.Question) (string, error) {
	stats := s.Stats()
	fmt.Fprintf(out, "\n[%d/%d] %s\n", stats.Total+1, s.Config().Goal, q.Prompt)
	if q.Stem != "" {
		fmt.Fprintf(out, "  %s\n", q.Stem)
	}
	for i, option := range q.Options {
		fmt.Fprintf(out, "  %d) %s\n", i+1, option)
	}

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errQuit
		}

		input := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(input, "q") {
			return "", errQuit
		}
		if choice, ok := parseChoice(input, q.Options); ok {
			return choice, nil
		}
		fmt.Fprintf(out, "Pick 1-%d or type an option.\n", len(q.Options))
	}
}

func parseChoice(input string, options []string) (string, bool) {
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	return lo.Find(options, func(o string) bool { return strings.EqualFold(o, input) })
}

func showOutcome(out io.Writer, o session.Outcome) {
	if o.Correct {
		fmt.Fprintln(out, "Correct!")
	} else {
		fmt.Fprintf(out, "Wrong. The answer is: %s\n", o.Answer)
	}

	card := o.Card
	if card.POS != "" {
		fmt.Fprintf(out, "%s (%s)", card.Word, card.POS)
	} else {
		fmt.Fprint(out, card.Word)
	}
	if card.Definition != "" {
		fmt.Fprintf(out, ": %s", card.Definition)
	}
	fmt.Fprintln(out)
	if card.Example != "" {
		fmt.Fprintf(out, "  e.g. %s\n", card.Example)
	}
	if len(card.Collocations) > 0 {
		fmt.Fprintf(out, "  Collocations: %s\n", strings.Join(card.Collocations, ", "))
	}
}

func emptyMessage(sel spaced_repetition.Selection) string {
	if sel.Advisory != "" {
		return sel.Advisory
	}
	switch sel.Reason {
	case spaced_repetition.ReasonNoItems:
		return "The vocabulary bank is empty."
	case spaced_repetition.ReasonNothingDue:
		return "Nothing is due for these filters today. Come back tomorrow!"
	}
	return "No more questions."
}
