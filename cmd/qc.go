package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/example/vocadrill/internal/database"
	"github.com/example/vocadrill/internal/excel"
	"github.com/example/vocadrill/internal/qc"
	"github.com/example/vocadrill/pkg/models"
)

var qcCmd = &cobra.Command{
	Use:   "qc",
	Short: "Generate a batch of questions and check them for defects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		b, err := openBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		table, err := b.store.Load(ctx)
		if err != nil {
			return err
		}

		var sinks []qc.Sink
		var qcLog *database.QCLogRepository
		if b.db != nil {
			qcLog = database.NewQCLogRepository(b.db)
			sinks = append(sinks, qcLog)
		}
		if cfg.QC.Output != "" {
			sinks = append(sinks, excel.NewQCReport(cfg.QC.Output))
		}

		var judge qc.Judge
		if cfg.QC.Judge {
			client, err := newAIClient(cfg)
			if err != nil {
				return err
			}
			if client == nil {
				logger.Warn("judge requested but no api key is configured, running rules only")
			} else {
				judge = client
			}
		}

		harness := qc.New(cfg.QC, judge, logger, sinks...)
		report, err := harness.Run(ctx, table, cfg.QC.Count)
		printReport(cmd.OutOrStdout(), report)
		if err != nil {
			return err
		}

		if qcLog != nil {
			rate, total, err := qcLog.DefectRate(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("All runs: %d questions logged, %.1f%% defective\n", total, rate*100)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(qcCmd)

	flags := qcCmd.Flags()
	flags.Int("count", 0, "number of questions to generate")
	flags.Int64("seed", 0, "random seed of the batch")
	flags.Bool("judge", false, "ask the language model to answer and rate each question")
	flags.StringP("output", "o", "", "also append the records to this xlsx report")

	bindFlagToViper("qc.count", flags.Lookup("count"))
	bindFlagToViper("qc.seed", flags.Lookup("seed"))
	bindFlagToViper("qc.judge", flags.Lookup("judge"))
	bindFlagToViper("qc.output", flags.Lookup("output"))
}

func printReport(out io.Writer, r qc.Report) {
	if len(r.Records) == 0 {
		return
	}
	fmt.Fprintf(out, "QC run %s: %d questions, %d defective (%.1f%%)\n",
		r.SessionID, len(r.Records), r.Defects, r.DefectRate()*100)

	reasons := make(map[string]int)
	for _, reason := range lo.FlatMap(r.Records, func(rec models.QCRecord, _ int) []string {
		return rec.DefectReasons
	}) {
		reasons[reason]++
	}
	keys := lo.Keys(reasons)
	sort.Strings(keys)
	for _, reason := range keys {
		fmt.Fprintf(out, "  %-32s %d\n", reason, reasons[reason])
	}
}
