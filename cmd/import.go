package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/vocadrill/internal/excel"
)

const (
	importFileKey    = "import.file"
	importSheetKey   = "import.sheet"
	importReplaceKey = "import.replace"
	exportOutputKey  = "export.output"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import words from an xlsx or csv sheet",
	Long: `Import reads a sheet whose first row names the columns (word, definition,
example, pos, topic, level, synonyms, example_blank, collocations,
confusables, box, next_review, mistake_count). Words already in the bank
keep their review progress unless --replace is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		input := viper.GetString(importFileKey)
		if input == "" {
			return fmt.Errorf("please specify the sheet with --file")
		}

		b, err := openBackend(ctx, cfg)
		if err != nil {
			return err
		}
		defer b.Close()

		existing, err := b.store.Load(ctx)
		if err != nil {
			return err
		}

		table, result, err := excel.ImportWords(existing, excel.ImportConfig{
			FilePath:  input,
			SheetName: viper.GetString(importSheetKey),
			Replace:   viper.GetBool(importReplaceKey),
		})
		if err != nil {
			return err
		}
		if len(result.UnknownColumns) > 0 {
			logger.WithField("columns", result.UnknownColumns).Warn("ignoring unknown columns")
		}

		if err := b.store.Save(ctx, table); err != nil {
			return fmt.Errorf("failed to save imported words: %w", err)
		}

		cmd.Printf("Imported %s: %d rows, %d created, %d updated, %d skipped\n",
			input, result.TotalProcessed, result.Created, result.Updated, result.Skipped)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the bank to an xlsx or csv sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		output := viper.GetString(exportOutputKey)
		if output == "" {
			return fmt.Errorf("please specify the target with --output")
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
		if err := excel.ExportWords(table, output); err != nil {
			return err
		}

		cmd.Printf("Exported %d words to %s\n", len(table), output)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)

	importCmd.Flags().StringP("file", "f", "", "xlsx or csv file to import")
	importCmd.Flags().String("sheet", "", "sheet name (default: first sheet)")
	importCmd.Flags().Bool("replace", false, "replace the whole bank instead of merging")
	exportCmd.Flags().StringP("output", "o", "", "xlsx or csv file to write")

	bindFlagToViper(importFileKey, importCmd.Flags().Lookup("file"))
	bindFlagToViper(importSheetKey, importCmd.Flags().Lookup("sheet"))
	bindFlagToViper(importReplaceKey, importCmd.Flags().Lookup("replace"))
	bindFlagToViper(exportOutputKey, exportCmd.Flags().Lookup("output"))
}
