package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sayOutput string

var sayCmd = &cobra.Command{
	Use:   "say <word>",
	Short: "Render the pronunciation of a word to the audio cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		renderer := newRenderer(cfg)
		data, err := renderer.Render(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		path := renderer.CachePath(args[0])
		if sayOutput != "" {
			if err := os.WriteFile(sayOutput, data, 0o644); err != nil {
				return fmt.Errorf("failed to write audio: %w", err)
			}
			path = sayOutput
		}
		cmd.Printf("%s: %d bytes at %s\n", args[0], len(data), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sayCmd)
	sayCmd.Flags().StringVarP(&sayOutput, "out", "o", "", "copy the mp3 to this file")
}
