package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-pathway/internal/proficiency"
	"github.com/jonathan/skill-pathway/internal/skillid"
)

var normalizeKeyCmd = &cobra.Command{
	Use:   "normalize-key KEY...",
	Short: "Print the canonical form of skill identifiers",
	Long:  "Collapses UUID renderings (case, hyphens, whitespace) onto the lowercase hyphenated form. Names and URIs are only trimmed.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runNormalizeKey,
}

var formatLabelCmd = &cobra.Command{
	Use:   "format-label",
	Short: "Derive a display label from a skill name and key",
	Long:  "Prints the human-readable label for a skill. Prints nothing when the label cannot be resolved locally.",
	RunE:  runFormatLabel,
}

var quantizeCmd = &cobra.Command{
	Use:   "quantize LEVEL...",
	Short: "Snap proficiency levels onto the 0-10 half-step grid",
	Long:  "Accepts numbers or legacy tags (beginner, intermediate, advanced). With --legacy, numbers are read from the 0-5 scale.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuantize,
}

var (
	formatLabelName string
	formatLabelKey  string
	quantizeLegacy  bool
)

func init() {
	formatLabelCmd.Flags().StringVarP(&formatLabelName, "name", "n", "", "Skill name reported by the backend")
	formatLabelCmd.Flags().StringVarP(&formatLabelKey, "key", "k", "", "Skill key")
	quantizeCmd.Flags().BoolVar(&quantizeLegacy, "legacy", false, "Treat numeric input as the legacy 0-5 scale")

	rootCmd.AddCommand(normalizeKeyCmd, formatLabelCmd, quantizeCmd)
}

func runNormalizeKey(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, raw := range args {
		_, _ = fmt.Fprintln(out, skillid.NormalizeKey(raw))
	}
	return nil
}

func runFormatLabel(cmd *cobra.Command, _ []string) error {
	if strings.TrimSpace(formatLabelName) == "" && strings.TrimSpace(formatLabelKey) == "" {
		return fmt.Errorf("at least one of --name or --key is required")
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), skillid.FormatLabel(formatLabelName, formatLabelKey))
	return nil
}

func runQuantize(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, raw := range args {
		var level float64
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			if quantizeLegacy {
				level = proficiency.RescaleLegacy(f)
			} else {
				level = proficiency.Quantize(f)
			}
		} else {
			level = proficiency.CoerceLevel(raw, proficiency.MinLevel)
		}
		_, _ = fmt.Fprintln(out, strconv.FormatFloat(level, 'f', -1, 64))
	}
	return nil
}
