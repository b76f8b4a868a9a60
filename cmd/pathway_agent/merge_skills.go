package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-pathway/internal/skills"
	"github.com/jonathan/skill-pathway/internal/types"
)

var mergeSkillsCmd = &cobra.Command{
	Use:   "merge-skills",
	Short: "Merge skill profiles keeping the highest level per skill",
	Long:  "Reads one or more SelectedSkill JSON arrays, merges them by canonical key (levels only go up, labels only get resolved) and writes the result.",
	RunE:  runMergeSkills,
}

var (
	mergeSkillsInputs   []string
	mergeSkillsOutput   string
	mergeSkillsFinalize bool
)

func init() {
	mergeSkillsCmd.Flags().StringSliceVarP(&mergeSkillsInputs, "in", "i", nil, "Input SelectedSkill JSON files, merged in order (required)")
	mergeSkillsCmd.Flags().StringVarP(&mergeSkillsOutput, "out", "o", "", "Path to output JSON file (required)")
	mergeSkillsCmd.Flags().BoolVar(&mergeSkillsFinalize, "finalize", false, "Drop unresolved entries at level 0")
	markRequired(mergeSkillsCmd, "in", "out")

	rootCmd.AddCommand(mergeSkillsCmd)
}

func runMergeSkills(_ *cobra.Command, _ []string) error {
	sources := make([]skills.SkillSource, 0, len(mergeSkillsInputs))
	for _, path := range mergeSkillsInputs {
		var batch []types.SelectedSkill
		if err := readJSONFile(path, &batch); err != nil {
			return err
		}
		sources = append(sources, skills.FromProfile(batch))
	}

	merged := skills.Merge(sources...)
	if mergeSkillsFinalize {
		merged = skills.Finalize(merged)
	}

	if err := writeJSONFile(mergeSkillsOutput, merged); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Successfully merged %d skills to %s\n", len(merged), mergeSkillsOutput)
	return nil
}
