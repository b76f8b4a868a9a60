package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-pathway/internal/recommend"
	"github.com/jonathan/skill-pathway/internal/skills"
	"github.com/jonathan/skill-pathway/internal/types"
)

var expandCmd = &cobra.Command{
	Use:   "expand",
	Short: "Build a job recommendation request from a skill profile",
	Long:  "Reads a SelectedSkill JSON array, finalizes it and writes the validated recommendation request (level-expanded keys plus leveled skills).",
	RunE:  runExpand,
}

var (
	expandSkills  string
	expandOutput  string
	expandTopJobs int
)

func init() {
	expandCmd.Flags().StringVarP(&expandSkills, "skills", "s", "", "Path to input SelectedSkill JSON file (required)")
	expandCmd.Flags().StringVarP(&expandOutput, "out", "o", "", "Path to output request JSON file (required)")
	expandCmd.Flags().IntVar(&expandTopJobs, "top-jobs", recommend.DefaultTopJobs, "Number of jobs to request (1-50)")
	markRequired(expandCmd, "skills", "out")

	rootCmd.AddCommand(expandCmd)
}

func runExpand(_ *cobra.Command, _ []string) error {
	var profile []types.SelectedSkill
	if err := readJSONFile(expandSkills, &profile); err != nil {
		return err
	}

	req, err := recommend.BuildJobsRequest(skills.Finalize(skills.Merge(skills.FromProfile(profile))), expandTopJobs)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	if err := writeJSONFile(expandOutput, req); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Successfully built request with %d skills to %s\n", len(req.Skills), expandOutput)
	return nil
}
