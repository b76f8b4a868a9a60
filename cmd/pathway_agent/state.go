package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-pathway/internal/pathway"
)

var resolveStepCmd = &cobra.Command{
	Use:   "resolve-step",
	Short: "Print the onboarding and pathway step for the stored state",
	Long:  "Reads the persisted onboarding state from the configured store and prints where the user should resume.",
	RunE:  runResolveStep,
}

var refreshSkillsCmd = &cobra.Command{
	Use:   "refresh-skills",
	Short: "Re-derive stored skills from academics and free text",
	Long:  "Maps the stored academic record to skills, optionally extracts skills from the about text, resolves missing labels and saves the merged profile.",
	RunE:  runRefreshSkills,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Request job recommendations for the stored skill profile",
	RunE:  runRecommend,
}

var (
	refreshExtract   bool
	recommendTopJobs int
	recommendOutput  string
)

func init() {
	refreshSkillsCmd.Flags().BoolVar(&refreshExtract, "extract", false, "Also extract skills from the about and goals text")
	recommendCmd.Flags().IntVar(&recommendTopJobs, "top-jobs", 0, "Number of jobs to request (defaults to config top_jobs)")
	recommendCmd.Flags().StringVarP(&recommendOutput, "out", "o", "", "Write jobs to this JSON file instead of stdout")

	rootCmd.AddCommand(resolveStepCmd, refreshSkillsCmd, recommendCmd)
}

func runResolveStep(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, _, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	step, err := svc.CurrentStep(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve onboarding step: %w", err)
	}
	out := cmd.OutOrStdout()
	if step != pathway.StepDone {
		_, _ = fmt.Fprintf(out, "onboarding: %s (%s)\n", step, step.Path())
		return nil
	}
	pstep, err := svc.CurrentPathwayStep(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve pathway step: %w", err)
	}
	_, _ = fmt.Fprintf(out, "onboarding: %s\npathway: %s\n", step, pstep)
	return nil
}

func runRefreshSkills(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, _, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	suggestions, _, err := svc.RefreshMappedSkills(ctx)
	if err != nil {
		return fmt.Errorf("failed to map academic skills: %w", err)
	}
	if refreshExtract {
		if _, _, err := svc.ExtractFromAbout(ctx); err != nil {
			return fmt.Errorf("failed to extract skills: %w", err)
		}
	}
	resolved, _, err := svc.ResolveLabels(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve labels: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Successfully refreshed skills: %d from academics, %d in profile\n", len(suggestions), len(resolved))
	return nil
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, _, cleanup, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	topJobs := cfg.TopJobs
	if cmd.Flags().Changed("top-jobs") {
		topJobs = recommendTopJobs
	}
	jobs, err := svc.Recommend(ctx, topJobs)
	if err != nil {
		return fmt.Errorf("failed to recommend jobs: %w", err)
	}

	if recommendOutput != "" {
		if err := writeJSONFile(recommendOutput, jobs); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(os.Stdout, "Successfully wrote %d jobs to %s\n", len(jobs), recommendOutput)
		return nil
	}
	out := cmd.OutOrStdout()
	for _, j := range jobs {
		_, _ = fmt.Fprintf(out, "%d. %s (%s) score=%.3f\n", j.Rank, j.Title, j.ID, j.Score)
	}
	return nil
}
