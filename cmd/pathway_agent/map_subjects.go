package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/skill-pathway/internal/academics"
	"github.com/jonathan/skill-pathway/internal/types"
)

var mapSubjectsCmd = &cobra.Command{
	Use:   "map-subjects",
	Short: "Map an onboarding profile's subjects and grades to skill levels",
	Long:  "Reads an OnboardingProfile JSON file, looks up each completed subject on the backend and writes the capped, ranked skill suggestions.",
	RunE:  runMapSubjects,
}

var (
	mapSubjectsProfile string
	mapSubjectsOutput  string
)

func init() {
	mapSubjectsCmd.Flags().StringVarP(&mapSubjectsProfile, "profile", "p", "", "Path to input OnboardingProfile JSON file (required)")
	mapSubjectsCmd.Flags().StringVarP(&mapSubjectsOutput, "out", "o", "", "Path to output suggestions JSON file (required)")
	markRequired(mapSubjectsCmd, "profile", "out")

	rootCmd.AddCommand(mapSubjectsCmd)
}

func runMapSubjects(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	var profile types.OnboardingProfile
	if err := readJSONFile(mapSubjectsProfile, &profile); err != nil {
		return err
	}
	if !profile.EducationStage.Valid() {
		return &academics.StageError{Stage: string(profile.EducationStage)}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()
	api, err := newBackend(cfg, logger)
	if err != nil {
		return err
	}

	mapper := academics.NewMapper(api, academics.WithOLevelCap(cfg.OLevelCap), academics.WithLogger(logger))
	suggestions, err := mapper.MapSubjectsToSkills(ctx, profile.SubjectRows(), profile.EducationStage)
	if err != nil {
		return fmt.Errorf("failed to map subjects: %w", err)
	}

	if err := writeJSONFile(mapSubjectsOutput, suggestions); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Successfully mapped %d skills to %s\n", len(suggestions), mapSubjectsOutput)
	return nil
}
