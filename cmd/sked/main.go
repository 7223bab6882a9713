package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/camdenleague/sked/internal/config"
	"github.com/camdenleague/sked/internal/excel"
	"github.com/camdenleague/sked/internal/problem"
	"github.com/camdenleague/sked/internal/schedule"
	"github.com/camdenleague/sked/internal/validator"
)

const defaultConfigFile = "season.yaml"

var log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
	With().Timestamp().Logger()

func resolveConfigPath(configFlag string) (string, error) {
	if configFlag != "" {
		return configFlag, nil
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile, nil
	}
	return "", fmt.Errorf("no config file found. Either create %s in the current directory or pass --config", defaultConfigFile)
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "sked",
		Short: "Season schedule generator for league play",
	}

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cobra.OnInitialize(func() {
		if verbose {
			log = log.Level(zerolog.DebugLevel)
		} else {
			log = log.Level(zerolog.InfoLevel)
		}
	})

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Create a starter season.yaml in the current directory",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultConfigFile, "Output path for the config file")

	var configFile string
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default: season.yaml in current directory)")

	var outputFile string
	generateCmd := &cobra.Command{
		Use:          "generate",
		Short:        "Generate a season schedule from a config file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runGenerate(configPath, outputFile)
		},
	}
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "schedule.xlsx", "Output Excel file path")

	validateCmd := &cobra.Command{
		Use:          "validate <schedule.xlsx>",
		Short:        "Audit a schedule workbook against the season's constraints",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := resolveConfigPath(configFile)
			if err != nil {
				return err
			}
			return runValidate(configPath, args[0])
		},
	}

	rootCmd.AddCommand(initCmd, generateCmd, validateCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	log.Info().Str("path", outputPath).Msg("created starter config")
	return nil
}

func loadModel(configPath string) (*config.Config, *problem.Model, error) {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	spec, err := cfg.Problem()
	if err != nil {
		return nil, nil, err
	}

	m, err := problem.NewModel(spec)
	if err != nil {
		return nil, nil, err
	}
	return cfg, m, nil
}

func runGenerate(configPath, outputPath string) error {
	cfg, m, err := loadModel(configPath)
	if err != nil {
		return err
	}

	calendars := schedule.SlotsByField(m)
	total := 0
	for _, slots := range calendars {
		total += len(slots)
	}
	log.Info().Int("matchups", len(m.Matchups)).Int("slots", total).Msg("scheduling")

	opts := cfg.SolverOptions()
	opts.Logger = &log
	result := schedule.Solve(m, calendars, opts)
	result.Shortfalls = schedule.AssignUmpires(m, result.Games)

	// The validator should never fire on our own output; if it does,
	// the solver is broken and the schedule can't be trusted.
	if violations := validator.Check(m, result.Games, result.Shortfalls); len(violations) > 0 {
		for _, v := range violations {
			log.Error().Msg(v.Message)
		}
		return fmt.Errorf("generated schedule failed validation with %d violations", len(violations))
	}

	fmt.Println("\nPer Team Metrics:")
	fmt.Printf("  %-18s %6s %8s\n", "Team", "Games", "Weekend")
	metrics := result.Metrics(m)
	for _, team := range m.Teams {
		tm := metrics[team.ID]
		fmt.Printf("  %-18s %6d %8d\n", team.ID, tm.Games, tm.Weekend)
	}

	for _, u := range result.Unresolved {
		log.Warn().Str("matchup", u.Matchup.ID).Str("reason", string(u.Reason)).Msg("unresolved matchup")
	}
	for _, s := range result.Shortfalls {
		log.Warn().Str("matchup", s.MatchupID).Int("assigned", s.Assigned).Int("required", s.Required).
			Msg("umpire shortfall")
	}

	f, err := excel.Generate(m, result, calendars)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	log.Info().Str("path", outputPath).Int("games", len(result.Games)).Msg("schedule saved")

	if len(result.Unresolved) > 0 {
		return fmt.Errorf("schedule is incomplete: %d of %d matchups placed",
			len(result.Games), len(m.Matchups))
	}
	return nil
}

func runValidate(configPath, schedulePath string) error {
	_, m, err := loadModel(configPath)
	if err != nil {
		return err
	}

	games, err := excel.ReadSchedule(schedulePath, m)
	if err != nil {
		return fmt.Errorf("reading schedule: %w", err)
	}

	violations := validator.Check(m, games, nil)

	errors := 0
	warnings := 0
	for _, v := range violations {
		switch v.Type {
		case "error":
			errors++
			log.Error().Msg(v.Message)
		case "warning":
			warnings++
			log.Warn().Msg(v.Message)
		}
	}

	log.Info().Int("games", len(games)).Int("errors", errors).Int("warnings", warnings).
		Msg("validation complete")

	if errors > 0 {
		return fmt.Errorf("%d constraint violations found", errors)
	}
	return nil
}

const configTemplate = `# Season Scheduling Configuration
# ===============================
# This file defines one scheduling run: the season window, leagues and
# teams, fields and their availability, umpires, and staffing rules.

# Season defines the inclusive date range for the regular season.
season:
  start_date: "2026-04-25"
  end_date: "2026-06-14"

# Season-wide exclusion windows suppress all fields, teams, and
# umpires at once. Use them for holidays and town events.
exclusions:
  - start: "2026-05-10"
    end: "2026-05-11"
    note: "Mother's Day"
  - start: "2026-05-23"
    end: "2026-05-26"
    note: "Memorial Day Weekend"

# Leagues and their teams. Team names must be unique across leagues.
# Each league either gets its matchups generated by a strategy
# ("round_robin" or "double_round_robin") or you list explicit
# matchups at the bottom of this file.
#
# Teams may carry exclusion windows during which they cannot play:
#   - name: Angels
#     exclusions:
#       - start: "2026-05-02"
#         end: "2026-05-04"
#         note: "Team trip"
leagues:
  - name: Majors
    strategy: double_round_robin
    teams:
      - name: Angels
      - name: Astros
      - name: Mariners
      - name: Royals
  - name: Minors
    strategy: round_robin
    teams:
      - name: Cubs
      - name: Padres
      - name: Phillies
      - name: Pirates

# Fields and when they may host games. A day with no matching
# availability rule is closed. Slot start times step by
# increment_minutes through each open range (default 165 when
# omitted). Exclusion dates close a field for a whole day.
fields:
  - name: Symonds Field
    increment_minutes: 150
    availability:
      - days: [monday, tuesday, wednesday, thursday, friday]
        open: "17:45"
        close: "20:30"
      - days: [saturday, sunday]
        open: "09:00"
        close: "17:00"
    exclusion_dates:
      - date: "2026-05-04"
        note: "Town event"
  - name: Washington Park
    availability:
      - days: [saturday, sunday]
        open: "10:00"
        close: "18:00"

# Umpires available for assignment, with optional exclusion windows.
umpires:
  - name: Alvarez
  - name: Byrne
  - name: Castillo
    exclusions:
      - start: "2026-05-16"
        end: "2026-05-18"
        note: "Out of town"

# Staffing rules. Omit max_games_per_umpire_per_day for no cap.
rules:
  umpires_per_game: 2
  max_games_per_umpire_per_day: 3

# Engine tuning. max_steps bounds backtracking; timeout is optional.
solver:
  max_steps: 50000
  timeout: 30s

# Explicit matchups (instead of league strategies):
# matchups:
#   - {league: Majors, home: Angels, away: Astros}
`
