// Command calificaciones runs scoring maintenance tasks from the shell.
package main

import (
	"fmt"
	"os"
	"strings"

	"calificaciones_app_go/config"
	"calificaciones_app_go/db"
	"calificaciones_app_go/logging"
	"calificaciones_app_go/services"
	"calificaciones_app_go/services/scoring"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "calificaciones",
	Short: "Judicial efficiency scoring maintenance",
	Long: `calificaciones recomputes office scores, exports statistics workbooks
and creates users against the configured database.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		db.Close()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(recomputeCmd(), recomputeOpenCmd(), exportCmd(), createUserCmd())
}

// setup loads configuration, opens and migrates the database and installs
// the scoring policy
func setup() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if _, err := logging.Init(cfg.LogLevel, cfg.Environment); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}

	if err := db.Initialize(db.Options{
		Driver:      cfg.DBDriver,
		Path:        cfg.DBPath,
		DatabaseURL: cfg.DatabaseURL,
		Environment: cfg.Environment,
	}); err != nil {
		return err
	}
	if err := db.AutoMigrate(db.AllModels()...); err != nil {
		return err
	}

	if cfg.ScoringPolicyPath != "" {
		policy, err := scoring.LoadPolicy(cfg.ScoringPolicyPath)
		if err != nil {
			return err
		}
		services.SetScoringPolicy(policy)
	}
	return nil
}

func recomputeCmd() *cobra.Command {
	var officialID, officeID string
	var period int

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute the office score of one official",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := services.RecomputeOfficialScore(db.DB, officialID, officeID, period)
			if err != nil {
				return err
			}
			ps, err := services.GetPeriodScore(db.DB, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "period score %s (%s): %.4f\n", ps.ID, ps.State, ps.WeightedScore)
			return nil
		},
	}
	cmd.Flags().StringVar(&officialID, "official", "", "Official ID")
	cmd.Flags().StringVar(&officeID, "office", "", "Office ID")
	cmd.Flags().IntVar(&period, "period", 0, "Scoring year")
	cmd.MarkFlagRequired("official")
	cmd.MarkFlagRequired("office")
	cmd.MarkFlagRequired("period")
	return cmd
}

func recomputeOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute-open",
		Short: "Recompute every office score whose period score is not approved",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := services.RecomputeOpenScores(db.DB)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recomputed %d office scores\n", n)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	var officeScoreID, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the statistics workbook of an office score",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.CreateTemp(".", "export-*.xlsx")
			if err != nil {
				return err
			}
			defer os.Remove(f.Name())

			name, err := services.WriteStatisticsWorkbook(db.DB, officeScoreID, f)
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = name
			}
			if err := os.Rename(f.Name(), out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&officeScoreID, "office-score", "", "Office score ID")
	cmd.Flags().StringVar(&out, "out", "", "Output file (defaults to the workbook name)")
	cmd.MarkFlagRequired("office-score")
	return cmd
}

func createUserCmd() *cobra.Command {
	var name, email, password, roles string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user with the given capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			var capabilities []string
			for _, r := range strings.Split(roles, ",") {
				if r = strings.TrimSpace(r); r != "" {
					capabilities = append(capabilities, r)
				}
			}

			user, err := services.CreateUser(db.DB, services.CreateUserInput{
				Name:         name,
				Email:        email,
				Password:     password,
				Capabilities: capabilities,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s <%s> with %s\n", user.ID, user.Email, user.Capabilities)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (12+ characters with upper and lower case, a number and a symbol)")
	cmd.Flags().StringVar(&roles, "roles", "editor", "Comma separated capabilities: editor, reviewer, admin")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}
