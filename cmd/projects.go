package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/naka-gawa/site-stats/internal/config"
	"github.com/naka-gawa/site-stats/internal/gateway"
	"github.com/naka-gawa/site-stats/internal/usecase"
	"github.com/spf13/cobra"
)

const (
	sourceGHStats = "ghstats"
	sourceGitHub  = "github"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Refreshes the star counts of the site's projects list",
	Long: `Rewrites the projects file with current star counts. Projects unknown to the
source get zero stars; every other field is left untouched.

Sources:
  ghstats  the self-hosted stats dashboard at GHS_API_URL (GHS_API_KEY optional);
           the file order is kept.
  github   the public repositories of --owner via the GitHub GraphQL API
           (requires GITHUB_TOKEN); the file is sorted by stars, descending.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg := config.FromEnv(os.Getenv)

		file, _ := cmd.Flags().GetString("file")
		source, _ := cmd.Flags().GetString("source")
		owner, _ := cmd.Flags().GetString("owner")
		sortByStars, _ := cmd.Flags().GetBool("sort")

		var stars usecase.StarSource
		switch source {
		case sourceGHStats:
			if err := cfg.Require(config.EnvGHStatsURL); err != nil {
				return err
			}
			stars = gateway.NewGHStatsClient(newPlatformHTTPClient(), cfg.GHStatsURL, cfg.GHStatsKey, logger)
		case sourceGitHub:
			if err := cfg.Require(config.EnvGitHubToken); err != nil {
				return err
			}
			if owner == "" {
				return fmt.Errorf("--owner is required with --source %s", sourceGitHub)
			}
			githubGateway, err := gateway.NewGitHubGateway(gateway.Options{Token: cfg.GitHubToken}, logger)
			if err != nil {
				return fmt.Errorf("failed to create GitHub gateway: %w", err)
			}
			stars = usecase.StarSourceFunc(func(ctx context.Context) (map[string]int, error) {
				return githubGateway.Stars(ctx, owner)
			})
			if !cmd.Flags().Changed("sort") {
				sortByStars = true
			}
		default:
			return fmt.Errorf("unknown source %q, want %s or %s", source, sourceGHStats, sourceGitHub)
		}

		updated, err := usecase.NewProjectUpdater(stars, sortByStars, logger).Update(cmd.Context(), file)
		if err != nil {
			return fmt.Errorf("failed to update projects: %w", err)
		}
		logger.Printf("Wrote %d projects to %s", len(updated), file)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.Flags().StringP("file", "f", "projects.json", "Projects file to update in place")
	projectsCmd.Flags().String("source", sourceGHStats, "Star source: ghstats or github")
	projectsCmd.Flags().String("owner", "", "Repository owner to list with --source github")
	projectsCmd.Flags().Bool("sort", false, "Sort projects by stars, descending (default with --source github)")
}
