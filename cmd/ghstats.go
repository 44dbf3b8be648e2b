package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/naka-gawa/site-stats/internal/config"
	"github.com/naka-gawa/site-stats/internal/domain"
	"github.com/naka-gawa/site-stats/internal/gateway"
	"github.com/naka-gawa/site-stats/internal/usecase"
	"github.com/spf13/cobra"
)

// defaultRepos are the repositories showcased on the site.
var defaultRepos = []string{
	"vladkens/twscrape",
	"vladkens/macmon",
	"vladkens/ecloop",
	"vladkens/ghstats",
	"vladkens/apigen-ts",
	"vladkens/url-normalize",
	"vladkens/ogp",
	"vladkens/timewiz",
	"vladkens/fractions-math",
	"vladkens/array-utils-ts",
	"vladkens/compose-updater",
}

var ghstatsCmd = &cobra.Command{
	Use:   "ghstats",
	Short: "Counts commits, closed issues and releases of the showcased repositories",
	Long: `Counts commits, closed issues and releases of every repository inside a date
window and prints one line per repository followed by the totals.

Repositories are queried one at a time with a pause between pages to stay under
the GitHub rate limit. GITHUB_TOKEN is used when set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg := config.FromEnv(os.Getenv)

		repos, _ := cmd.Flags().GetStringSlice("repo")
		since, _ := cmd.Flags().GetString("since")
		until, _ := cmd.Flags().GetString("until")
		apiURL, _ := cmd.Flags().GetString("api-url")
		delay, _ := cmd.Flags().GetDuration("delay")
		strict, _ := cmd.Flags().GetBool("strict-window")
		summary, _ := cmd.Flags().GetBool("summary")
		asJSON, _ := cmd.Flags().GetBool("json")

		window, err := domain.ParseDateWindow(since, until)
		if err != nil {
			return err
		}

		// Inject dependencies and run the main business logic.
		githubGateway, err := gateway.NewGitHubGateway(gateway.Options{
			Token:        cfg.GitHubToken,
			APIURL:       apiURL,
			PageDelay:    delay,
			StrictWindow: strict,
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to create GitHub gateway: %w", err)
		}
		report, err := usecase.NewAggregator(githubGateway, logger).Aggregate(cmd.Context(), repos, window)
		if err != nil {
			return fmt.Errorf("failed to aggregate stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			jsonData, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal results to JSON: %w", err)
			}
			_, err = fmt.Fprintln(out, string(jsonData))
			return err
		}
		if err := usecase.WriteReport(out, report); err != nil {
			return err
		}
		if summary {
			return usecase.WriteReportSummary(out, report)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ghstatsCmd)
	ghstatsCmd.Flags().StringSliceP("repo", "r", defaultRepos, "Repositories to count, as owner/name")
	ghstatsCmd.Flags().String("since", "2024-01-01", "Start of the date window, inclusive (YYYY-MM-DD)")
	ghstatsCmd.Flags().String("until", "2025-01-01", "End of the date window, exclusive (YYYY-MM-DD)")
	ghstatsCmd.Flags().String("api-url", gateway.DefaultGitHubAPIURL, "GitHub REST API root")
	ghstatsCmd.Flags().Duration("delay", gateway.DefaultPageDelay, "Pause between successive page requests")
	ghstatsCmd.Flags().Bool("strict-window", false, "Also drop releases created on or after --until")
	ghstatsCmd.Flags().Bool("summary", false, "Print per-repository mean and median")
	ghstatsCmd.Flags().Bool("json", false, "Print the report as JSON")
}
