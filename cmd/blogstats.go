package cmd

import (
	"fmt"
	"os"

	"github.com/naka-gawa/site-stats/internal/config"
	"github.com/naka-gawa/site-stats/internal/content"
	"github.com/naka-gawa/site-stats/internal/gateway"
	"github.com/naka-gawa/site-stats/internal/usecase"
	"github.com/spf13/cobra"
)

var blogstatsCmd = &cobra.Command{
	Use:   "blogstats",
	Short: "Combines blog post views from the site and cross-posting platforms",
	Long: `Reads the front matter of every post in the content directory whose file name
starts with --prefix and prints, per post, a tab separated row:

  slug  total  site  medium  devto

Site views cover the last year. Requires DEVTO_API_KEY, MEDIUM_COOKIE and
UMAMI_TOKEN; UMAMI_SITE overrides the analytics website id.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd)
		cfg := config.FromEnv(os.Getenv)
		if err := cfg.Require(config.EnvDevtoAPIKey, config.EnvMediumCookie, config.EnvUmamiToken); err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("content-dir")
		prefix, _ := cmd.Flags().GetString("prefix")
		summary, _ := cmd.Flags().GetBool("summary")
		umamiURL, _ := cmd.Flags().GetString("umami-url")
		devtoURL, _ := cmd.Flags().GetString("devto-url")
		mediumURL, _ := cmd.Flags().GetString("medium-url")

		posts, err := content.LoadAll(dir, prefix)
		if err != nil {
			return err
		}
		logger.Printf("Found %d posts in %s", len(posts), dir)

		httpClient := newPlatformHTTPClient()
		aggregator := usecase.NewBlogAggregator(
			gateway.NewUmamiClient(httpClient, umamiURL, cfg.UmamiSite, cfg.UmamiToken, logger),
			gateway.NewDevtoClient(httpClient, devtoURL, cfg.DevtoAPIKey, logger),
			gateway.NewMediumClient(httpClient, mediumURL, cfg.MediumCookie, logger),
			logger,
		)
		results, err := aggregator.Aggregate(cmd.Context(), posts)
		if err != nil {
			return fmt.Errorf("failed to aggregate blog stats: %w", err)
		}

		out := cmd.OutOrStdout()
		if err := usecase.WriteBlogReport(out, results); err != nil {
			return err
		}
		if summary {
			return usecase.WriteBlogSummary(out, results)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blogstatsCmd)
	blogstatsCmd.Flags().String("content-dir", "content", "Directory holding the blog posts")
	blogstatsCmd.Flags().String("prefix", "2024-", "Only posts whose file name starts with this prefix")
	blogstatsCmd.Flags().Bool("summary", false, "Print total, mean and median views per post")
	blogstatsCmd.Flags().String("umami-url", gateway.DefaultUmamiURL, "Web analytics API root")
	blogstatsCmd.Flags().String("devto-url", gateway.DefaultDevtoURL, "Blogging platform API root")
	blogstatsCmd.Flags().String("medium-url", gateway.DefaultMediumURL, "Publishing platform GraphQL endpoint")
}
