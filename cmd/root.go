// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// platformTimeout bounds single requests to the publishing and analytics platforms.
const platformTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "site-stats",
	Short: "Maintenance commands for a personal site's stats and projects list.",
	Long: `site-stats collects yearly activity of GitHub repositories, combines blog post
views from the site analytics and the platforms posts were cross-posted to, and
refreshes the star counts of the site's projects list.

Credentials are read from the environment; a .env file in the working directory
is loaded first when present.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Variables already set in the environment win over .env values.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}

// newLogger discards all logs unless --verbose is set, in which case they go to stderr.
func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.New(io.Discard, "", log.LstdFlags)
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger.SetOutput(cmd.ErrOrStderr())
	}
	return logger
}

func newPlatformHTTPClient() *http.Client {
	return &http.Client{Timeout: platformTimeout}
}
