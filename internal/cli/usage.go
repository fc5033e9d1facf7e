// internal/cli/usage.go
package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/law-makers/vision-researcher/internal/config"
	"github.com/law-makers/vision-researcher/internal/ui"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show screenshot service quota",
	Long: `Queries the screenshot service for the remaining screenshot quota and the
current concurrency allowance of your access key.`,
	Example: `  vision-researcher usage
  vision-researcher usage --json`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	a := GetApp()
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	if err := a.Config.RequireSecrets(config.SecretScreenshotOne); err != nil {
		return err
	}

	u, err := a.Screenshots.Usage(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to query usage: %w", err)
	}

	out := cmd.OutOrStdout()
	if a.Config.JSONLog {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(u)
	}

	fmt.Fprintf(out, "\n%s\n", ui.Bold("Screenshot quota"))
	fmt.Fprintf(out, "  Total:       %d\n", u.Total)
	fmt.Fprintf(out, "  Used:        %d\n", u.Used)
	fmt.Fprintf(out, "  Available:   %s\n", ui.Success(fmt.Sprintf("%d", u.Available)))
	fmt.Fprintf(out, "  Concurrency: %d of %d free, resets %s\n\n",
		u.Concurrency.Remaining, u.Concurrency.Limit, u.ResetAt().Local().Format(time.Kitchen))
	return nil
}
