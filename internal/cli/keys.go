// internal/cli/keys.go
package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/vision-researcher/internal/config"
	"github.com/law-makers/vision-researcher/internal/ui"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage API keys in the OS keyring",
	Long: `Store and remove the API keys used for screenshots and vision analysis.

Keys are kept in your OS keyring. Environment variables and the .env file
take precedence over stored keys.`,
	Example: `  # Store the vision key (prompted from stdin)
  vision-researcher keys set openai

  # Store the screenshot key directly
  vision-researcher keys set screenshotone abc123

  # Remove a stored key
  vision-researcher keys delete openai`,
}

var keysSetCmd = &cobra.Command{
	Use:       "set <name> [value]",
	Short:     "Store a key (screenshotone or openai)",
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: config.SecretNames,
	RunE:      runKeysSet,
}

var keysDeleteCmd = &cobra.Command{
	Use:       "delete <name>",
	Short:     "Remove a stored key",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.SecretNames,
	RunE:      runKeysDelete,
}

func init() {
	rootCmd.AddCommand(keysCmd)
	keysCmd.AddCommand(keysSetCmd)
	keysCmd.AddCommand(keysDeleteCmd)
}

func runKeysSet(cmd *cobra.Command, args []string) error {
	name := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		fmt.Fprintf(cmd.ErrOrStderr(), "Enter %s key: ", name)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read key: %w", err)
		}
		value = line
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("key must not be empty")
	}
	cmd.SilenceUsage = true

	if err := config.SetSecret(name, value); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Key '%s' saved to keyring.\n", ui.Success("✓"), name)
	return nil
}

func runKeysDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	cmd.SilenceUsage = true

	if err := config.DeleteSecret(name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Key '%s' deleted.\n", ui.Success("✓"), name)
	return nil
}
