// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/vision-researcher/internal/app"
	"github.com/law-makers/vision-researcher/internal/config"
	"github.com/law-makers/vision-researcher/internal/ui"
	urlutil "github.com/law-makers/vision-researcher/internal/utils/url"
	"github.com/law-makers/vision-researcher/internal/utils/output"
)

// rootCmd runs an audit session when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vision-researcher <url> <prompt> <max-pages>",
	Short: "Audit a website visually with a vision model",
	Long: `Vision Researcher walks a website one page at a time. Each page is rendered to a
full-page screenshot, the screenshot is split into bands and every band is shown
to a vision model together with your prompt. The answers form the page report.
The next page is the first same-site link not visited yet.

The session stops after max-pages pages, or earlier when no unvisited link is left.`,
	Example: `  # Check every page for a cookie banner, at most 5 pages
  vision-researcher https://example.com "Is there a cookie banner?" 5

  # Render locally instead of through the screenshot service
  vision-researcher --backend chrome https://example.com "Describe the layout" 3

  # Save the session report as Markdown
  vision-researcher -o audit.md https://example.com "List accessibility issues" 10`,
	Version: "0.1.0",
	Args:    auditArgs,
	RunE:    runAudit,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
// ctx is cancelled on interrupt; the running session then ends with a summary.
func Execute(ctx context.Context) int {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// auditArgs validates <url> <prompt> <max-pages>
func auditArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("expected 3 arguments (url, prompt, max-pages), got %d", len(args))
	}
	if err := urlutil.ValidateURL(args[0]); err != nil {
		return err
	}
	if strings.TrimSpace(args[1]) == "" {
		return fmt.Errorf("prompt must not be empty")
	}
	if n, err := strconv.Atoi(args[2]); err != nil || n < 1 {
		return fmt.Errorf("max-pages must be a positive integer, got %q", args[2])
	}
	return nil
}

func runAudit(cmd *cobra.Command, args []string) error {
	// Arguments are valid from here on; failures are not usage errors
	cmd.SilenceUsage = true

	a := GetApp()
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	seed, prompt := args[0], args[1]
	budget, _ := strconv.Atoi(args[2])

	if err := a.Config.RequireSecrets(a.Config.AuditSecrets()...); err != nil {
		return err
	}

	p := newPrinter(cmd.OutOrStdout(), a.Config)
	a.Analyzer.SetProgress(p.progress)
	controller := a.NewController(p.page)

	summary, err := controller.Run(cmd.Context(), seed, prompt, budget)
	if err != nil {
		return err
	}
	if err := p.summary(summary); err != nil {
		return err
	}

	if a.Config.OutputFile != "" {
		if err := output.SaveReport(summary, a.Config.OutputFile); err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		if !a.Config.JSONLog && !a.Config.Quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s %s\n", ui.Success("Report saved to"), a.Config.OutputFile)
		}
	}
	return nil
}

func init() {
	// Initialize the application before running commands (not for -h/help)
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp() != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		appCtx, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, appCtx)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		appCtx := GetApp()
		if appCtx == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), appCtx.Config.HTTPTimeout)
		defer cancel()
		_ = appCtx.Close(ctx)
		SetApp(cmd, nil)
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for Vision Researcher")
	rootCmd.Flags().Bool("version", false, "Version for Vision Researcher")
}

func init() {
	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpFunc(customHelpFunc)
	rootCmd.SetUsageFunc(customUsageFunc)
}

// secretsHelp is appended to the root help; every other command inherits
// the same secrets through the config layer
var secretsHelp = [][2]string{
	{config.EnvScreenshotOneKey, "screenshot service access key (not needed with --backend chrome)"},
	{config.EnvOpenAIKey, "vision service API key"},
}

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)
	if cmd.Short != "" {
		fmt.Fprintf(w, "%s\n", cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", wrapText(cmd.Long, 80))
	}

	writeUsage(w, cmd)
	writeExamples(w, cmd.Example)
	writeCommands(w, cmd)

	if cmd.HasAvailableLocalFlags() {
		heading(w, "Flags")
		printFlagsTo(w, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		heading(w, "Global Flags")
		printFlagsTo(w, cmd.InheritedFlags().FlagUsages())
	}

	if !cmd.HasParent() {
		heading(w, "Environment")
		for _, s := range secretsHelp {
			fmt.Fprintf(w, "  %s%-24s%s%s%s%s\n", ui.ColorGreen, s[0], ui.ColorReset, ui.ColorDim, s[1], ui.ColorReset)
		}
		fmt.Fprintf(w, "  %sKeys may also live in a .env file or the OS keyring (see \"keys --help\").%s\n", ui.ColorDim, ui.ColorReset)
	}

	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "\n%sUse \"%s%s%s %s<command>%s %s--help%s\" for more information about a command.%s\n",
			ui.ColorDim,
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
			ui.ColorYellow, ui.ColorReset+ui.ColorDim,
			ui.ColorGreen, ui.ColorReset+ui.ColorDim,
			ui.ColorReset)
	}
	fmt.Fprintln(w)
}

// customUsageFunc is shown on argument errors, so it goes to stderr and
// leaves out the long description
func customUsageFunc(cmd *cobra.Command) error {
	w := cmd.ErrOrStderr()

	writeUsage(w, cmd)
	writeCommands(w, cmd)
	if cmd.HasAvailableLocalFlags() {
		heading(w, "Flags")
		printFlagsTo(w, cmd.LocalFlags().FlagUsages())
	}

	fmt.Fprintf(w, "\n%sUse \"%s%s%s %s--help%s\" for more information.%s\n",
		ui.ColorDim,
		ui.ColorCyan, cmd.CommandPath(), ui.ColorReset+ui.ColorDim,
		ui.ColorGreen, ui.ColorReset+ui.ColorDim,
		ui.ColorReset)
	return nil
}

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorWhite, title, ui.ColorReset)
}

func writeUsage(w io.Writer, cmd *cobra.Command) {
	heading(w, "Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s%s%s %s<command>%s %s[flags]%s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}
}

// writeExamples prints comment lines dimmed and command lines as shell prompts
func writeExamples(w io.Writer, example string) {
	if strings.TrimSpace(example) == "" {
		return
	}
	heading(w, "Examples")
	lastWasCommand := false
	for _, line := range strings.Split(example, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "#"):
			if lastWasCommand {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "  %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
			lastWasCommand = false
		default:
			fmt.Fprintf(w, "  %s$ %s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			lastWasCommand = true
		}
	}
}

func writeCommands(w io.Writer, cmd *cobra.Command) {
	if !cmd.HasAvailableSubCommands() {
		return
	}
	var available []*cobra.Command
	width := 0
	for _, c := range cmd.Commands() {
		if c.IsAvailableCommand() && c.Name() != "help" {
			available = append(available, c)
			width = max(width, len(c.Name()))
		}
	}

	heading(w, "Commands")
	for _, c := range available {
		fmt.Fprintf(w, "  %s%-*s%s  %s%s%s\n",
			ui.ColorCyan, width, c.Name(), ui.ColorReset,
			ui.ColorDim, c.Short, ui.ColorReset)
	}
}

// printFlagsTo aligns pflag's usage text into two colored columns
func printFlagsTo(w io.Writer, flagUsages string) {
	lines := strings.Split(flagUsages, "\n")

	// the flag column is at least 28 wide
	width := 28
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if strings.HasPrefix(trimmed, "-") {
			flagPart, _, _ := strings.Cut(trimmed, "  ")
			width = max(width, len(strings.TrimSpace(flagPart)))
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") {
			// continuation of the previous description
			fmt.Fprintf(w, "%s%s%s%s\n", strings.Repeat(" ", width+4), ui.ColorDim, trimmed, ui.ColorReset)
			continue
		}
		flagPart, desc, ok := strings.Cut(trimmed, "  ")
		if !ok {
			fmt.Fprintf(w, "  %s%s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			continue
		}
		fmt.Fprintf(w, "  %s%-*s%s  %s%s%s\n",
			ui.ColorGreen, width, strings.TrimSpace(flagPart), ui.ColorReset,
			ui.ColorDim, strings.TrimSpace(desc), ui.ColorReset)
	}
}

// wrapText wraps text at the specified width while preserving paragraphs
func wrapText(text string, width int) string {
	// Split by double newlines to preserve paragraphs
	paragraphs := strings.Split(text, "\n\n")
	var wrappedParagraphs []string

	for _, para := range paragraphs {
		// Split by single newlines to preserve intentional line breaks
		lines := strings.Split(para, "\n")
		var wrappedLines []string

		for _, line := range lines {
			trimmedLine := strings.TrimSpace(line)
			if trimmedLine == "" {
				continue
			}

			// Check if this is a bullet point or list item
			if strings.HasPrefix(trimmedLine, "-") || strings.HasPrefix(trimmedLine, "*") {
				// Don't wrap bullet points with previous content
				wrappedLines = append(wrappedLines, trimmedLine)
				continue
			}

			// Wrap regular lines
			words := strings.Fields(trimmedLine)
			if len(words) == 0 {
				continue
			}

			var currentLine strings.Builder
			for _, word := range words {
				if currentLine.Len() == 0 {
					currentLine.WriteString(word)
				} else if currentLine.Len()+1+len(word) <= width {
					currentLine.WriteString(" ")
					currentLine.WriteString(word)
				} else {
					wrappedLines = append(wrappedLines, currentLine.String())
					currentLine.Reset()
					currentLine.WriteString(word)
				}
			}

			if currentLine.Len() > 0 {
				wrappedLines = append(wrappedLines, currentLine.String())
			}
		}

		if len(wrappedLines) > 0 {
			wrappedParagraphs = append(wrappedParagraphs, strings.Join(wrappedLines, "\n"))
		}
	}

	return strings.Join(wrappedParagraphs, "\n\n")
}
