package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	f := cmd.PersistentFlags()
	f.BoolP("verbose", "v", false, "Enable debug logging")
	f.BoolP("quiet", "q", false, "Suppress all output except errors")
	f.Bool("json", false, "Output in JSON format only")
	f.StringArray("proxy", nil, "Proxy handed to the capture backend (repeatable)")
	f.StringArrayP("header", "H", nil, "Extra request header for the chrome backend, \"Name: Value\" (repeatable)")
	f.String("timeout", "30s", "Timeout for plain HTTP downloads")
	f.String("capture-timeout", "90s", "Timeout for capturing one page")
	f.String("vision-timeout", "60s", "Timeout for one vision request")
	f.String("user-agent", "", "Custom user agent string")
	f.String("config", "", "Path to configuration file (optional)")
	f.String("env-file", DefaultEnvFile, "Dotenv file to load secrets from")
	f.String("backend", DefaultBackend, "Capture backend: screenshotone or chrome")
	f.String("model", DefaultModel, "Vision model")
	f.Int("max-tokens", DefaultMaxTokens, "Maximum tokens per band answer")
	f.Int("band-height", DefaultBandHeight, "Height in pixels of each analyzed band")
	f.StringP("output", "o", "", "Write the session report to a file (.json, .csv or .md)")
}
