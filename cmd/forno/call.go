package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/forno"
)

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Invoke a single tool against the backend",
	Long: `Invokes one extracted tool by name. Arguments are passed as
repeated --arg key=value flags; values are parsed as JSON when possible
and fall back to plain strings.

Example:
  forno call create_order --arg pizza_type=margherita --arg quantity=2`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		rawArgs, _ := cmd.Flags().GetStringArray("arg")
		toolArgs, err := parseArgs(rawArgs)
		if err != nil {
			fmt.Printf("Error parsing arguments: %v\n", err)
			os.Exit(1)
		}

		ctx := cmd.Context()
		tb, err := forno.Discover(ctx, cfg.ResolvedDocumentURL(), cfg.BaseURL,
			forno.WithTimeout(cfg.Timeout.Std()),
			forno.WithLogger(logger),
		)
		if err != nil {
			fmt.Printf("Error discovering backend: %v\n", err)
			os.Exit(1)
		}

		result := tb.Call(ctx, args[0], toolArgs)
		fmt.Println(result.Render())
		if !result.Ok {
			os.Exit(1)
		}
	},
}

// parseArgs converts key=value pairs into an argument mapping. Values
// that parse as JSON keep their JSON type, everything else is a string.
func parseArgs(pairs []string) (map[string]any, error) {
	args := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", pair)
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			args[key] = parsed
		} else {
			args[key] = value
		}
	}
	return args, nil
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().StringArray("arg", nil, "Tool argument as key=value (repeatable)")
}
