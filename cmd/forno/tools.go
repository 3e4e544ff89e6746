package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/forno"
	"github.com/aretw0/forno/internal/config"
	"github.com/aretw0/forno/internal/presentation/tui"
	"github.com/aretw0/forno/pkg/domain"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools extracted from the backend's OpenAPI document",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		ctx := cmd.Context()
		tb, err := forno.Discover(ctx, cfg.ResolvedDocumentURL(), cfg.BaseURL,
			forno.WithTimeout(cfg.Timeout.Std()),
			forno.WithLogger(logger),
		)
		if err != nil {
			fmt.Printf("Error discovering backend: %v\n", err)
			os.Exit(1)
		}

		md := toolsMarkdown(cfg, tb.Tools())
		render := tui.NewRenderer()
		out, err := render(md)
		if err != nil {
			fmt.Print(md)
			return
		}
		fmt.Print(out)
	},
}

func toolsMarkdown(cfg config.Config, tools []domain.OperationDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tools for %s\n\n", cfg.BaseURL)
	for _, tool := range tools {
		fmt.Fprintf(&b, "## %s\n\n", tool.ToolName)
		fmt.Fprintf(&b, "`%s %s`\n\n", strings.ToUpper(tool.Method), tool.PathTemplate)
		if tool.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", tool.Summary)
		}
		if len(tool.Parameters) == 0 {
			continue
		}
		b.WriteString("| Parameter | Type | Location | Required | Default |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, p := range tool.Signature() {
			def := ""
			if p.Default != nil {
				def = fmt.Sprintf("%v", p.Default)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %t | %s |\n",
				p.Name, p.Type, p.Location, p.Required, def)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}
