package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/forno"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of forno",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("forno version %s\n", strings.TrimSpace(forno.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
