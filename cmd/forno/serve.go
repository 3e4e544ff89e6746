package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/aretw0/forno/internal/pizzeria"
	"github.com/aretw0/forno/internal/presentation/tui"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the demo pizzeria backend",
	Long: `Starts the in-memory pizzeria API, serving its OpenAPI document
at /openapi.json and Prometheus metrics at /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.ListenAddr
		}

		tui.PrintBanner()
		fmt.Printf("Pizzeria backend on %s\n", addr)
		fmt.Printf("OpenAPI document at %s/openapi.json\n", cfg.BaseURL)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		srv := pizzeria.New(pizzeria.WithLogger(logger))
		if err := srv.Run(ctx, addr, reg); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Pizzeria backend stopped gracefully")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Bind address (default from config)")
}
