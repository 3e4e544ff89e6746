package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/forno"
	"github.com/aretw0/forno/internal/config"
	"github.com/aretw0/forno/pkg/adapters/memory"
	redisadapter "github.com/aretw0/forno/pkg/adapters/redis"
	"github.com/aretw0/forno/pkg/flow"
	"github.com/aretw0/forno/pkg/ports"
)

var orderCmd = &cobra.Command{
	Use:   "order <pizza_type>",
	Short: "Run the two-stage order and scheduling workflow",
	Long: `Places an order against the backend, then runs the scheduling
stage: delivery scheduling, calendar event, receipt and notification.
The order confirmation flows from the first stage into the second.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cfg)

		size, _ := cmd.Flags().GetString("size")
		quantity, _ := cmd.Flags().GetInt("quantity")
		notes, _ := cmd.Flags().GetString("notes")
		recipient, _ := cmd.Flags().GetString("recipient")

		ctx := cmd.Context()
		tb, err := forno.Discover(ctx, cfg.ResolvedDocumentURL(), cfg.BaseURL,
			forno.WithTimeout(cfg.Timeout.Std()),
			forno.WithLogger(logger),
		)
		if err != nil {
			fmt.Printf("Error discovering backend: %v\n", err)
			os.Exit(1)
		}

		scheduler := flow.NewScheduler(historyStore(cfg),
			flow.WithReceiptsDir(cfg.ReceiptsDir),
			flow.WithSchedulerLogger(logger),
		)
		scheduler.RegisterTools(tb.Registry())

		pipeline := flow.NewPipeline(tb, flow.WithPipelineLogger(logger))
		state, err := pipeline.Run(ctx, flow.OrderRequest{
			PizzaType: args[0],
			Size:      size,
			Quantity:  quantity,
			Notes:     notes,
			Recipient: recipient,
		})
		if err != nil {
			fmt.Printf("Workflow error: %v\n", err)
			os.Exit(1)
		}

		out, _ := json.MarshalIndent(state, "", "  ")
		fmt.Println(string(out))
		if !state.Completed {
			os.Exit(1)
		}
	},
}

func historyStore(cfg config.Config) ports.HistoryStore {
	if cfg.RedisAddr != "" {
		return redisadapter.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	return memory.NewHistoryStore()
}

func init() {
	rootCmd.AddCommand(orderCmd)
	orderCmd.Flags().String("size", "", "Pizza size: small, medium or large")
	orderCmd.Flags().Int("quantity", 0, "Number of pizzas")
	orderCmd.Flags().String("notes", "", "Special instructions")
	orderCmd.Flags().String("recipient", "", "Notification recipient")
}
