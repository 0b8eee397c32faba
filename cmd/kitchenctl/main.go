// Package main provides kitchenctl, an operator tool that runs pipelines
// against the configured workflow engine and normalizes saved outputs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Harshavardhan-28/AI-agents-assemble/backend/config"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/llm"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/logging"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/normalize"
	"github.com/Harshavardhan-28/AI-agents-assemble/backend/internal/pipeline"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           "kitchenctl",
		Short:         "Operate Kitchen OS pipelines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	logger := func() *slog.Logger {
		return logging.NewWithWriter(os.Stderr, logLevel, "text")
	}
	cmd.AddCommand(runCmd(logger), pollCmd(logger), normalizeCmd())
	return cmd
}

// newClient builds the facade from the same configuration the server uses
func newClient(ctx context.Context, logger *slog.Logger) (*pipeline.Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	generator, err := llm.New(ctx, cfg.Gemini, nil, logger)
	if err != nil {
		return nil, err
	}
	var opts []pipeline.Option
	if generator != nil {
		opts = append(opts, pipeline.WithGenerator(generator))
	}
	return pipeline.NewClient(cfg.Kestra, logger, opts...), nil
}

func runCmd(logger func() *slog.Logger) *cobra.Command {
	var (
		in        pipeline.Inputs
		diet      string
		allergies string
	)

	cmd := &cobra.Command{
		Use:       "run <inventory|recipes|shopping|main>",
		Short:     "Run one pipeline and print its normalized result",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"inventory", "recipes", "shopping", "main"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := pipeline.ParseKind(args[0])
			if err != nil {
				return err
			}
			in.DietPreferences = splitFlag(diet)
			in.Allergies = splitFlag(allergies)

			client, err := newClient(cmd.Context(), logger())
			if err != nil {
				return err
			}

			var result any
			switch kind {
			case pipeline.KindInventory:
				result, err = client.Inventory(cmd.Context(), in)
			case pipeline.KindRecipes:
				result, err = client.Recipes(cmd.Context(), in)
			case pipeline.KindShopping:
				result, err = client.ShoppingList(cmd.Context(), in)
			case pipeline.KindMain:
				result, err = client.Full(cmd.Context(), in)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&in.UserID, "user", "", "User id the run belongs to")
	cmd.Flags().StringVar(&in.FridgeImage, "image", "", "Fridge photo URL")
	cmd.Flags().StringVar(&in.ManualInventory, "manual", "", "Free text inventory")
	cmd.Flags().StringVar(&in.SkillLevel, "skill", "", "Skill level (beginner, intermediate, advanced)")
	cmd.Flags().IntVar(&in.AvailableTimeMinutes, "time", 0, "Available cooking time in minutes")
	cmd.Flags().StringVar(&diet, "diet", "", "Comma separated dietary preferences")
	cmd.Flags().StringVar(&allergies, "allergies", "", "Comma separated allergies")
	cmd.Flags().StringVar(&in.RecipeFilter, "recipe", "", "Only shop for this recipe")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func pollCmd(logger func() *slog.Logger) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "poll <executionID>",
		Short: "Wait for an execution and print its raw output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := pipeline.ParseKind(kind)
			if err != nil {
				return err
			}
			client, err := newClient(cmd.Context(), logger())
			if err != nil {
				return err
			}
			output, err := client.Await(cmd.Context(), k, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(pipeline.KindMain), "Pipeline kind of the execution")
	return cmd
}

func normalizeCmd() *cobra.Command {
	var shape string

	cmd := &cobra.Command{
		Use:   "normalize [file]",
		Short: "Normalize a saved pipeline output read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				data []byte
				err  error
			)
			if len(args) == 1 {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			var raw any
			if err := json.Unmarshal(data, &raw); err != nil {
				raw = string(data)
			}

			var result any
			switch shape {
			case "plan":
				result, err = normalize.Plan(raw)
			case "inventory":
				result, err = normalize.Inventory(raw)
			case "shopping":
				result, err = normalize.ShoppingList(raw)
			case "main":
				result, err = normalize.Full(raw)
			default:
				return fmt.Errorf("unknown shape %q", shape)
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "plan", "Result shape (plan, inventory, shopping, main)")
	return cmd
}

func splitFlag(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
