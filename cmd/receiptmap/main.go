package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "receiptmap",
		Short:        "Interactive map of receipts across Japan",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(placeCmd())
	rootCmd.AddCommand(summaryCmd())
	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(exploreCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Check the configuration, load every asset and validate the placed scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.Context(), args[0])
		},
	}
}

func placeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "place [project-path]",
		Short: "Place every receipt and print points, summary and findings as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlace(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary [project-path]",
		Short: "Print receipt counts and spend per region, city and category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd.Context(), args[0], cmd.OutOrStdout())
		},
	}
}

func renderCmd() *cobra.Command {
	var opts renderOptions

	cmd := &cobra.Command{
		Use:   "render [project-path]",
		Short: "Render the scene to a PNG, optionally after a sequence of clicks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "output", "o", "receiptmap.png", "output PNG path")
	cmd.Flags().StringArrayVar(&opts.clicks, "click", nil, "screen position x,y to click (repeatable, applied in order)")
	cmd.Flags().StringVar(&opts.selectAt, "select", "", "screen position x,y to double-click after the clicks")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local server with the interactive browser view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), args[0], port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (0 uses server.port from the config)")
	return cmd
}

func exploreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explore [project-path]",
		Short: "Explore the scene in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplore(cmd.Context(), args[0])
		},
	}
}
