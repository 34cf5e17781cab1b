package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/erpdesk/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "erpdesk: %v\n", err)
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:           "erpdesk",
		Short:         "Terminal client for the ERP backend",
		Long:          `erpdesk opens ERP programs as tabs, loads their button permissions and runs screen searches against the backend API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to config file (default: ~/.config/erpdesk/config.toml)")
	root.PersistentFlags().StringVar(&opts.PrefsPath, "prefs", "", "Path to prefs file (default: ~/.config/erpdesk/prefs.toml)")
	root.Flags().BoolVar(&opts.Refresh, "refresh", false, "Fetch menus from the backend even when the cache is valid")

	root.AddCommand(
		newResolveCommand(&opts),
		newCacheCommand(&opts),
	)
	return root
}

func newResolveCommand(opts *app.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Print the program number that owns a route",
		Long:  `Resolve a route against the cached menu tree and print the owning program number.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := app.Setup(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			programNo, err := app.ResolveProgram(cmd.Context(), env, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), programNo)
			return nil
		},
	}
}

func newCacheCommand(opts *app.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Menu cache tools",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove the cached menu tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := app.Setup(cmd.Context(), *opts)
			if err != nil {
				return err
			}
			defer func() { _ = env.Close() }()

			env.Cache.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "menu cache cleared")
			return nil
		},
	})
	return cmd
}
