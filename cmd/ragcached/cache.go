package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gastwerk/ragcache/cache"
	"github.com/gastwerk/ragcache/rag"
)

func newCacheCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and maintain the response cache",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	cmd.AddCommand(
		newCacheStatsCmd(&configPath),
		newCacheClearCmd(&configPath),
		newCacheInvalidateCmd(&configPath),
		newCacheHealthCmd(&configPath),
	)
	return cmd
}

// withMaintenance opens the configured store, runs fn, and closes the
// store again.
func withMaintenance(configPath string, fn func(ctx context.Context, m *cache.Maintenance) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	return fn(ctx, cache.NewMaintenance(store, nil, nil))
}

func newCacheStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entry count and sample keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaintenance(*configPath, func(ctx context.Context, m *cache.Maintenance) error {
				stats := m.Stats(ctx)
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(stats)
			})
		},
	}
}

func newCacheClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all cached responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaintenance(*configPath, func(ctx context.Context, m *cache.Maintenance) error {
				cleared := m.ClearAll(ctx)
				fmt.Printf("cleared %d entries\n", cleared)
				return nil
			})
		},
	}
}

func newCacheInvalidateCmd(configPath *string) *cobra.Command {
	var contextJSON string

	cmd := &cobra.Command{
		Use:   "invalidate <query>",
		Short: "Remove the cached response for one query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var qctx rag.Context
			if contextJSON != "" {
				if err := json.Unmarshal([]byte(contextJSON), &qctx); err != nil {
					return fmt.Errorf("parse --context: %w", err)
				}
			}

			return withMaintenance(*configPath, func(ctx context.Context, m *cache.Maintenance) error {
				if err := m.Invalidate(ctx, args[0], qctx); err != nil {
					return err
				}
				fmt.Println("invalidated")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&contextJSON, "context", "", "query context as JSON object")
	return cmd
}

func newCacheHealthCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Probe store availability with a write-then-read round trip",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMaintenance(*configPath, func(ctx context.Context, m *cache.Maintenance) error {
				if !m.HealthProbe(ctx) {
					return fmt.Errorf("cache unhealthy")
				}
				fmt.Println("cache healthy")
				return nil
			})
		},
	}
}
