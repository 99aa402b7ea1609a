package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/waxrank/waxrank/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the enrichment cache document",
	}

	cmd.PersistentFlags().StringVar(&path, "cache", defaultCacheFile, "cache document path")

	cmd.AddCommand(c.cacheInfoCommand(&path))
	cmd.AddCommand(c.cachePathCommand(&path))
	cmd.AddCommand(c.cacheClearCommand(&path))

	return cmd
}

// cacheInfoCommand creates the "cache info" subcommand.
func (c *CLI) cacheInfoCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache entry and fragment counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(*path); os.IsNotExist(err) {
				printInfo("Cache is empty")
				printDetail("Path: %s", *path)
				return nil
			}

			store := cache.Load(*path)
			printInfo("Cache document")
			printKeyValue("Path", *path)
			printKeyValue("Releases", fmt.Sprintf("%d", store.Len()))
			printKeyValue("Fragments", fmt.Sprintf("%d", store.Fragments()))
			if updated := store.UpdatedAt(); updated != "" {
				printKeyValue("Updated", updated)
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache document path",
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(*path)
			if err != nil {
				return err
			}
			fmt.Println(abs)
			return nil
		},
	}
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand(path *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the cache document",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := cache.Load(*path)
			if err := os.Remove(*path); err != nil {
				if os.IsNotExist(err) {
					printInfo("Cache is empty")
					return nil
				}
				return fmt.Errorf("removing cache document: %w", err)
			}
			printSuccess("Cleared %d cached releases", store.Len())
			printDetail("Path: %s", *path)
			return nil
		},
	}
}
