package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/WANdisco/replistore/pkg/storage"
)

func newInitCmd(storePath *string) *cobra.Command {
	var replicated bool
	var replicatorConfig string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty object store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(*storePath)
			if err != nil {
				return fmt.Errorf("resolve store path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			store := storage.NewContentStore(abs)
			cfg := &storage.Config{
				Replicated:       replicated,
				ReplicatorConfig: replicatorConfig,
			}
			if err := store.WriteConfig(cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized object store in %s\n", abs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&replicated, "replicated", false, "mark the store as replicated")
	cmd.Flags().StringVar(&replicatorConfig, "replicator-config", "", "path to the node replicator configuration")

	return cmd
}
