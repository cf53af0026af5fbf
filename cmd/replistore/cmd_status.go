package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WANdisco/replistore/pkg/replication"
)

func newStatusCmd(storePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the store's replication configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*storePath)
			if err != nil {
				return err
			}
			cfg, err := store.ReadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "store: %s\n", store.Root())
			fmt.Fprintf(out, "replicated: %v\n", cfg.Replicated)
			if !cfg.Replicated {
				return nil
			}
			if cfg.ReplicatorConfig == "" {
				fmt.Fprintln(out, "replicator config: (none)")
				return nil
			}
			fmt.Fprintf(out, "replicator config: %s\n", cfg.ReplicatorConfig)

			node, err := replication.NewLoader(cfg.ReplicatorConfig).Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "local port: %d\n", node.Port())
			fmt.Fprintf(out, "deploy timeout: %s\n", node.RepoDeployTimeout())
			if group := node.GroupID(); group != "" {
				fmt.Fprintf(out, "replica group: %s\n", group)
			} else {
				fmt.Fprintln(out, "replica group: (none)")
			}
			if endpoint := node.Authority(); endpoint != "" {
				fmt.Fprintf(out, "authority: %s\n", endpoint)
			} else {
				fmt.Fprintln(out, "authority: (none)")
			}
			fmt.Fprintf(out, "tombstone capacity: %d\n", node.TombstoneCapacity())
			return nil
		},
	}
}
