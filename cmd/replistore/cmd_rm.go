package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/WANdisco/replistore/pkg/object"
)

func newRmCmd(storePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <oid>",
		Short: "Remove an object from the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := object.Parse(args[0])
			if err != nil {
				return err
			}
			store, err := openStore(*storePath)
			if err != nil {
				return err
			}
			if !store.Has(id) {
				return fmt.Errorf("object %s not in store", id.Short())
			}
			if err := store.Remove(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", id)
			return nil
		},
	}
}
