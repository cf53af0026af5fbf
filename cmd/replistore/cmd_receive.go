package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/WANdisco/replistore/pkg/object"
)

func newReceiveCmd(storePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "receive <oid> <file>",
		Short: "Apply a replicated object delivery",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := object.Parse(args[0])
			if err != nil {
				return err
			}
			repo, err := openRepository(*storePath)
			if err != nil {
				return err
			}

			applied, err := repo.Apply(id, func() error {
				f, err := os.Open(args[1])
				if err != nil {
					return err
				}
				defer f.Close()
				return repo.Store().Put(id, f)
			})
			if err != nil {
				return err
			}
			if err := repo.SaveTombstones(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !applied {
				fmt.Fprintf(out, "already applied %s\n", id)
				return nil
			}
			fmt.Fprintf(out, "applied %s\n", id)
			return nil
		},
	}
}
