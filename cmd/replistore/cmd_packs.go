package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPacksCmd(storePath *string) *cobra.Command {
	var trustStat bool

	cmd := &cobra.Command{
		Use:   "packs",
		Short: "List pack files and report directory changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(*storePath)
			if err != nil {
				return err
			}
			dir := store.PackDirectory(trustStat)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "changed: %v\n", dir.SearchPacksAgain())

			packs, err := dir.Packs()
			if err != nil {
				return err
			}
			if len(packs) == 0 {
				fmt.Fprintln(out, "no packs")
				return nil
			}
			for _, name := range packs {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&trustStat, "trust-stat", true, "trust directory metadata to detect pack changes")

	return cmd
}
