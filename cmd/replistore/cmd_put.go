package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/WANdisco/replistore/pkg/object"
)

func newPutCmd(storePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "put <file>...",
		Short: "Store files as content-addressed objects",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := openRepository(*storePath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				id := object.Sum(data)
				size := humanize.Bytes(uint64(len(data)))
				if repo.Store().Has(id) {
					fmt.Fprintf(out, "exists %s %s (%s)\n", id, path, size)
					continue
				}
				if err := repo.Store().Put(id, bytes.NewReader(data)); err != nil {
					return fmt.Errorf("store %s: %w", path, err)
				}
				fmt.Fprintf(out, "stored %s %s (%s)\n", id, path, size)
			}
			return nil
		},
	}
}
