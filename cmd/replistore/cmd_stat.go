package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/WANdisco/replistore/pkg/lfs"
	"github.com/WANdisco/replistore/pkg/object"
)

func newStatCmd(storePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stat <oid>",
		Short: "Describe an object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := object.Parse(args[0])
			if err != nil {
				return err
			}
			repo, err := openRepository(*storePath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "object: %s\n", id)
			if size := repo.Size(cmd.Context(), id); size == lfs.SizeUnknown {
				fmt.Fprintln(out, "size: unknown")
			} else {
				fmt.Fprintf(out, "size: %s (%d bytes)\n", humanize.Bytes(uint64(size)), size)
			}
			fmt.Fprintf(out, "replicated: %v\n", repo.IsReplicated(cmd.Context(), id))
			fmt.Fprintf(out, "download: %s\n", repo.DownloadAction(id).HRef)
			fmt.Fprintf(out, "path: %s\n", repo.Store().Path(id))
			return nil
		},
	}
}
