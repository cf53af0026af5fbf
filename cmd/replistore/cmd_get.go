package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/WANdisco/replistore/pkg/object"
)

func newGetCmd(storePath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get <oid>",
		Short: "Copy an object out of the store",
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
			if repo.IsReplica() && !repo.IsReplicated(cmd.Context(), id) {
				return fmt.Errorf("object %s is not replicated yet", id.Short())
			}

			rc, err := repo.Store().Open(id)
			if err != nil {
				return err
			}
			defer rc.Close()

			if output == "" {
				_, err := io.Copy(cmd.OutOrStdout(), rc)
				return err
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, rc); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the object to this file instead of stdout")

	return cmd
}
