package main

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	err := root.Execute()
	glog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var storePath string
	var verbose int

	root := &cobra.Command{
		Use:   "replistore",
		Short: "Replication-aware content-addressed object store",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(verbose)
		},
	}
	root.PersistentFlags().StringVar(&storePath, "store", ".", "path to the object store")
	root.PersistentFlags().IntVar(&verbose, "verbose", 0, "log verbosity level")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(&storePath))
	root.AddCommand(newPutCmd(&storePath))
	root.AddCommand(newGetCmd(&storePath))
	root.AddCommand(newStatCmd(&storePath))
	root.AddCommand(newReceiveCmd(&storePath))
	root.AddCommand(newRmCmd(&storePath))
	root.AddCommand(newPacksCmd(&storePath))
	root.AddCommand(newStatusCmd(&storePath))

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "replistore 0.1.0-dev")
		},
	}
}
