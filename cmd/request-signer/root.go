package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "request-signer",
		Short:             "Sign outbound API requests with a shared app secret.",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}
	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newSignCommand())
	cmd.AddCommand(newVerifyCommand())
	return cmd
}
