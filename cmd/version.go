package cmd

import (
	"fmt"

	"github.com/giantswarm/actionmock/pkg/harness"
	"github.com/giantswarm/actionmock/pkg/mock"
	"github.com/giantswarm/actionmock/pkg/mock/execmock"
	"github.com/giantswarm/actionmock/pkg/mock/githubmock"

	"github.com/spf13/cobra"
)

// interceptorIDs lists the interceptors in the order the loader installs them.
var interceptorIDs = []string{execmock.ID, githubmock.ID}

func newVersionCmd() *cobra.Command {
	var showInterceptors bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of actionmock",
		Long: `Print the version number of actionmock.

With --interceptors, also list every interceptor the loader installs together
with the environment variable that carries its rules.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "actionmock version %s\n", rootCmd.Version)
			if !showInterceptors {
				return
			}
			for _, id := range interceptorIDs {
				fmt.Fprintf(out, "  %-8s %s\n", id, mock.EnvVar(id))
			}
			fmt.Fprintf(out, "  loader   %s=1\n", harness.LoaderEnvVar)
		},
	}

	cmd.Flags().BoolVar(&showInterceptors, "interceptors", false, "List interceptors and their rule variables")
	return cmd
}
