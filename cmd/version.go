package cmd

import (
	"testskel/internal/version"

	"github.com/spf13/cobra"
)

// Build information set via ldflags, e.g. -X testskel/cmd.Version=v1.0.0.
//
//nolint:gochecknoglobals // Required for build-time injection via ldflags.
var (
	Version   string
	Commit    string
	BuildTime string
)

// newVersionCmd creates and returns the version command.
func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		// Version output needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVersion(cmd, short)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	return cmd
}

func runVersion(cmd *cobra.Command, short bool) error {
	if Version != "" || Commit != "" || BuildTime != "" {
		version.SetBuildVars(Version, Commit, BuildTime)
	}
	return version.Get().Write(cmd.OutOrStdout(), short)
}
