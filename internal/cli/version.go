package cli

import (
	"github.com/spf13/cobra"

	"github.com/xabinapal/mtcli/internal/version"
)

// newVersionCmd creates the version command.
func (cli *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print mtcli version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			return cli.output.Write(info, func() error {
				cli.output.Printf("%s\n", info.String())
				return nil
			})
		},
	}
}
