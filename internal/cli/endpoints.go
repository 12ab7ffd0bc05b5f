package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xabinapal/mtcli/internal/dataapi"
	"github.com/xabinapal/mtcli/internal/profile"
)

// newEndpointsCmd creates the endpoints command.
func (cli *CLI) newEndpointsCmd() *cobra.Command {
	var refresh, save bool

	cmd := &cobra.Command{
		Use:   "endpoints",
		Short: "List the operations available on the current profile",
		Long: `List the operations the current profile's API version resolves to.

The catalog is fetched from the server unless one was saved in the profile.
Use --refresh to fetch it again and --save to keep it in the profile, so later
calls skip discovery.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runEndpoints(cmd.Context(), refresh, save)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the catalog from the server even if one is saved")
	cmd.Flags().BoolVar(&save, "save", false, "Save the catalog in the profile")

	return cmd
}

func (cli *CLI) runEndpoints(ctx context.Context, refresh, save bool) error {
	prof, err := cli.currentProfile()
	if err != nil {
		return err
	}

	client, err := cli.newClient(prof)
	if err != nil {
		return err
	}

	if refresh {
		if _, err := client.RefreshEndpoints(ctx); err != nil {
			return err
		}
	}

	catalog, err := client.Catalog(ctx)
	if err != nil {
		return err
	}

	if save {
		eps := catalog.Endpoints()
		if _, err := cli.Store.Update(prof.Name, profile.Fields{Endpoints: &eps}); err != nil {
			return fmt.Errorf("failed to save endpoints: %w", err)
		}
	}

	resolved := make([]dataapi.Endpoint, 0, catalog.Len())
	for _, id := range catalog.Operations(client.Version()) {
		ep, err := catalog.Resolve(id, client.Version())
		if err != nil {
			return err
		}
		resolved = append(resolved, ep)
	}

	return cli.output.Write(resolved, func() error {
		w := tabwriter.NewWriter(cli.rootCmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "OPERATION\tVERB\tROUTE\tSINCE")
		for _, ep := range resolved {
			fmt.Fprintf(w, "%s\t%s\t%s\tv%d\n", ep.ID, ep.Verb, ep.Route, ep.Version)
		}
		return w.Flush()
	})
}
