package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xabinapal/mtcli/internal/dataapi"
	"github.com/xabinapal/mtcli/internal/profile"
)

// newLogoutCmd creates the logout command.
func (cli *CLI) newLogoutCmd() *cobra.Command {
	var noRevoke bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session of the current profile and forget its token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runLogout(cmd.Context(), !noRevoke)
		},
	}

	cmd.Flags().BoolVar(&noRevoke, "no-revoke", false, "Only forget the token locally")

	return cmd
}

// runLogout revokes the session on the server, if asked to, and clears the
// stored token.
func (cli *CLI) runLogout(ctx context.Context, revoke bool) error {
	prof, err := cli.currentProfile()
	if err != nil {
		return err
	}
	if !prof.LoggedIn() {
		return fmt.Errorf("%w: %s", ErrNotLoggedIn, prof.Name)
	}

	if revoke {
		client, err := cli.newClient(prof)
		if err != nil {
			return err
		}

		resp, err := client.Call(ctx, dataapi.OperationRevokeAuthentication, nil)
		if err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		if !resp.TokenInvalidated && resp.Get("status").String() != "success" {
			return fmt.Errorf("logout failed: unexpected response %s", resp.String())
		}
	}

	empty := ""
	if _, err := cli.Store.Update(prof.Name, profile.Fields{AccessToken: &empty}); err != nil {
		return fmt.Errorf("failed to clear access token: %w", err)
	}

	return cli.output.Write(map[string]any{"profile": prof.Name, "loggedIn": false}, func() error {
		cli.output.Printf("Logged out.\n")
		return nil
	})
}
