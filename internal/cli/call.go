package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xabinapal/mtcli/internal/dataapi"
	"github.com/xabinapal/mtcli/internal/utils"
)

// newCallCmd creates the call command. It takes its arguments unparsed so
// that operation parameters are never mistaken for mtcli flags.
func (cli *CLI) newCallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "call <operation> [--param[=value]...]",
		Short: "Call an API operation on the current profile",
		Long: `Call an operation published in the endpoint catalog of the current profile.

Parameters are given as --name=value or --name value. Those named in the
operation's route are substituted into the path; the rest are sent as the
query string or form body. Calling an unknown command does the same, so
"mtcli call list_sites" and "mtcli list_sites" are equivalent.

Global flags must come before the operation name.

Examples:
  mtcli call list_sites --limit=5
  mtcli -o json call get_entry --site_id 1 --entry_id 42`,
		DisableFlagParsing: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "--help" || args[0] == "-h" {
				return cmd.Help()
			}

			rest, err := cli.parseGlobalFlags(args)
			if err != nil {
				return err
			}
			if err := cli.initialize(); err != nil {
				return err
			}
			if len(rest) == 0 {
				return errors.New("operation name required")
			}

			return cli.runCall(cmd.Context(), rest[0], utils.ParseOptions(rest[1:]))
		},
	}
}

// runCall calls operationID on the current profile and prints the response.
func (cli *CLI) runCall(ctx context.Context, operationID string, params map[string]string) error {
	prof, err := cli.currentProfile()
	if err != nil {
		return err
	}

	client, err := cli.newClient(prof)
	if err != nil {
		return err
	}

	resp, callErr := client.Call(ctx, operationID, params)

	// A rejected token is forgotten even when the call failed.
	if err := cli.saveSession(prof, client); err != nil {
		return err
	}

	if callErr != nil {
		var respErr *dataapi.ResponseError
		if errors.As(callErr, &respErr) && respErr.Body != "" {
			if err := cli.output.WriteRaw([]byte(respErr.Body)); err != nil {
				cli.Log.Debugf("Failed to print error response: %v", err)
			}
		}
		return fmt.Errorf("%s: %w", operationID, callErr)
	}

	return cli.output.WriteRaw(resp.Body)
}
