package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/xabinapal/mtcli/internal/dataapi"
	"github.com/xabinapal/mtcli/internal/profile"
	"github.com/xabinapal/mtcli/internal/utils"
)

// newLoginCmd creates the login command.
func (cli *CLI) newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username> [password]",
		Short: "Authenticate to the current profile and store the access token",
		Long: `Authenticate to the Data API of the current profile.

The access token returned by the server is stored in the profile and attached
to later calls. When the password is omitted it is read from the terminal.

Examples:
  mtcli login admin
  echo "$PASSWORD" | mtcli login admin`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 2 {
				password = args[1]
			} else {
				var err error
				password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}
			return cli.runLogin(cmd.Context(), args[0], password)
		},
	}
}

// readPassword prompts for a password on a terminal, or reads one line when
// in is not a terminal.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// runLogin authenticates to the current profile and saves the new token.
func (cli *CLI) runLogin(ctx context.Context, username, password string) error {
	prof, err := cli.currentProfile()
	if err != nil {
		return err
	}

	client, err := cli.newClient(prof)
	if err != nil {
		return err
	}
	// Authenticate anonymously; a stale token must not be sent along.
	client.ClearAccessToken()

	if _, err := client.Call(ctx, dataapi.OperationAuthenticate, map[string]string{
		"username": username,
		"password": password,
	}); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	token := client.AccessToken()
	if token == "" {
		return errors.New("login failed: server returned no access token")
	}

	if _, err := cli.Store.Update(prof.Name, profile.Fields{AccessToken: &token}); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	cli.Log.WithField("profile", prof.Name).Debugf("Stored access token %s", utils.MaskToken(token))

	if err := cli.Notifier.NotifyLogin(prof.Name, username); err != nil {
		cli.Log.Debugf("Notification failed: %v", err)
	}

	return cli.output.Write(map[string]any{"profile": prof.Name, "loggedIn": true}, func() error {
		cli.output.Printf("Login succeeded.\n")
		return nil
	})
}
