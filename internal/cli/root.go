// Package cli provides the command-line interface for mtcli.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/xabinapal/mtcli/internal/config"
	"github.com/xabinapal/mtcli/internal/dataapi"
	"github.com/xabinapal/mtcli/internal/keyring"
	"github.com/xabinapal/mtcli/internal/notify"
	"github.com/xabinapal/mtcli/internal/profile"
	"github.com/xabinapal/mtcli/internal/utils"
	"github.com/xabinapal/mtcli/internal/version"
)

// ErrNotLoggedIn is returned by commands that need an access token.
var ErrNotLoggedIn = errors.New("not logged in")

// CLI holds the application state for the CLI.
type CLI struct {
	Settings *config.Settings
	Store    *profile.Store
	Notifier notify.Notifier
	Log      *logrus.Logger

	rootCmd *cobra.Command
	output  *OutputWriter
}

// New creates a new CLI instance.
func New() *CLI {
	cli := &CLI{}

	cli.rootCmd = &cobra.Command{
		Use:   "mtcli [command]",
		Short: "mtcli - Movable Type Data API client",
		Long: `mtcli manages named connection profiles for Movable Type Data API
installations and calls any operation the current installation publishes.

Any command not recognized as an mtcli command is treated as an API operation
and called on the current profile, with --key=value or --key value pairs as
its parameters:

  mtcli list_sites --limit=5
  mtcli get_entry --site_id 1 --entry_id 42`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.initialize()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cli.rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Global flags
	flags := cli.rootCmd.PersistentFlags()
	flags.StringP("output", "o", config.OutputText, "Output format (text, json)")
	flags.BoolP("verbose", "v", false, "Enable verbose output")
	flags.Bool("keyring", false, "Keep access tokens in the system keyring")
	flags.Bool("notify", false, "Send desktop notifications on login and session expiry")
	flags.Duration("timeout", dataapi.DefaultTimeout, "Timeout for each API request")
	flags.String("config-dir", "", "Directory holding the profiles (default ~/.mtcli)")
	flags.String("client-id", dataapi.DefaultClientID, "Client ID sent when authenticating")

	cli.addCommands()

	return cli
}

// addCommands adds all subcommands to the root command.
func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.newListCmd(),
		cli.newShowCmd(),
		cli.newCurrentCmd(),
		cli.newAddCmd(),
		cli.newUpdateCmd(),
		cli.newDeleteCmd(),
		cli.newRenameCmd(),
		cli.newLoginCmd(),
		cli.newLogoutCmd(),
		cli.newEndpointsCmd(),
		cli.newCallCmd(),
		cli.newVersionCmd(),
		cli.newCompletionCmd(),
	)
}

// SetOutput redirects command output, mainly for tests.
func (cli *CLI) SetOutput(stdout, stderr io.Writer) {
	cli.rootCmd.SetOut(stdout)
	cli.rootCmd.SetErr(stderr)
}

// SetInput redirects command input, mainly for tests.
func (cli *CLI) SetInput(stdin io.Reader) {
	cli.rootCmd.SetIn(stdin)
}

// initialize loads settings and sets up the profile store.
func (cli *CLI) initialize() error {
	settings, err := config.LoadSettings(cli.rootCmd.PersistentFlags())
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	cli.Settings = settings

	if err := (config.Paths{ConfigDir: settings.ConfigDir}).EnsureDirs(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cli.Log = newLogger(cli.rootCmd.ErrOrStderr(), settings.Verbose)

	format, err := ParseOutputFormat(settings.Output)
	if err != nil {
		return err
	}
	cli.output = NewOutputWriter(format, cli.rootCmd.OutOrStdout())

	opts := []profile.StoreOption{
		profile.WithLogger(logrus.NewEntry(cli.Log)),
	}
	if settings.Keyring {
		kr := keyring.DefaultStore()
		if err := kr.IsAvailable(); err != nil {
			return fmt.Errorf("cannot use keyring: %w", err)
		}
		opts = append(opts, profile.WithTokenVault(kr))
	}
	cli.Store = profile.NewStore(settings.ConfigDir, opts...)

	if cli.Notifier == nil {
		cli.Notifier = notify.New(settings.Notify)
	}

	return nil
}

// newLogger creates the diagnostics logger. Debug output is enabled by
// --verbose.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// Execute runs the CLI with args, which exclude the program name.
//
// When the first positional argument is not an mtcli command, it is called
// as an API operation on the current profile.
func (cli *CLI) Execute(ctx context.Context, args []string) error {
	if args == nil {
		args = []string{}
	}

	if rest, err := cli.parseGlobalFlags(args); err == nil && len(rest) > 0 && !cli.isCommand(rest[0]) {
		if err := cli.initialize(); err != nil {
			return err
		}
		return cli.runCall(ctx, rest[0], utils.ParseOptions(rest[1:]))
	}

	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

// parseGlobalFlags parses the global flags leading args and returns the
// arguments that follow them.
func (cli *CLI) parseGlobalFlags(args []string) ([]string, error) {
	flags := cli.rootCmd.PersistentFlags()
	flags.SetInterspersed(false)
	defer flags.SetInterspersed(true)

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return flags.Args(), nil
}

// isCommand reports whether name is a built-in command or alias.
func (cli *CLI) isCommand(name string) bool {
	if name == "help" || strings.HasPrefix(name, "__") {
		return true
	}
	for _, cmd := range cli.rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return false
}

// currentProfile returns the current profile or an actionable error.
func (cli *CLI) currentProfile() (*profile.Profile, error) {
	prof, err := cli.Store.GetCurrent()
	if errors.Is(err, profile.ErrNoCurrent) {
		return nil, fmt.Errorf("%w - use 'mtcli add <name> <baseUrl>' and 'mtcli current <name>'", err)
	}
	return prof, err
}

// newClient builds an API client for prof.
func (cli *CLI) newClient(prof *profile.Profile) (*dataapi.Client, error) {
	cfg := prof.ClientConfig()
	cfg.ClientID = cli.Settings.ClientID
	cfg.Timeout = cli.Settings.Timeout
	cfg.UserAgent = version.Get().UserAgent()

	client, err := dataapi.New(cfg, dataapi.WithLogger(cli.Log.WithField("profile", prof.Name)))
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", prof.Name, err)
	}
	return client, nil
}

// saveSession persists the client's token when it differs from the one
// stored in prof.
func (cli *CLI) saveSession(prof *profile.Profile, client *dataapi.Client) error {
	token := client.AccessToken()
	if token == prof.AccessToken {
		return nil
	}

	if _, err := cli.Store.Update(prof.Name, profile.Fields{AccessToken: &token}); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}

	if token == "" {
		fmt.Fprintln(cli.rootCmd.ErrOrStderr(), "Removed invalid access token.")
		if err := cli.Notifier.NotifyTokenInvalidated(prof.Name); err != nil {
			cli.Log.Debugf("Notification failed: %v", err)
		}
	}

	prof.AccessToken = token
	return nil
}

// getProfileNames returns profile names for shell completion.
func (cli *CLI) getProfileNames() []string {
	if cli.Store == nil {
		if err := cli.initialize(); err != nil {
			return nil
		}
	}

	profiles, err := cli.Store.List()
	if err != nil {
		return nil
	}

	return lo.Map(profiles, func(p *profile.Profile, _ int) string {
		return p.Name
	})
}

// completeProfileName completes the first argument with profile names.
func (cli *CLI) completeProfileName(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return cli.getProfileNames(), cobra.ShellCompDirectiveNoFileComp
}
