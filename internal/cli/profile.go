package cli

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/xabinapal/mtcli/internal/dataapi"
	"github.com/xabinapal/mtcli/internal/profile"
)

// profileView is the text form of a profile, keyed by its name.
type profileView struct {
	BaseURL    string `yaml:"baseUrl"`
	APIVersion int    `yaml:"apiVersion"`
	Current    bool   `yaml:"current"`
	LoggedIn   bool   `yaml:"loggedIn"`
}

func newProfileView(info profile.Info) map[string]profileView {
	return map[string]profileView{
		info.Name: {
			BaseURL:    info.BaseURL,
			APIVersion: info.APIVersion,
			Current:    info.Current,
			LoggedIn:   info.LoggedIn,
		},
	}
}

// newListCmd creates the list command.
func (cli *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List all registered profiles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runList()
		},
	}
}

func (cli *CLI) runList() error {
	profiles, err := cli.Store.List()
	if err != nil {
		return fmt.Errorf("failed to list profiles: %w", err)
	}

	infos := lo.Map(profiles, func(p *profile.Profile, _ int) profile.Info {
		return cli.Store.Info(p)
	})

	return cli.output.Write(infos, func() error {
		if len(infos) == 0 {
			cli.output.Printf("No profiles are registered.\n")
			return nil
		}
		docs := lo.Map(infos, func(info profile.Info, _ int) any {
			return newProfileView(info)
		})
		return cli.output.WriteYAML(docs...)
	})
}

// newShowCmd creates the show command.
func (cli *CLI) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "show <name>",
		Short:             "Show a profile",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.completeProfileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cli.Store.Get(args[0])
			if err != nil {
				return err
			}
			return cli.writeProfile(p)
		},
	}
}

func (cli *CLI) writeProfile(p *profile.Profile) error {
	info := cli.Store.Info(p)
	return cli.output.Write(info, func() error {
		return cli.output.WriteYAML(newProfileView(info))
	})
}

// newCurrentCmd creates the current command.
func (cli *CLI) newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current [name]",
		Short: "Show or set the current profile",
		Long: `Show the current profile, or make <name> the current profile.

API calls, login and logout always act on the current profile.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: cli.completeProfileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				p, err := cli.currentProfile()
				if err != nil {
					return err
				}
				return cli.writeProfile(p)
			}

			p, err := cli.Store.SetCurrent(args[0])
			if err != nil {
				return err
			}
			return cli.output.Write(cli.Store.Info(p), func() error {
				cli.output.Printf("Current profile is %s.\n", p.Name)
				return nil
			})
		},
	}
}

// profileFlags holds the connection flags shared by add and update.
type profileFlags struct {
	baseURL       string
	apiVersion    string
	tlsSkipVerify bool
	caCert        string
	clientCert    string
	clientKey     string
}

func (f *profileFlags) register(cmd *cobra.Command, withBaseURL bool) {
	if withBaseURL {
		cmd.Flags().StringVar(&f.baseURL, "base-url", "", "Base URL of the Data API (without the version)")
	}
	cmd.Flags().StringVar(&f.apiVersion, "api-version", "", "API version, e.g. 3 or v3")
	cmd.Flags().BoolVar(&f.tlsSkipVerify, "tls-skip-verify", false, "Skip TLS certificate verification")
	cmd.Flags().StringVar(&f.caCert, "ca-cert", "", "Path to CA certificate")
	cmd.Flags().StringVar(&f.clientCert, "client-cert", "", "Path to client certificate")
	cmd.Flags().StringVar(&f.clientKey, "client-key", "", "Path to client key")
}

// fields returns the profile fields for the flags the user set.
func (f *profileFlags) fields(cmd *cobra.Command) (profile.Fields, error) {
	var fields profile.Fields
	changed := cmd.Flags().Changed

	if changed("base-url") {
		fields.BaseURL = &f.baseURL
	}
	if changed("api-version") {
		v, err := dataapi.ParseVersion(f.apiVersion)
		if err != nil {
			return fields, err
		}
		fields.APIVersion = &v
	}
	if changed("tls-skip-verify") {
		fields.TLSSkipVerify = &f.tlsSkipVerify
	}
	if changed("ca-cert") {
		fields.CACert = &f.caCert
	}
	if changed("client-cert") {
		fields.ClientCert = &f.clientCert
	}
	if changed("client-key") {
		fields.ClientKey = &f.clientKey
	}
	return fields, nil
}

// newAddCmd creates the add command.
func (cli *CLI) newAddCmd() *cobra.Command {
	var flags profileFlags

	cmd := &cobra.Command{
		Use:   "add <name> <baseUrl>",
		Short: "Register a new profile",
		Long: `Register a new profile for a Data API installation.

Examples:
  mtcli add blog https://example.com/mt/mt-data-api.cgi
  mtcli add legacy https://old.example.com/mt-data-api.cgi --api-version=1`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := flags.fields(cmd)
			if err != nil {
				return err
			}
			fields.BaseURL = &args[1]

			p, err := cli.Store.Create(args[0], fields)
			if err != nil {
				return err
			}
			return cli.output.Write(cli.Store.Info(p), func() error {
				cli.output.Printf("Added %s.\n", p.Name)
				return nil
			})
		},
	}
	flags.register(cmd, false)

	return cmd
}

// newUpdateCmd creates the update command.
func (cli *CLI) newUpdateCmd() *cobra.Command {
	var flags profileFlags

	cmd := &cobra.Command{
		Use:               "update <name>",
		Aliases:           []string{"edit"},
		Short:             "Change the settings of a profile",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.completeProfileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := flags.fields(cmd)
			if err != nil {
				return err
			}
			if fields == (profile.Fields{}) {
				return errors.New("no changes specified - use flags like --base-url or --api-version")
			}

			p, err := cli.Store.Update(args[0], fields)
			if err != nil {
				return err
			}
			return cli.output.Write(cli.Store.Info(p), func() error {
				cli.output.Printf("Updated %s.\n", p.Name)
				return nil
			})
		},
	}
	flags.register(cmd, true)

	return cmd
}

// newDeleteCmd creates the delete command.
func (cli *CLI) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <name>",
		Aliases:           []string{"rm"},
		Short:             "Delete a profile",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: cli.completeProfileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.Store.Delete(args[0]); err != nil {
				return err
			}
			return cli.output.Write(map[string]string{"deleted": args[0]}, func() error {
				cli.output.Printf("Deleted %s.\n", args[0])
				return nil
			})
		},
	}
}

// newRenameCmd creates the rename command.
func (cli *CLI) newRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "rename <name> <newName>",
		Aliases:           []string{"mv"},
		Short:             "Rename a profile",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: cli.completeProfileName,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := cli.Store.Rename(args[0], args[1])
			if err != nil {
				return err
			}
			return cli.output.Write(cli.Store.Info(p), func() error {
				cli.output.Printf("Renamed %s to %s.\n", args[0], p.Name)
				return nil
			})
		},
	}
}
