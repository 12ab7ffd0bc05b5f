package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xabinapal/mtcli/internal/dataapi"
)

// EnvPrefix is the prefix of environment variables mapped onto settings.
const EnvPrefix = "MTCLI"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// ErrInvalidSettings is returned when the merged settings fail validation.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings holds the command-line options shared by every command.
type Settings struct {
	ConfigDir string        `mapstructure:"config-dir" validate:"required"`
	ClientID  string        `mapstructure:"client-id" validate:"required"`
	Output    string        `mapstructure:"output" validate:"required,oneof=text json"`
	Verbose   bool          `mapstructure:"verbose"`
	Keyring   bool          `mapstructure:"keyring"`
	Notify    bool          `mapstructure:"notify"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("config-dir", GetPaths().ConfigDir)
	v.SetDefault("client-id", dataapi.DefaultClientID)
	v.SetDefault("output", OutputText)
	v.SetDefault("verbose", false)
	v.SetDefault("keyring", false)
	v.SetDefault("notify", false)
	v.SetDefault("timeout", dataapi.DefaultTimeout)
}

// bindFlags binds explicitly set flags so that unset ones do not shadow
// environment variables.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			_ = v.BindPFlag(f.Name, f)
		}
	})
}

// LoadSettings merges defaults, MTCLI_* environment variables and flags, in
// increasing order of precedence, and validates the result.
func LoadSettings(flags *pflag.FlagSet) (*Settings, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := validator.New().Struct(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	return &s, nil
}
