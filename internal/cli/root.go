// Package cli implements the docreq command line tool.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/BerylCAtieno/loan-document-verifier/internal/requirements"
)

const (
	OutputYAML = "yaml"
	OutputJSON = "json"
)

type app struct {
	v       *viper.Viper
	cfgFile string
}

// NewRootCommand builds the docreq command tree. Each call returns an
// independent tree with its own configuration.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "docreq",
		Short: "Loan document requirements and verification",
		Long: `docreq answers which documents a business loan application needs and
checks candidate files against those requirements.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (DOCREQ_*)
3. Config file (~/.docreq/config.yaml)
4. Defaults`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.docreq/config.yaml)")
	flags.StringP("output", "o", OutputYAML, "output format (yaml, json)")
	flags.String("requirements-file", "", "YAML requirement tables (default: built-in tables)")
	flags.String("ocr-endpoint", "", "remote OCR service for scanned documents")
	flags.String("ocr-api-key", "", "API key for the remote OCR service")

	for _, name := range []string{"output", "requirements-file", "ocr-endpoint", "ocr-api-key"} {
		_ = a.v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		a.newResolveCommand(),
		a.newTaxCommand(),
		a.newIdentityCommand(),
		a.newMatchCommand(),
		a.newVerifyCommand(),
	)

	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCommand().Execute()
}

// initConfig reads in config file and ENV variables
func (a *app) initConfig() error {
	a.v.SetEnvPrefix("DOCREQ")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	a.v.AddConfigPath(filepath.Join(home, ".docreq"))
	a.v.SetConfigType("yaml")
	a.v.SetConfigName("config")

	// The default config file is optional
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func (a *app) resolver() (*requirements.Resolver, error) {
	tables, err := requirements.LoadTablesFile(a.v.GetString("requirements-file"))
	if err != nil {
		return nil, err
	}
	return requirements.NewResolver(tables), nil
}

// render writes v in the configured output format.
func (a *app) render(w io.Writer, v interface{}) error {
	switch format := strings.ToLower(a.v.GetString("output")); format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", format, OutputYAML, OutputJSON)
	}
}
