// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-shamir.
//
// go-shamir is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix viper uses for environment variables
const EnvPrefix = "SSS"

// app holds the state shared by all commands of one root command
type app struct {
	flags *Config
	v     *viper.Viper
}

func newApp() *app {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return &app{flags: NewConfig(), v: v}
}

// NewRootCmd builds the sss command tree
func NewRootCmd() *cobra.Command {
	a := newApp()

	rootCmd := &cobra.Command{
		Use:   "sss",
		Short: "go-shamir CLI - Shamir's Secret Sharing tool",
		Long: `sss splits a secret into N shares so that any K of them recover it
and fewer than K reveal nothing about it.

Shares are written as JSON or CBOR documents. Each share carries its
scheme id, threshold, prime and a BLAKE3 checksum so that shares from
different splits cannot be mixed by accident.

Configuration is read from a YAML file (--config), SSS_* environment
variables and command-line flags, in increasing order of precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringVar(&a.flags.ConfigFile, "config", "",
		"config file (YAML)")
	rootCmd.PersistentFlags().StringVarP(&a.flags.OutputFormat, "output", "o", "text",
		"output format (text, json)")
	rootCmd.PersistentFlags().BoolVarP(&a.flags.Verbose, "verbose", "v", false,
		"verbose output")
	a.bind(rootCmd, "config", "output", "verbose")

	// Add subcommands
	rootCmd.AddCommand(newVersionCmd(a))
	rootCmd.AddCommand(newSplitCmd(a))
	rootCmd.AddCommand(newCombineCmd(a))
	rootCmd.AddCommand(newVerifyCmd(a))

	return rootCmd
}

// Execute runs the root command and prints any error to stderr
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printer := NewPrinter(outputFormatFromArgs(os.Args[1:]), os.Stderr)
		_ = printer.PrintError(err) // Error printing to stderr is best-effort
		return err
	}
	return nil
}

// bind binds the named flags of cmd to viper keys of the same name. Local
// flags are bound when a command runs so that subcommands sharing a flag
// name do not overwrite each other's binding. Persistent flags are not
// merged into Flags() until cobra parses, so they are looked up directly.
func (a *app) bind(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			f = cmd.PersistentFlags().Lookup(name)
		}
		if f != nil {
			_ = a.v.BindPFlag(name, f)
		}
	}
}

// outputFormat returns the effective --output value
func (a *app) outputFormat() string {
	return a.v.GetString("output")
}

// checkOutputFormat rejects an --output value no Printer can handle
func (a *app) checkOutputFormat() error {
	switch OutputFormat(a.outputFormat()) {
	case "", OutputFormatText, OutputFormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid output format %q: must be text or json", a.outputFormat())
	}
}

// outputFormatFromArgs finds --output/-o in raw arguments for error
// printing after cobra has returned
func outputFormatFromArgs(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--output" || arg == "-o":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--output="):
			return strings.TrimPrefix(arg, "--output=")
		case strings.HasPrefix(arg, "-o="):
			return strings.TrimPrefix(arg, "-o=")
		}
	}
	if env := os.Getenv(EnvPrefix + "_OUTPUT"); env != "" {
		return env
	}
	return string(OutputFormatText)
}
