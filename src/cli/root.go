// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/config"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/hierarchy"
	x509store "github.com/H0llyW00dzZ/tls-cert-hierarchy/src/internal/x509/store"
	"github.com/H0llyW00dzZ/tls-cert-hierarchy/src/logger"
	"github.com/spf13/cobra"
)

var (
	// OperationPerformed reports whether a subcommand ran.
	OperationPerformed bool

	// OperationPerformedSuccessfully reports whether that subcommand succeeded.
	OperationPerformedSuccessfully bool
)

var (
	// ErrAuthorityExists indicates that init would overwrite an existing hierarchy.
	ErrAuthorityExists = hierarchy.ErrExists

	// ErrMissingAuthority indicates that issue found no intermediate in the store.
	ErrMissingAuthority = hierarchy.ErrMissing

	// ErrNoAnchor indicates that validate found no trust anchor.
	ErrNoAnchor = hierarchy.ErrNoAnchor
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	envFile    string
	outputDir  string
}

// env is what a subcommand needs at run time.
type env struct {
	ctx   context.Context
	log   logger.Logger
	cfg   *config.Config
	store *x509store.Store
	svc   *hierarchy.Service
}

// Execute runs the root command with the process arguments.
//
// Parameters:
//   - ctx: Context that cancels long running steps
//   - version: Version string reported by --version
//   - log: Destination for progress and error output
//
// Returns:
//   - error: The subcommand error, if any
func Execute(ctx context.Context, version string, log logger.Logger) error {
	return ExecuteArgs(ctx, version, log, os.Args[1:])
}

// ExecuteArgs is like [Execute] with explicit arguments.
func ExecuteArgs(ctx context.Context, version string, log logger.Logger, args []string) error {
	OperationPerformed = false
	OperationPerformedSuccessfully = false

	rootCmd := newRootCmd(version, log)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCmd(version string, log logger.Logger) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           posix.GetExecutableName(),
		Short:         "Build and verify a root, intermediate and server certificate hierarchy",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		fmt.Sprintf("profile file, .json/.yaml/.yml (default: $%s)", config.EnvConfigFile))
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "",
		fmt.Sprintf("dotenv file exporting the key password (default: $%s)", config.EnvDotenvFile))
	rootCmd.PersistentFlags().StringVarP(&opts.outputDir, "out", "o", "", "store directory (default: profile outputDir)")

	rootCmd.AddCommand(
		newKeygenCmd(opts, log),
		newInitCmd(opts, log),
		newIssueCmd(opts, log),
		newValidateCmd(opts, log),
		newInspectCmd(opts, log),
	)
	return rootCmd
}

// runE wraps a subcommand body with profile loading, store opening and the
// operation flags.
func runE(opts *options, log logger.Logger, fn func(e *env, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		OperationPerformed = true

		if err := config.LoadEnvFile(opts.envFile); err != nil {
			return err
		}
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		dir := cfg.OutputDir
		if opts.outputDir != "" {
			dir = opts.outputDir
		}
		store, err := x509store.Open(dir)
		if err != nil {
			return err
		}

		e := &env{ctx: cmd.Context(), log: log, cfg: cfg, store: store, svc: hierarchy.New(cfg, store, log)}
		if err := fn(e, args); err != nil {
			return err
		}
		OperationPerformedSuccessfully = true
		return nil
	}
}
