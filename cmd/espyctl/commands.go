// Copyright (c) 2026 Espy. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/taibuivan/espy/internal/app"
	"github.com/taibuivan/espy/internal/core/game"
	"github.com/taibuivan/espy/internal/platform/config"
	"github.com/taibuivan/espy/internal/platform/constants"
	"github.com/taibuivan/espy/internal/platform/migration"
	"github.com/taibuivan/espy/internal/platform/sec"
	"github.com/taibuivan/espy/pkg/convert"
)

// newRootCommand builds the command tree. Catalog commands wire the
// application lazily, so credential commands run without catalog settings.
func newRootCommand(log *slog.Logger, level *slog.LevelVar) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:     "espyctl",
		Short:   "Operate the Espy catalog",
		Version: constants.AppVersion,
		Long: `espyctl resolves catalog titles into the document store, reconciles
storefront records and manages operator credentials.

Catalog commands read the same environment as the API server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				level.Set(slog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddGroup(
		&cobra.Group{ID: "catalog", Title: "Catalog Commands:"},
		&cobra.Group{ID: "admin", Title: "Administration Commands:"},
	)

	for _, command := range []*cobra.Command{
		newResolveCommand(log),
		newDigestCommand(log),
		newSearchCommand(log),
		newReconcileCommand(log),
		newSteamSyncCommand(log),
	} {
		command.GroupID = "catalog"
		root.AddCommand(command)
	}

	for _, command := range []*cobra.Command{
		newMigrateCommand(log),
		newTokenCommand(),
		newHashKeyCommand(),
	} {
		command.GroupID = "admin"
		root.AddCommand(command)
	}

	return root
}

// # Catalog Commands

// withApp loads the configuration, wires the application and runs fn.
func withApp(cmd *cobra.Command, log *slog.Logger, fn func(application *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	application, err := app.New(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer application.Close()

	return fn(application)
}

func newResolveCommand(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <igdb-id>",
		Short:   "Resolve a title with all providers and store it",
		Args:    cobra.ExactArgs(1),
		Example: `  espyctl resolve 71`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, log, func(application *app.App) error {
				entry, err := application.Resolver.Retrieve(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd, entry)
			})
		},
	}
}

func newDigestCommand(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "digest <igdb-id>...",
		Short:   "Print the digests of one or more titles",
		Args:    cobra.RangeArgs(1, 100),
		Example: `  espyctl digest 71 72`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]uint64, 0, len(args))
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return withApp(cmd, log, func(application *app.App) error {
				digests, err := application.Resolver.Digests(cmd.Context(), ids)
				if err != nil {
					return err
				}
				return printJSON(cmd, digests)
			})
		},
	}
}

func newSearchCommand(log *slog.Logger) *cobra.Command {
	var baseGameOnly bool

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "Search the catalog by title",
		Args:  cobra.MinimumNArgs(1),
		Example: `  espyctl search portal
  espyctl search "the witcher" --base-game-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			return withApp(cmd, log, func(application *app.App) error {
				entries, err := application.Resolver.Search(cmd.Context(), title, baseGameOnly)
				if err != nil {
					return err
				}
				return printJSON(cmd, entries)
			})
		},
	}
	cmd.Flags().BoolVar(&baseGameOnly, "base-game-only", false, "drop side content from the results")

	return cmd
}

func newReconcileCommand(log *slog.Logger) *cobra.Command {
	var record game.StoreEntry

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match one storefront record to catalog titles",
		Args:  cobra.NoArgs,
		Example: `  espyctl reconcile --store steam --id 440
  espyctl reconcile --store epic --title "Hades"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if record.ID == "" && record.Title == "" {
				return fmt.Errorf("reconcile: --id or --title is required")
			}
			return withApp(cmd, log, func(application *app.App) error {
				entries, err := application.Reconciler.Reconcile(cmd.Context(), record)
				if err != nil {
					return err
				}
				if entries == nil {
					entries = []game.Entry{}
				}
				return printJSON(cmd, entries)
			})
		},
	}
	cmd.Flags().StringVar(&record.StorefrontName, "store", "steam", "storefront name")
	cmd.Flags().StringVar(&record.ID, "id", "", "storefront id")
	cmd.Flags().StringVar(&record.Title, "title", "", "storefront title")
	cmd.Flags().StringVar(&record.URL, "url", "", "storefront page")

	return cmd
}

func newSteamSyncCommand(log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:     "steam-sync <steam-id>",
		Short:   "Reconcile every title a Steam account owns",
		Args:    cobra.ExactArgs(1),
		Example: `  STEAM_API_KEY=... espyctl steam-sync 76561197960287930`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, log, func(application *app.App) error {
				reports, err := application.Reconciler.SyncLibrary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, reports)
			})
		},
	}
}

// # Administration Commands

func newMigrateCommand(log *slog.Logger) *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending document store migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("migrate: --database-url or DATABASE_URL is required")
			}
			return migration.RunUp(databaseURL, path, log)
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres connection URL")
	cmd.Flags().StringVar(&path, "path", "./internal/platform/migration/sql", "migrations directory")

	return cmd
}

func newTokenCommand() *cobra.Command {
	var (
		privateKey string
		publicKey  string
		operator   string
		scopes     []string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:     "token",
		Short:   "Issue an operator token",
		Args:    cobra.NoArgs,
		Example: `  espyctl token --private-key keys/private.pem --public-key keys/public.pem --operator nightly`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := sec.NewTokenService(privateKey, publicKey, constants.AuthIssuer)
			if err != nil {
				return err
			}
			token, err := tokens.GenerateOperatorToken(operator, scopes, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&privateKey, "private-key", os.Getenv("JWT_PRIVATE_KEY_PATH"), "RSA private key (PEM)")
	cmd.Flags().StringVar(&publicKey, "public-key", os.Getenv("JWT_PUBLIC_KEY_PATH"), "RSA public key (PEM)")
	cmd.Flags().StringVar(&operator, "operator", "cli", "operator name")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{constants.ScopeCatalogWrite}, "granted scopes")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}

func newHashKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "hash-key <api-key>",
		Short:   "Hash an operator API key for OPERATOR_API_KEY_HASH",
		Args:    cobra.ExactArgs(1),
		Example: `  espyctl hash-key "$(openssl rand -hex 24)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := sec.HashAPIKey(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

// # Helpers

func parseID(arg string) (uint64, error) {
	id := convert.ToUint64(arg)
	if id == 0 {
		return 0, fmt.Errorf("%q is not a catalog id", arg)
	}
	return id, nil
}

func printJSON(cmd *cobra.Command, value any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
