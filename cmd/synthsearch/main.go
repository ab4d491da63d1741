package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/synthsearch/internal/config"
	"github.com/kailas-cloud/synthsearch/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var env string

	rootCmd := &cobra.Command{
		Use:           "synthsearch",
		Short:         "Natural-language to MongoDB query service",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&env, "env", config.GetEnv(), "config environment (config/<env>.yaml)")

	withApp := func(run func(ctx context.Context, a *app) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), env)
			if err != nil {
				return err
			}
			defer a.close()
			return run(cmd.Context(), a)
		}
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: withApp(func(_ context.Context, a *app) error {
			return a.serve()
		}),
	}
	rootCmd.RunE = serveCmd.RunE

	var database, collection, dbType string
	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Describe a collection and store its profile",
		RunE: withApp(func(ctx context.Context, a *app) error {
			text, err := a.dataSources.Register(ctx, database, collection, dbType)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(os.Stdout, text)
			return err
		}),
	}
	registerCmd.Flags().StringVar(&database, "db", "", "database name")
	registerCmd.Flags().StringVar(&collection, "collection", "", "collection name")
	registerCmd.Flags().StringVar(&dbType, "type", "mongodb", "declared database type")
	_ = registerCmd.MarkFlagRequired("db")
	_ = registerCmd.MarkFlagRequired("collection")

	var question, library string
	var execute bool
	translateCmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a question into a query, optionally running it",
		RunE: withApp(func(ctx context.Context, a *app) error {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if !execute {
				q, err := a.translator.Translate(ctx, collection, question, library)
				if err != nil {
					return err
				}
				return enc.Encode(q)
			}
			res, err := a.executor.Run(ctx, database, collection, question, library)
			if err != nil {
				return err
			}
			return enc.Encode(res.Documents)
		}),
	}
	translateCmd.Flags().StringVar(&collection, "collection", "", "registered collection name")
	translateCmd.Flags().StringVar(&question, "question", "", "natural-language question")
	translateCmd.Flags().StringVar(&library, "library", "pymongo", "query library the result targets")
	translateCmd.Flags().BoolVar(&execute, "execute", false, "run the query and print matching documents")
	translateCmd.Flags().StringVar(&database, "db", "", "database name (with --execute)")
	_ = translateCmd.MarkFlagRequired("collection")
	_ = translateCmd.MarkFlagRequired("question")

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "Drop and recreate the context index with the configured settings",
		RunE: withApp(func(ctx context.Context, a *app) error {
			return a.contexts.RebuildIndex(ctx)
		}),
	}

	rootCmd.AddCommand(serveCmd, registerCmd, translateCmd, reindexCmd)
	return rootCmd
}
