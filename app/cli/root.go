// Package cli builds the quillpost command tree.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"quillpost/app/auth"
	"quillpost/app/config"
	"quillpost/app/metrics"
	"quillpost/app/repositories"
	"quillpost/app/services"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	DBPath  string
}

// NewRootCommand creates the root command. version is printed by the
// version subcommand.
func NewRootCommand(version string) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "quillpost",
		Short:         "Blog backend with comment moderation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", ".env", "optional env file to load before reading the environment")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "badger directory (overrides DB_PATH)")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewRecountCommand(opts))
	cmd.AddCommand(NewDBCommand(opts))
	cmd.AddCommand(newVersionCommand(version))

	return cmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "quillpost version %s\n", version)
			return err
		},
	}
}

// application is everything a command needs once config is loaded.
type application struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *repositories.Store
	metrics  *metrics.Metrics
	tokens   *auth.Tokens
	posts    *services.PostService
	comments *services.CommentService
	users    *services.AuthService
}

// setup loads config, opens the store and builds the services. The
// caller must close the store.
func setup(opts *RootOptions, logOut io.Writer) (*application, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}

	logger := cfg.NewLogger(logOut)
	if cfg.UsingDevSecret() {
		logger.Warn("JWT_SECRET is not set, using the development secret")
	}

	store, err := repositories.Open(cfg.DBPath, logger)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	tokens := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	return &application{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		metrics:  m,
		tokens:   tokens,
		posts:    services.NewPostService(store.Posts, logger),
		comments: services.NewCommentService(store.Comments, store.Posts, store.Users, logger, m),
		users:    services.NewAuthService(store.Users, tokens, logger),
	}, nil
}
