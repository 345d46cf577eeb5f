package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/auth"
	"github.com/fwojciec/parley/backend"
	bt "github.com/fwojciec/parley/bubbletea"
	"github.com/fwojciec/parley/chat"
	"github.com/fwojciec/parley/config"
	"github.com/fwojciec/parley/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app carries the settings and services shared by every command. It is
// filled in by the root command's PersistentPreRunE.
type app struct {
	v       *viper.Viper
	cfgFile string

	cfg      config.Config
	logger   *zap.Logger
	closeLog func() error
}

const rootLongDesc = `parley is a terminal chat client for a streaming chat backend.

Without a subcommand it opens the interactive chat. The stored
conversation is loaded on start; replies stream in as they arrive.

Keys:
  Enter    send the message
  Esc      stop the reply in flight
  Ctrl+R   reload the stored conversation
  Ctrl+L   clear the stored conversation
  Ctrl+C   stop the reply in flight, or quit when idle`

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	cmd := &cobra.Command{
		Use:           "parley",
		Short:         "Terminal chat client for a streaming chat backend",
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTUI(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/parley/config.toml)")
	flags.String("base-url", "", "backend API base URL")
	flags.String("token", "", "bearer token (overrides the token file)")
	flags.String("token-file", "", "file holding the bearer token")
	flags.String("user-id", "", "user id sent with messages (default: taken from the token)")
	flags.Bool("specific-user", false, "mark messages as coming from a specific user")
	flags.String("log-file", "", "log file; empty disables logging")
	flags.Bool("debug", false, "enable debug logging")

	dir, err := config.Dir()
	if err != nil {
		dir = "."
	}
	a.v = config.NewViper(dir)
	for key, name := range map[string]string{
		"base_url":      "base-url",
		"token":         "token",
		"token_file":    "token-file",
		"user_id":       "user-id",
		"specific_user": "specific-user",
		"log_file":      "log-file",
		"debug":         "debug",
	} {
		cobra.CheckErr(a.v.BindPFlag(key, flags.Lookup(name)))
	}

	cmd.AddCommand(
		newSendCmd(a),
		newHistoryCmd(a),
		newClearCmd(a),
		newTokenCmd(a),
		newInitCmd(a),
		newFakeBackendCmd(a),
	)
	return cmd
}

// load resolves the config and opens the log file.
func (a *app) load() error {
	path := a.cfgFile
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, err := config.Load(a.v, path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.LogFile == "" {
		return nil
	}
	l, closeFn, err := logger.NewFileLogger(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	a.logger, a.closeLog = l, closeFn
	a.logger.Debug("config loaded", zap.String("path", path), zap.String("base_url", cfg.BaseURL))
	return nil
}

func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	_ = a.logger.Sync()
	return a.closeLog()
}

// client returns a backend client for the configured server. A token read
// from the token file is deleted when the server rejects it.
func (a *app) client() *backend.Client {
	opts := []backend.Option{
		backend.WithBaseURL(a.cfg.BaseURL),
		backend.WithTokenSource(a.cfg.TokenSource()),
		backend.WithLogger(a.logger),
	}
	if a.cfg.Token == "" && a.cfg.TokenFile != "" {
		opts = append(opts, backend.WithUnauthorizedHandler(auth.Logout(a.cfg.TokenFile, a.logger)))
	}
	return backend.New(opts...)
}

// userID returns the id sent with messages. Without one the server
// attributes messages by token alone.
func (a *app) userID() string {
	id, err := a.cfg.ResolveUserID()
	if err != nil {
		a.logger.Debug("no user id", zap.Error(err))
		return ""
	}
	return id
}

func (a *app) controller(opts ...chat.Option) *chat.Controller {
	base := []chat.Option{
		chat.WithLogger(a.logger),
		chat.WithUserID(a.userID()),
		chat.WithSpecificUser(a.cfg.SpecificUser),
	}
	return chat.New(a.client(), append(base, opts...)...)
}

func (a *app) runTUI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	relay := &bt.Relay{}
	session := a.controller(chat.WithObserver(relay.Observe))
	if err := bt.Run(ctx, bt.New(session, parley.DefaultTheme()), relay); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}
