package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vedaai/veda"
	bt "github.com/vedaai/veda/bubbletea"
	"github.com/vedaai/veda/config"
	"go.uber.org/zap"
)

var errNotSignedIn = errors.New("not signed in, run `veda login` first")

// flagKeys binds persistent flags to config keys.
var flagKeys = map[string]string{
	"base-url":     config.KeyBaseURL,
	"idle-timeout": config.KeyIdleTimeout,
	"retry":        config.KeyRetryAttempts,
	"renderer":     config.KeyRenderer,
	"log-level":    config.KeyLogLevel,
	"log-file":     config.KeyLogFile,
	"cookie-file":  config.KeyCookieFile,
}

func newRootCmd() *cobra.Command {
	var (
		configDir string
		a         *app
	)

	root := &cobra.Command{
		Use:   "veda",
		Short: "Ask VedaAI from the terminal",
		Long: `veda streams answers from a VedaAI server.

Run without arguments to start the interactive chat. Answers arrive as
loosely punctuated text and are reshaped into markdown as they stream.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			dir := configDir
			if dir == "" {
				var err error
				if dir, err = config.Dir(); err != nil {
					return err
				}
			}
			v := config.New(dir)
			if err := bindFlags(cmd, v); err != nil {
				return err
			}
			if err := config.Read(v); err != nil {
				return err
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			a, err = newApp(cfg)
			if err != nil {
				return err
			}
			a.logger.Debug("config loaded",
				zap.String("config", v.ConfigFileUsed()),
				zap.String("base_url", cfg.BaseURL))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), a)
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&configDir, "config-dir", "", "directory holding config.yaml (default $HOME/.veda)")
	f.String("base-url", "", "VedaAI server URL")
	f.Duration("idle-timeout", 0, "fail an answer that goes quiet this long (0 disables)")
	f.Int("retry", 0, "connection attempts per answer")
	f.String("renderer", "", "markdown renderer: goldmark or glamour")
	f.String("log-level", "", "log level: debug, info, warn, error")
	f.String("log-file", "", "write logs to this file")
	f.String("cookie-file", "", "where the sign-in cookie is kept")

	root.AddCommand(
		newAskCmd(&a),
		newLoginCmd(&a),
		newRegisterCmd(&a),
		newLogoutCmd(&a),
		newWhoamiCmd(&a),
	)
	return root
}

// bindFlags makes explicitly set flags override file and environment.
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for name, key := range flagKeys {
		fl := cmd.Flags().Lookup(name)
		if fl == nil {
			continue
		}
		if err := v.BindPFlag(key, fl); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}
	return nil
}

// authorize runs the session gate. When interactive, a rejected session
// is sent through the login form once.
func authorize(ctx context.Context, a *app, interactive bool) (veda.Identity, error) {
	id, err := a.auth.Authorize(ctx)
	if !errors.Is(err, veda.ErrUnauthorized) {
		return id, err
	}
	if !interactive {
		return veda.Identity{}, errNotSignedIn
	}
	var c veda.Credentials
	if err := bt.RunForm(ctx, bt.LoginForm(&c)); err != nil {
		return veda.Identity{}, err
	}
	if _, err := login(ctx, a, c); err != nil {
		return veda.Identity{}, err
	}
	return a.auth.Authorize(ctx)
}

func login(ctx context.Context, a *app, c veda.Credentials) (string, error) {
	msg, err := a.auth.Login(ctx, c)
	if err != nil {
		return "", err
	}
	return msg, a.saveCookies()
}

func runChat(ctx context.Context, a *app) error {
	id, err := authorize(ctx, a, true)
	if err != nil {
		return err
	}
	m := bt.New(a.sse, id,
		bt.WithTheme(a.theme),
		bt.WithRenderer(a.renderer),
		bt.WithLogger(a.logger),
		bt.WithIdleTimeout(a.cfg.IdleTimeout),
	)
	if err := bt.Run(ctx, m); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}
