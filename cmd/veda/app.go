package main

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/vedaai/veda"
	"github.com/vedaai/veda/auth"
	"github.com/vedaai/veda/config"
	"github.com/vedaai/veda/glamour"
	"github.com/vedaai/veda/goldmark"
	vedajson "github.com/vedaai/veda/json"
	"github.com/vedaai/veda/sse"
	vedazap "github.com/vedaai/veda/zap"
	"go.uber.org/zap"
)

// app holds the wired dependencies shared by all subcommands.
type app struct {
	cfg      config.Config
	baseURL  *url.URL
	logger   *zap.Logger
	jar      *cookiejar.Jar
	auth     *auth.Client
	sse      *sse.Client
	renderer veda.Renderer
	theme    veda.Theme
}

func newApp(cfg config.Config) (*app, error) {
	logger, err := vedazap.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}
	jar, err := auth.NewJar()
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	baseURL := cfg.URL()
	if err := vedajson.LoadJar(cfg.CookieFile, jar, baseURL); err != nil {
		logger.Warn("ignoring saved cookies", zap.String("path", cfg.CookieFile), zap.Error(err))
	}

	// No client timeout: answers stream for as long as they take.
	hc := &http.Client{Jar: jar}
	theme := veda.DefaultTheme()

	a := &app{
		cfg:     cfg,
		baseURL: baseURL,
		logger:  logger,
		jar:     jar,
		theme:   theme,
		auth: auth.New(
			auth.WithBaseURL(cfg.BaseURL),
			auth.WithHTTPClient(hc),
			auth.WithLogger(logger),
		),
		sse: sse.New(
			sse.WithBaseURL(cfg.BaseURL),
			sse.WithHTTPClient(hc),
			sse.WithLogger(logger),
			sse.WithRetry(cfg.Retry.Attempts, cfg.Retry.Backoff),
		),
	}
	switch cfg.Renderer {
	case config.RendererGlamour:
		a.renderer = glamour.New(glamour.WithLogger(logger))
	default:
		a.renderer = goldmark.New(theme)
	}
	return a, nil
}

// saveCookies persists the jar so later invocations stay signed in.
func (a *app) saveCookies() error {
	if err := vedajson.SaveJar(a.cfg.CookieFile, a.jar, a.baseURL); err != nil {
		return fmt.Errorf("save cookies: %w", err)
	}
	return nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
