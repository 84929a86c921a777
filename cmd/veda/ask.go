package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vedaai/veda"
	"golang.org/x/term"
)

const defaultTermWidth = 80

func newAskCmd(a **app) *cobra.Command {
	var render bool
	cmd := &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Stream one answer to stdout",
		Long: `Ask a single question. The normalized markdown is written as it
arrives; with --render the finished answer is styled for the terminal.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), *a, cmd.OutOrStdout(), strings.Join(args, " "), render)
		},
	}
	cmd.Flags().BoolVarP(&render, "render", "r", false, "render the finished answer instead of streaming raw markdown")
	return cmd
}

func runAsk(ctx context.Context, a *app, out io.Writer, query string, render bool) error {
	if _, err := authorize(ctx, a, false); err != nil {
		return err
	}

	opts := []veda.ControllerOption{
		veda.WithLogger(a.logger),
		veda.WithIdleTimeout(a.cfg.IdleTimeout),
	}
	if !render {
		opts = append(opts, veda.WithObserver(&suffixWriter{w: out}))
	}
	ctrl := veda.NewController(a.sse, opts...)

	s, err := ctrl.Run(ctx, query)
	if s != nil {
		switch {
		case render:
			fmt.Fprintln(out, a.renderer.Render(s.Buffer.String(), termWidth(out)))
		case s.Buffer.Len() > 0:
			// The streamed text lacks a final newline.
			fmt.Fprintln(out)
		}
	}
	if err != nil {
		if s != nil && s.State == veda.StateErrored {
			return fmt.Errorf("%s: %w", s.ErrorMessage, err)
		}
		return err
	}
	return nil
}

// suffixWriter is a view observer for plain output. The document only grows
// within a session, so each sync writes just the new suffix.
type suffixWriter struct {
	w    io.Writer
	prev string
}

func (s *suffixWriter) Sync(doc string) {
	if strings.HasPrefix(doc, s.prev) {
		_, _ = io.WriteString(s.w, doc[len(s.prev):])
	} else if doc != "" {
		_, _ = io.WriteString(s.w, "\n"+doc)
	}
	s.prev = doc
}

// termWidth returns the width of out when it is a terminal.
func termWidth(out io.Writer) int {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultTermWidth
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil || w <= 0 {
		return defaultTermWidth
	}
	return w
}
