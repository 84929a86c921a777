package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vedaai/veda"
	bt "github.com/vedaai/veda/bubbletea"
)

func newLoginCmd(a **app) *cobra.Command {
	var c veda.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.Email == "" || c.Password == "" {
				if err := bt.RunForm(ctx, bt.LoginForm(&c)); err != nil {
					return err
				}
			}
			msg, err := login(ctx, *a, c)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.Email, "email", "", "account email")
	cmd.Flags().StringVar(&c.Password, "password", "", "account password")
	return cmd
}

func newRegisterCmd(a **app) *cobra.Command {
	var r veda.Registration
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if r.Username == "" || r.Email == "" || r.Password == "" {
				if err := bt.RunForm(ctx, bt.RegisterForm(&r)); err != nil {
					return err
				}
			}
			msg, err := (*a).auth.Register(ctx, r)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			fmt.Fprintln(cmd.OutOrStdout(), "Run `veda login` to sign in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&r.Username, "username", "", "account username")
	cmd.Flags().StringVar(&r.Email, "email", "", "account email")
	cmd.Flags().StringVar(&r.Password, "password", "", "account password")
	return cmd
}

func newLogoutCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := (*a).auth.Logout(cmd.Context())
			// Persist whatever the server left in the jar.
			if saveErr := (*a).saveCookies(); err == nil {
				err = saveErr
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func newWhoamiCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := authorize(cmd.Context(), *a, false)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id.DisplayName())
			return nil
		},
	}
}
