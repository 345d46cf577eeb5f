package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fwojciec/parley/auth"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "token <jwt>",
		Short: "Store the bearer token used to talk to the backend",
		Long: `Store the bearer token used to talk to the backend.

The token is written to the token file (see --token-file) with
owner-only permissions. The user id and expiry it carries are printed
so a wrong or stale token is noticed before the first request.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok := strings.TrimSpace(args[0])
			if a.cfg.TokenFile == "" {
				return errors.New("token: no token file configured")
			}
			claims, err := auth.ParseClaims(tok)
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}
			expired, err := auth.Expired(tok, time.Now())
			if err != nil {
				return fmt.Errorf("token: %w", err)
			}
			if expired {
				return fmt.Errorf("token: expired at %s", claims.ExpiresAt.UTC().Format(time.RFC3339))
			}
			if err := auth.SaveToken(a.cfg.TokenFile, tok); err != nil {
				return fmt.Errorf("token: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Token saved to %s\n", a.cfg.TokenFile)
			if user := claims.User(); user != "" {
				fmt.Fprintf(out, "User: %s\n", user)
			}
			if claims.ExpiresAt != nil {
				fmt.Fprintf(out, "Expires: %s\n", claims.ExpiresAt.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}
