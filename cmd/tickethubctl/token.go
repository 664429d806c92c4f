package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/tickethub-backend/internal/data/repos"
	"github.com/yungbote/tickethub-backend/internal/pkg/dbctx"
	"github.com/yungbote/tickethub-backend/internal/services"
)

var (
	tokenEmail string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for an existing user",
	Long: `Prints a signed HS256 token for the user with the given email. Sign-in
lives outside this service; this is for local development and scripts.

Example:
  tickethubctl token --email admin@example.com --ttl 2h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.ToLower(strings.TrimSpace(tokenEmail))
		if email == "" {
			return fmt.Errorf("--email is required")
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.Auth.DevTokenTTL
		}

		dbService, err := openDatabase()
		if err != nil {
			return err
		}
		defer dbService.Close()

		theDB := dbService.DB()
		userRepo := repos.NewUserRepo(theDB, log)
		users, err := userRepo.GetByEmails(dbctx.Context{Ctx: cmd.Context()}, []string{email})
		if err != nil {
			return fmt.Errorf("lookup user: %w", err)
		}
		if len(users) == 0 {
			return fmt.Errorf("no user with email %s", email)
		}
		if !users[0].IsActive {
			return fmt.Errorf("user %s is inactive", email)
		}

		auth := services.NewAuthService(theDB, log, userRepo, cfg.Auth.JWTSecretKey, cfg.Auth.Issuer)
		token, err := auth.IssueToken(users[0], ttl)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email of the user to sign for")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (defaults to auth.dev_token_ttl)")
}
