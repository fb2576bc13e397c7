package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hongminglow/carrot/internal/auth"
)

var tokenUser string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for an existing user",
	Long: `Issue a bearer token for an existing user without a password.
Intended for operators and local testing.`,
	Example: `  carrot token --user alice
  carrot token --user alice@example.com`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", "", "username or email")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	principal, err := auth.NewResolver(store).ResolveByLoginOrEmail(ctx, tokenUser)
	if errors.Is(err, auth.ErrPrincipalNotFound) {
		return fmt.Errorf("no active user matches %q", tokenUser)
	}
	if err != nil {
		return err
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.TokenTTL())
	token, err := tokens.GenerateFor(principal)
	if err != nil {
		return err
	}
	cmd.Println(token)
	return nil
}
