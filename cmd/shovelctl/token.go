package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn_jwt"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/config"
	gormstore "github.com/shovel-heroes/shovel-heroes-go/pkg/server/store/gorm"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage session tokens",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'token' requires a subcommand (issue)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var tokenIssueCmd = &cobra.Command{
	Use:   "issue <email>",
	Short: "Issue a session token for a user",
	Long: `Issue a session token for an existing user without a password.

The token is signed with the configured jwt_secret and printed to stdout.
Its role claim is informational; the server always uses the stored role.

Example:
  curl -H "Authorization: Bearer $(shovelctl token issue ops@example.org)" localhost:8000/me`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		token, expiresAt, err := issueToken(cmd.Context(), cfg, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Token expires at %s\n", expiresAt.Format(time.RFC3339))
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenIssueCmd)
}

func issueToken(ctx context.Context, cfg *config.Config, email string) (string, time.Time, error) {
	database, err := connect(zap.NewNop(), false)
	if err != nil {
		return "", time.Time{}, err
	}
	users := gormstore.NewUsersStore(database)

	user, err := users.FetchUserByEmail(ctx, authn.NormalizeEmail(email))
	if err != nil {
		return "", time.Time{}, err
	}

	sessions, err := authn_jwt.New(users, authn_jwt.Config{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.SessionTTL(),
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return sessions.Issue(user)
}
