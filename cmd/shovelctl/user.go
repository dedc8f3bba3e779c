package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/audit"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/authenticator/authn"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/config"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/model"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
	"github.com/shovel-heroes/shovel-heroes-go/pkg/server/store"
	gormstore "github.com/shovel-heroes/shovel-heroes-go/pkg/server/store/gorm"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'user' requires a subcommand (create, set-role)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a user account",
	Long: `Create a user account that can log in with a password.

The password is read from SHOVEL_USER_PASSWORD when --password is not
given. The new user's ID is printed to stdout.

Example:
  shovelctl user create ops@example.org --role super_admin --name "Ops"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("SHOVEL_USER_PASSWORD")
		}
		name, _ := cmd.Flags().GetString("name")
		roleName, _ := cmd.Flags().GetString("role")

		r, err := role.RoleString(roleName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid role: %s\n", roleName)
			os.Exit(1)
		}

		id, err := createUser(cmd.Context(), args[0], name, password, r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(id)
	},
}

var userSetRoleCmd = &cobra.Command{
	Use:   "set-role <email> <role>",
	Short: "Change a user's stored role",
	Long: `Change a user's stored role.

This bypasses the API's role hierarchy guard, so it is the way to create
the first super_admin for a deployment.

Example:
  shovelctl user set-role ops@example.org super_admin`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		r, err := role.RoleString(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid role: %s\n", args[1])
			os.Exit(1)
		}

		cfg := loadConfig()
		logger := mustLogger(cfg.LogLevel)
		defer func() { _ = logger.Sync() }()

		if err := setUserRole(cmd.Context(), cfg, logger, args[0], r); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set role: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s is now %s\n", args[0], r)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userSetRoleCmd)
	userCreateCmd.Flags().StringP("password", "P", "", "login password (default: $SHOVEL_USER_PASSWORD)")
	userCreateCmd.Flags().StringP("name", "n", "", "display name")
	userCreateCmd.Flags().StringP("role", "r", role.RoleUser.String(), "stored role")
}

func createUser(ctx context.Context, email, name, password string, r role.Role) (string, error) {
	email = authn.NormalizeEmail(email)
	if email == "" {
		return "", errors.New("email is required")
	}
	if len(password) < 8 {
		return "", errors.New("password must be at least 8 characters")
	}
	if r == role.RoleGuest {
		return "", errors.New("guest is not a stored role")
	}

	hash, err := authn.HashPassword([]byte(password))
	if err != nil {
		return "", err
	}

	database, err := connect(zap.NewNop(), false)
	if err != nil {
		return "", err
	}

	user := &model.User{
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
		Role:         r,
	}
	if err := gormstore.NewUsersStore(database).CreateUser(ctx, user); err != nil {
		return "", err
	}
	return user.ID, nil
}

func setUserRole(ctx context.Context, cfg *config.Config, logger *zap.Logger, email string, r role.Role) error {
	if r == role.RoleGuest {
		return errors.New("guest is not a stored role")
	}

	database, err := connect(logger.Named("db"), false)
	if err != nil {
		return err
	}
	users := gormstore.NewUsersStore(database)

	user, err := users.FetchUserByEmail(ctx, authn.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no user with email %s", email)
		}
		return err
	}

	auditor, closeAudit, err := cliAuditor(cfg, logger)
	if err != nil {
		return err
	}
	defer closeAudit()

	event := audit.RoleChangeEvent{
		Subject:      audit.Subject{UserID: "shovelctl"},
		TargetUserID: user.ID,
		FromRole:     user.Role.String(),
		ToRole:       r.String(),
	}
	if err := users.UpdateUserRole(ctx, user.ID, r); err != nil {
		event.ErrorMessage = err.Error()
		auditor.Log(ctx, event)
		return err
	}
	event.Success = true
	auditor.Log(ctx, event)
	return nil
}
