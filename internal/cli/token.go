package cli

import (
	"fmt"

	"quiz-platform/internal/middleware"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewTokenCmd mints a signed bearer token for local testing.
func NewTokenCmd(configPath *string) *cobra.Command {
	var (
		userID string
		email  string
		admin  bool
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development JWT for a user id",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := primitive.ObjectIDFromHex(userID); err != nil {
				return fmt.Errorf("--user must be a 24 character hex id: %w", err)
			}
			cfg, err := loadConfig(*configPath, "")
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("JWT_SECRET is not configured")
			}
			auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiry, false)
			token, err := auth.GenerateToken(userID, email, admin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id the token is issued for")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	cmd.Flags().BoolVar(&admin, "admin", false, "grant the admin role")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
