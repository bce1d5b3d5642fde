package cli

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/guardforce-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/guardforce-backend-go/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

type tokenOptions struct {
	secret     string
	expiration string
	userID     string
	companyID  string
	role       string
	guardID    string
}

// NewTokenCommand creates the token command, which signs access tokens for
// local development against the API.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:   "token --company <id> --role <role>",
		Short: "Sign a development access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := opts.secret
			if secret == "" {
				secret = os.Getenv("JWT_SECRET_KEY")
			}
			if secret == "" {
				return fmt.Errorf("--secret or JWT_SECRET_KEY is required")
			}

			if !user.Role(opts.role).IsValid() {
				return fmt.Errorf("invalid role %q: must be one of %v", opts.role, user.RoleValues)
			}

			svc, err := jwt.NewJWTService(secret, opts.expiration)
			if err != nil {
				return err
			}

			claims := user.Claims{
				UserID:    opts.userID,
				CompanyID: opts.companyID,
				Role:      user.Role(opts.role),
			}
			if opts.guardID != "" {
				claims.GuardID = &opts.guardID
			}

			token, expiresAt, err := svc.GenerateAccessToken(claims)
			if err != nil {
				return err
			}

			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
					"access_token": token,
					"expires_at":   expiresAt,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.secret, "secret", "", "signing secret, defaults to JWT_SECRET_KEY")
	cmd.Flags().StringVar(&opts.expiration, "expires", "1h", "token lifetime")
	cmd.Flags().StringVar(&opts.userID, "user", "dev", "user id")
	cmd.Flags().StringVar(&opts.companyID, "company", "", "company id")
	cmd.Flags().StringVar(&opts.role, "role", string(user.RoleManager), "owner, manager or guard")
	cmd.Flags().StringVar(&opts.guardID, "guard", "", "guard id, required for the guard role")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}
