package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// tokenCmd mints an HS256 token for local development servers
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development token signed with the server's JWT secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			secret, _ := flags.GetString("secret")
			rawUser, _ := flags.GetString("user")
			ttl, _ := flags.GetDuration("ttl")

			if secret == "" {
				return errors.New("--secret is required")
			}
			userID := uuid.New()
			if rawUser != "" {
				id, err := parseID("user id", rawUser)
				if err != nil {
					return err
				}
				userID = id
			}

			signed, err := mintToken(secret, userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			return nil
		},
	}

	cmd.Flags().String("secret", envOr("JWT_SECRET", ""), "HMAC secret (JWT_SECRET)")
	cmd.Flags().String("user", "", "User id; a new one is generated when empty")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func mintToken(secret string, userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
