package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sitterboard/internal/common"
	"sitterboard/internal/security"
)

var (
	profileID    string
	profileName  string
	profileEmail string
	profileRole  string
	tokenTTL     time.Duration
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage identity-provider profiles",
}

var profilePutCmd = &cobra.Command{
	Use:   "put",
	Short: "Create or replace a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		id := common.NewUUID()
		if strings.TrimSpace(profileID) != "" {
			if id, err = common.ParseUUID(profileID); err != nil {
				return fmt.Errorf("invalid --id: %w", err)
			}
		}
		profile, err := rt.profiles.Put(cmd.Context(), id, profileName, profileEmail, profileRole)
		if err != nil {
			return err
		}
		return printJSON(profile)
	},
}

var profileGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.Close()
		id, err := common.ParseUUID(args[0])
		if err != nil {
			return fmt.Errorf("invalid id: %w", err)
		}
		profile, err := rt.profiles.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return printJSON(profile)
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue a bearer token for a user id (development only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		id, err := common.ParseUUID(args[0])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		token, expiresAt, err := security.NewJWTProvider(cfg.JWTSecret).Generate(id, tokenTTL)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"token": token, "expires_at": expiresAt})
	},
}

func init() {
	profilePutCmd.Flags().StringVar(&profileID, "id", "", "Profile id (default: generated)")
	profilePutCmd.Flags().StringVar(&profileName, "name", "", "Display name")
	profilePutCmd.Flags().StringVar(&profileEmail, "email", "", "Email address")
	profilePutCmd.Flags().StringVar(&profileRole, "role", "", "parent or student")
	_ = profilePutCmd.MarkFlagRequired("name")
	_ = profilePutCmd.MarkFlagRequired("role")
	profileCmd.AddCommand(profilePutCmd, profileGetCmd)

	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "Token lifetime")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
