package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ethpandaops/parkoor/pkg/auth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Hash a password read from stdin",
	Long: `Read a password from the first line of stdin and print the stored form
used in the users table.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}

		hash, err := auth.HashPassword(password)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), hash)

		return nil
	},
}

var (
	ssoSite       string
	ssoPermission string
	ssoUser       string
)

var ssoTokenCmd = &cobra.Command{
	Use:   "sso-token",
	Short: "Mint an SSO handoff token",
	Long: `Sign a handoff token with the configured SSO secret, as the portal
would. Useful for testing a portal integration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if !cfg.Auth.SSO.Enabled {
			return errors.New("sso is not enabled (auth.sso.enabled)")
		}

		codec := auth.NewSSOCodec(cfg.Auth.SSO.Secret, cfg.Auth.SSO.Salt, cfg.Auth.SSO.MaxAge)

		token, err := codec.Issue(auth.SSOContext{
			SiteCode:        ssoSite,
			PermissionLevel: ssoPermission,
			Username:        ssoUser,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), token)

		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long:  `Print the merged file, environment and default configuration with secrets redacted.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)

		if err := enc.Encode(cfg.Redacted()); err != nil {
			return fmt.Errorf("encoding config: %w", err)
		}

		return enc.Close()
	},
}

func init() {
	ssoTokenCmd.Flags().StringVar(&ssoSite, "site", "", "site code")
	ssoTokenCmd.Flags().StringVar(&ssoPermission, "permission", "", "portal permission level (admin, site_admin, user)")
	ssoTokenCmd.Flags().StringVar(&ssoUser, "user", "", "portal username (optional)")

	_ = ssoTokenCmd.MarkFlagRequired("site")
	_ = ssoTokenCmd.MarkFlagRequired("permission")

	rootCmd.AddCommand(hashPasswordCmd, ssoTokenCmd, configCmd)
}

// readLine returns the first line of r without the line terminator.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}

	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password on stdin")
	}

	return line, nil
}
