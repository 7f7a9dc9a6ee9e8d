package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrEthical07/hireauth"
	"github.com/MrEthical07/hireauth/config"
	"github.com/MrEthical07/hireauth/internal"
)

func migrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the users table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cfg.ValidateService(); err != nil {
				return err
			}
			if cfg.Store.Driver == config.StoreMemory {
				return errors.New("migrate needs store.driver postgres or sqlite")
			}
			store, err := openSQLStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

// createAdminCmd is the only way to obtain an admin account; registration
// always yields applicants.
func createAdminCmd(flags *globalFlags) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account (password read from stdin)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if err := cfg.ValidateService(); err != nil {
				return err
			}
			if cfg.Store.Driver == config.StoreMemory {
				return errors.New("create-admin needs store.driver postgres or sqlite")
			}

			pw, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			engineCfg := cfg.Engine()
			if n := len([]rune(pw)); n < engineCfg.Password.MinLength {
				return fmt.Errorf("password must be at least %d characters", engineCfg.Password.MinLength)
			}
			hasher, err := hireauth.NewPasswordHasher(engineCfg)
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(pw)
			if err != nil {
				return err
			}

			store, err := openSQLStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			identity, err := store.Create(cmd.Context(), hireauth.CreateIdentityInput{
				FullName:     strings.TrimSpace(name),
				Email:        strings.ToLower(strings.TrimSpace(email)),
				Role:         hireauth.RoleAdmin,
				PasswordHash: hash,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), identity.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func hashPasswordCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Hash a password read from stdin with the configured algorithm",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			pw, err := readPassword(cmd.InOrStdin())
			if err != nil {
				return err
			}
			hasher, err := hireauth.NewPasswordHasher(cfg.Engine())
			if err != nil {
				return err
			}
			hash, err := hasher.Hash(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func genSecretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "gen-secret",
		Short: "Print a random value suitable for HIREAUTH_JWT_SECRET",
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret, err := internal.GenerateSecret(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 48, "random bytes before encoding")
	return cmd
}

func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New("no password on stdin")
	}
	return pw, nil
}
