package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"lecturedl/internal/credentials"
)

func newCredentialsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage the password stored in the OS keyring",
	}
	cmd.AddCommand(newCredentialsSetCommand(ctx))
	cmd.AddCommand(newCredentialsClearCommand(ctx))
	return cmd
}

func newCredentialsSetCommand(ctx *commandContext) *cobra.Command {
	var username string
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a password in the OS keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			user := strings.TrimSpace(username)
			if user == "" {
				user = cfg.Auth.Username
			}
			if user == "" {
				return fmt.Errorf("username required (pass --username or set auth.username)")
			}

			password, err := readSecret(cmd, user, fromStdin)
			if err != nil {
				return err
			}
			if err := credentials.NewKeyring(cfg.Auth.KeyringService).Store(user, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored password for %s in keyring service %q\n", user, cfg.Auth.KeyringService)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account name (defaults to auth.username)")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the password from the first line of stdin")
	return cmd
}

func newCredentialsClearCommand(ctx *commandContext) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove a stored password from the OS keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			user := strings.TrimSpace(username)
			if user == "" {
				user = cfg.Auth.Username
			}
			if user == "" {
				return fmt.Errorf("username required (pass --username or set auth.username)")
			}
			if err := credentials.NewKeyring(cfg.Auth.KeyringService).Forget(user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed stored password for %s\n", user)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Account name (defaults to auth.username)")
	return cmd
}

// readSecret reads the password from stdin when asked to, or prompts on the
// terminal with echo disabled.
func readSecret(cmd *cobra.Command, username string, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password from stdin: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return "", fmt.Errorf("empty password")
		}
		return line, nil
	}
	secret, err := credentials.NewPrompt().Password(cmd.Context(), username)
	if err != nil {
		return "", fmt.Errorf("prompt for password (use --stdin when not on a terminal): %w", err)
	}
	if secret == "" {
		return "", fmt.Errorf("empty password")
	}
	return secret, nil
}
