package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/tailorin/internal/secrets"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the backend bearer token in the OS keyring",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [account]",
	Short: "Store a token (read from stdin)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := tokenAccount(args)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Paste token for %s and press enter: ", account)
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read token: %w", err)
		}
		if err := secrets.SetToken(account, strings.TrimSpace(line)); err != nil {
			return err
		}
		fmt.Printf("Token stored for %s.\n", account)
		return nil
	},
}

var tokenDeleteCmd = &cobra.Command{
	Use:   "delete [account]",
	Short: "Remove a stored token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := tokenAccount(args)
		if err != nil {
			return err
		}
		if err := secrets.DeleteToken(account); err != nil {
			return err
		}
		fmt.Printf("Token removed for %s.\n", account)
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenSetCmd, tokenDeleteCmd)
	rootCmd.AddCommand(tokenCmd)
}

// tokenAccount is the account argument, or backend.token_account from the config.
func tokenAccount(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return "", err
	}
	if cfg.Backend.TokenAccount == "" {
		return "", errors.New("no account given and backend.token_account is not set")
	}
	return cfg.Backend.TokenAccount, nil
}
