// Package secrets keeps the backend bearer token in the OS keyring.
package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// Service is the keyring service name tokens are stored under.
const Service = "tailorin"

// Token returns the token stored for account, or "" if there is none.
func Token(account string) (string, error) {
	tok, err := keyring.Get(Service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token for %s: %w", account, err)
	}
	return tok, nil
}

// SetToken stores token for account, replacing any previous value.
func SetToken(account, token string) error {
	if token == "" {
		return errors.New("token is empty")
	}
	if err := keyring.Set(Service, account, token); err != nil {
		return fmt.Errorf("store token for %s: %w", account, err)
	}
	return nil
}

// DeleteToken removes the token for account. Deleting a missing token is not an error.
func DeleteToken(account string) error {
	err := keyring.Delete(Service, account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete token for %s: %w", account, err)
	}
	return nil
}
