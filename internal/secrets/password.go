package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"gigtracker-engine/internal/config"
)

const (
	// KeyringService groups the engine's entries in the OS keychain.
	KeyringService = "gigtracker"

	// PasswordEnv overrides the keychain, for headless hosts.
	PasswordEnv = "GIGTRACKER_IMAP_PASSWORD"
)

var ErrNoPassword = errors.New("IMAP password not found (set it in the keychain or " + PasswordEnv + ")")

func GetIMAPPassword(keyringAccount string) (string, error) {
	if pw := os.Getenv(PasswordEnv); strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("keyring get: %w", err)
		}
	}
	return "", ErrNoPassword
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	if err := keyring.Set(KeyringService, keyringAccount, password); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func DeleteIMAPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	err := keyring.Delete(KeyringService, keyringAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// IMAPKeyringAccount names the keychain entry for a mailbox login.
func IMAPKeyringAccount(cfg config.EmailConfig) string {
	return fmt.Sprintf("gigtracker:imap:%s@%s",
		strings.ToLower(strings.TrimSpace(cfg.Username)),
		strings.ToLower(strings.TrimSpace(cfg.IMAPHost)),
	)
}
