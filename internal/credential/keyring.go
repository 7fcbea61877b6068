// Package credential stores IMAP passwords in the system keyring.
package credential

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "jobtrail"

// EnvPassword overrides the keyring when set, which keeps headless
// and CI runs from touching the system keychain.
const EnvPassword = "JOBTRAIL_IMAP_PASSWORD"

// passwordKey returns the keyring key for an account's IMAP password.
func passwordKey(account string) string {
	return "imap-" + account
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/jobtrail/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("jobtrail-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// GetPassword retrieves the IMAP password for an account. The
// JOBTRAIL_IMAP_PASSWORD environment variable takes precedence over
// the keyring.
func GetPassword(account string) (string, error) {
	if pw := os.Getenv(EnvPassword); pw != "" {
		return pw, nil
	}

	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(passwordKey(account))
	if err != nil {
		return "", fmt.Errorf("getting password for %q: %w", account, err)
	}

	return string(item.Data), nil
}

// SetPassword stores the IMAP password for an account in the system keyring.
func SetPassword(account string, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  passwordKey(account),
		Data: []byte(password),
	})
	if err != nil {
		return fmt.Errorf("setting password for %q: %w", account, err)
	}

	return nil
}

// DeletePassword removes the stored IMAP password for an account.
func DeletePassword(account string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(passwordKey(account))
	if err != nil {
		return fmt.Errorf("deleting password for %q: %w", account, err)
	}

	return nil
}
