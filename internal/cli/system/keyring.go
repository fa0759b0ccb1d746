package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitrack/internal/cli"
	"github.com/julianstephens/habitrack/internal/keyring"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/storage/postgres"
)

type KeyringCmd struct {
	Set    KeyringSetCmd    `cmd:"" help:"Store a secret in the OS keyring."`
	Get    KeyringGetCmd    `cmd:"" help:"Show a stored secret, masked."`
	Delete KeyringDeleteCmd `cmd:"" help:"Remove a secret from the OS keyring."`
	Status KeyringStatusCmd `cmd:"" help:"Check keyring availability and stored secrets."`
}

// KeyringSetCmd stores a database connection string or Telegram bot token
type KeyringSetCmd struct {
	Secret string `arg:"" enum:"database,db,telegram,tg" help:"Secret to store: database or telegram."`
	Value  string `arg:"" help:"Connection string or bot token."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}

	if secret == keyring.SecretDatabase {
		if !storage.IsPostgresConnString(cmd.Value) {
			return errors.New("connection string must be a valid PostgreSQL connection string")
		}
		if _, err := postgres.ValidateConnString(cmd.Value); err != nil {
			if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("invalid connection string: %w", err)
			}
			fmt.Println("⚠️  Warning: Connection string contains embedded credentials.")
			fmt.Println("   It will be stored as-is in the encrypted OS keyring.")
		}
	}

	if err := keyring.Set(secret, cmd.Value); err != nil {
		return err
	}

	fmt.Printf("✓ %s stored successfully in OS keyring\n", secret)
	if secret == keyring.SecretDatabase {
		fmt.Println("  Pass --config=keyring to use it")
	}
	return nil
}

type KeyringGetCmd struct {
	Secret string `arg:"" enum:"database,db,telegram,tg" help:"Secret to show: database or telegram."`
}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}

	value, err := keyring.Get(secret)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring. Use 'habitrack keyring set %s' to store one", secret, cmd.Secret)
		}
		return fmt.Errorf("failed to retrieve %s from keyring: %w", secret, err)
	}

	fmt.Printf("%s retrieved from keyring:\n", secret)
	fmt.Println(maskSecret(secret, value))
	return nil
}

// maskSecret hides a connection string's password, or all but the last
// four characters of a token
func maskSecret(secret keyring.Secret, value string) string {
	if secret == keyring.SecretDatabase {
		return postgres.MaskPassword(value)
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

type KeyringDeleteCmd struct {
	Secret string `arg:"" enum:"database,db,telegram,tg" help:"Secret to delete: database or telegram."`
}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	secret, err := keyring.ParseSecret(cmd.Secret)
	if err != nil {
		return err
	}

	if err := keyring.Delete(secret); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("no %s found in keyring", secret)
		}
		return err
	}

	fmt.Printf("✓ %s deleted from OS keyring\n", secret)
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		fmt.Println("❌ OS keyring is not available on this system")
		return errors.New("keyring unavailable")
	}

	fmt.Println("✓ OS keyring is available")
	for _, s := range keyring.Secrets {
		_, err := keyring.Get(s)
		switch {
		case err == nil:
			fmt.Printf("✓ %s is stored in keyring\n", s)
		case errors.Is(err, keyring.ErrNotFound):
			fmt.Printf("ℹ No %s stored in keyring\n", s)
		default:
			fmt.Printf("⚠ %s: %v\n", s, err)
		}
	}
	return nil
}
