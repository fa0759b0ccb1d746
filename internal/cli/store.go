package cli

import (
	"errors"
	"fmt"

	"github.com/julianstephens/habitrack/internal/keyring"
	"github.com/julianstephens/habitrack/internal/storage"
	"github.com/julianstephens/habitrack/internal/storage/postgres"
	"github.com/julianstephens/habitrack/internal/storage/sqlite"
	"github.com/julianstephens/habitrack/internal/utils"
)

// KeyringConfig is the --config value that reads the PostgreSQL connection
// string from the OS keyring
const KeyringConfig = "keyring"

// NewStore picks a storage provider for a --config value: "keyring", a
// PostgreSQL URL or DSN, or a SQLite file path.
func NewStore(config string) (storage.Provider, error) {
	if config == KeyringConfig {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, errors.New("no connection string found in keyring. Use 'habitrack keyring set database <connection-string>' to store one")
			}
			return nil, err
		}
		return postgres.New(connStr), nil
	}

	if storage.IsPostgresConnString(config) {
		if valid, err := postgres.ValidateConnString(config); !valid {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed. " +
					"Store the full string with 'habitrack keyring set database' and pass --config=keyring, " +
					"or use PGPASSWORD or a .pgpass file")
			}
			return nil, err
		}
		return postgres.New(config), nil
	}

	path, err := utils.ExpandPath(config)
	if err != nil {
		return nil, fmt.Errorf("failed to expand config path: %w", err)
	}
	return sqlite.NewStore(path), nil
}
