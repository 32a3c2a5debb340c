package account

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"CrossPay/internal/model"
)

// AccountState is the persisted form of one user's settings and ledger.
type AccountState struct {
	Settings model.Settings   `json:"settings"`
	Ledger   model.UserLedger `json:"ledger"`
}

// StateFile is the on-disk layout of all accounts.
type StateFile struct {
	Accounts  map[string]AccountState `json:"accounts"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// LoadState reads accounts from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*StateFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &StateFile{Accounts: map[string]AccountState{}}, nil
		}
		return nil, err
	}
	var state StateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filePath, err)
	}
	if state.Accounts == nil {
		state.Accounts = map[string]AccountState{}
	}
	return &state, nil
}

// SaveState writes accounts to a JSON file, replacing it atomically.
func SaveState(filePath string, state *StateFile) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
