package settings

import (
	"errors"
	"fmt"
	"os"

	"lineup-runner/internal/model"
	"lineup-runner/internal/runstore"
)

// LoadCredentials reads the credential list for a run. In retry mode the
// list comes only from the carry-forward file, and a missing or empty file
// there is a configuration error.
func LoadCredentials(accountsPath, carryForwardPath string, retryFailed bool) ([]model.Credential, error) {
	path, label, read := accountsPath, "accounts", runstore.ReadCredentials
	if retryFailed {
		path, label, read = carryForwardPath, "carry_forward", runstore.ReadCarryForward
	}

	creds, err := read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, model.Invalid(label+"_missing", fmt.Errorf("%s does not exist", path))
		}
		return nil, model.Invalid(label+"_malformed", err)
	}
	if len(creds) == 0 {
		return nil, model.Invalid(label+"_empty", fmt.Errorf("%s has no credentials", path))
	}

	seen := make(map[string]bool, len(creds))
	for _, c := range creds {
		if seen[c.Identifier] {
			return nil, model.Invalid(label+"_duplicate", fmt.Errorf("identifier %q appears more than once", c.Identifier))
		}
		seen[c.Identifier] = true
	}
	return creds, nil
}
