package runstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lineup-runner/internal/model"
)

var carryForwardColumns = []string{"identifier", "secret"}

// CarryForward collects credentials whose session failed so a later run can
// retry exactly those.
type CarryForward struct {
	file csvFile
}

func NewCarryForward(path string) *CarryForward {
	return &CarryForward{file: csvFile{path: path, header: carryForwardColumns}}
}

func (c *CarryForward) Path() string { return c.file.path }

func (c *CarryForward) Append(cred model.Credential) error {
	return c.file.append([]string{cred.Identifier, cred.Secret})
}

// StagingPath is where a retry-only run collects new failures before they
// replace the carry-forward file at target.
func StagingPath(target string) string {
	ext := filepath.Ext(target)
	return strings.TrimSuffix(target, ext) + ".staging" + ext
}

// Finalize replaces target with staging when staging holds at least one
// credential, and removes both files otherwise. It returns the number of
// credentials carried forward.
func Finalize(staging, target string) (int, error) {
	creds, err := ReadCarryForward(staging)
	if err != nil && !os.IsNotExist(err) {
		return 0, err
	}
	if len(creds) == 0 {
		if err := removeIfExists(staging); err != nil {
			return 0, err
		}
		if err := removeIfExists(target); err != nil {
			return 0, err
		}
		return 0, nil
	}
	if err := os.Rename(staging, target); err != nil {
		return 0, fmt.Errorf("replace carry-forward %s: %w", target, err)
	}
	return len(creds), nil
}

// ReadCredentials loads a two-column credential file. Both the
// identifier,secret and username,password headers are understood. A missing
// file is reported with an error satisfying os.IsNotExist.
func ReadCredentials(path string) ([]model.Credential, error) {
	return readCredentials(path, cell)
}

// ReadCarryForward is ReadCredentials for files this package wrote: secrets
// come back exactly as they were appended.
func ReadCarryForward(path string) ([]model.Credential, error) {
	return readCredentials(path, rawCell)
}

func readCredentials(path string, secretCell func([]string, int) string) ([]model.Credential, error) {
	header, rows, err := readCSV(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read credentials %s: %w", path, err)
	}
	if header == nil {
		return []model.Credential{}, nil
	}

	id := columnIndex(header, "identifier", "username")
	secret := columnIndex(header, "secret", "password")
	if id < 0 || secret < 0 {
		return nil, fmt.Errorf("credentials %s: header must be identifier,secret or username,password", path)
	}

	out := make([]model.Credential, 0, len(rows))
	for i, row := range rows {
		cred := model.Credential{Identifier: cell(row, id), Secret: secretCell(row, secret)}
		if cred.Identifier == "" {
			return nil, fmt.Errorf("credentials %s: row %d has no identifier", path, i+2)
		}
		out = append(out, cred)
	}
	return out, nil
}
