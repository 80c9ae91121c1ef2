package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func setWorkspaceEnv(t *testing.T, dir string) {
	t.Helper()
	t.Setenv("BASE_URL", "https://site.test")
	t.Setenv("ACCOUNTS_FILE", filepath.Join(dir, "config", "accounts.csv"))
	t.Setenv("TEAM_FILE", filepath.Join(dir, "config", "team.yaml"))
	t.Setenv("SELECTORS_FILE", filepath.Join(dir, "config", "selectors.yaml"))
	t.Setenv("ARTIFACTS_DIR", filepath.Join(dir, "artifacts"))
}

func TestHarnessInitThenDoctor(t *testing.T) {
	tmp := t.TempDir()
	setWorkspaceEnv(t, tmp)
	envFile := filepath.Join(tmp, "missing.env")

	if err := Run([]string{"init", "--env", envFile, "--skip-browser"}); err != nil {
		t.Fatalf("init: %v", err)
	}
	for _, name := range []string{"accounts.csv", "team.yaml", "selectors.yaml"} {
		if _, err := os.Stat(filepath.Join(tmp, "config", name)); err != nil {
			t.Fatalf("expected sample %s: %v", name, err)
		}
	}

	// sample accounts file has a header only
	if err := Run([]string{"doctor", "--env", envFile, "--skip-browser"}); err == nil {
		t.Fatal("doctor should fail without accounts")
	}

	accounts := "username,password\nuser1,secret1\n"
	if err := os.WriteFile(filepath.Join(tmp, "config", "accounts.csv"), []byte(accounts), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Run([]string{"doctor", "--env", envFile, "--skip-browser", "--json"}); err != nil {
		t.Fatalf("doctor after filling accounts: %v", err)
	}
}
