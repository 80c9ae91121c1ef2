package cli

import (
	"path/filepath"
	"testing"

	"lineup-runner/internal/model"
	"lineup-runner/internal/settings"
)

func TestApplyRunFlagsOnlyOverridesExplicitFlags(t *testing.T) {
	base := settings.Env{
		MaxConcurrent: 3,
		Headless:      true,
		AccountsFile:  "config/accounts.csv",
		TeamFile:      "config/team.yaml",
		SelectorsFile: "config/selectors.yaml",
		ArtifactsDir:  "artifacts",
	}
	f := runFlags{concurrency: 5, headless: false, accounts: " other.csv ", team: "t.yaml", artifacts: "out"}

	got := applyRunFlags(base, f, map[string]bool{})
	if got != base {
		t.Fatalf("unset flags must not override env: %+v", got)
	}

	got = applyRunFlags(base, f, map[string]bool{"concurrency": true, "headless": true, "accounts": true, "artifacts": true})
	if got.MaxConcurrent != 5 || got.Headless {
		t.Fatalf("expected concurrency 5 headed, got %+v", got)
	}
	if got.AccountsFile != "other.csv" || got.ArtifactsDir != "out" {
		t.Fatalf("unexpected paths: %+v", got)
	}
	if got.TeamFile != "config/team.yaml" {
		t.Fatalf("team flag was not set, got %q", got.TeamFile)
	}
}

func TestApplyRunFlagsIgnoresNonPositiveConcurrency(t *testing.T) {
	got := applyRunFlags(settings.Env{MaxConcurrent: 3}, runFlags{concurrency: 0}, map[string]bool{"concurrency": true})
	if got.MaxConcurrent != 3 {
		t.Fatalf("expected env concurrency to survive, got %d", got.MaxConcurrent)
	}
}

func TestRunRejectsInvalidConfigurationBeforeLaunch(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("BASE_URL", "")
	t.Setenv("ARTIFACTS_DIR", filepath.Join(tmp, "artifacts"))

	err := Run([]string{"run", "--env", filepath.Join(tmp, "missing.env")})
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if model.KindOf(err) != model.KindConfigurationInvalid {
		t.Fatalf("expected configuration_invalid, got %v", err)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := Run([]string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
