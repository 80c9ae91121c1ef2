package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"lineup-runner/internal/model"
	"lineup-runner/internal/phase"
	"lineup-runner/internal/runstore"
	"lineup-runner/internal/settings"
	"lineup-runner/internal/surface"
	"lineup-runner/internal/surface/surfacetest"
)

type siteFarm struct {
	mu    sync.Mutex
	sites []*surfacetest.Site
}

func (f *siteFarm) launcher() *surfacetest.Launcher {
	return &surfacetest.Launcher{NewPage: func(int) *surfacetest.Page {
		s := surfacetest.NewSite(surfacetest.SiteOptions{})
		f.mu.Lock()
		f.sites = append(f.sites, s)
		f.mu.Unlock()
		return s.Top
	}}
}

func (f *siteFarm) joined() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sites {
		if s.Joined() {
			n++
		}
	}
	return n
}

func testTeam() model.RunConfiguration {
	return model.RunConfiguration{
		TargetLabel:      "India vs Australia",
		TargetIdentifier: "777",
		MonetaryTier:     49,
		Roster:           []model.RosterCategory{{Name: "Batsmen", Players: []string{"Rahul Sharma", "Virat K."}}},
		CaptainName:      "Rahul Sharma",
		ViceCaptainName:  "Virat K.",
	}
}

func testOptions(t *testing.T, launcher surface.Launcher, creds []model.Credential) Options {
	t.Helper()
	sel := phase.DefaultSelectors()
	sel.TabLabels["Batsmen"] = "BAT"
	return Options{
		BaseURL:      "https://site.test",
		Team:         testTeam(),
		Selectors:    sel,
		Timings:      phase.FastTimings(),
		Credentials:  creds,
		Concurrency:  2,
		ArtifactsDir: filepath.Join(t.TempDir(), "artifacts"),
		Launcher:     launcher,
		Settle:       func() time.Duration { return 0 },
	}
}

func creds(secrets ...string) []model.Credential {
	out := make([]model.Credential, len(secrets))
	for i, s := range secrets {
		out[i] = model.Credential{Identifier: fmt.Sprintf("user%d", i+1), Secret: s}
	}
	return out
}

func TestRunRecordsEverySessionWithinConcurrencyBound(t *testing.T) {
	farm := &siteFarm{}
	launcher := farm.launcher()
	var console bytes.Buffer
	opts := testOptions(t, launcher, creds("p1", "wrong", "p3", "wrong", "p5"))
	opts.Observer = &ConsoleObserver{Out: &console}

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	layout := runstore.Layout{Root: opts.ArtifactsDir}
	rows, err := runstore.ReadLedger(layout.LedgerPath())
	if err != nil {
		t.Fatalf("read ledger: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected 5 ledger rows, got %d", len(rows))
	}
	tally := runstore.Tally(rows)
	if tally[model.StatusSuccess] != 3 || tally[model.StatusFail] != 2 {
		t.Fatalf("unexpected tally %v", tally)
	}
	for _, r := range rows {
		if r.Status == model.StatusSuccess && r.Step != model.StepContestJoined {
			t.Fatalf("success row has step %q", r.Step)
		}
		if r.Status == model.StatusFail && r.Step != "authenticate:login_failed" {
			t.Fatalf("fail row has step %q", r.Step)
		}
	}

	if got := launcher.MaxActive(); got > 2 {
		t.Fatalf("concurrency bound exceeded: %d sessions open at once", got)
	}
	if launcher.Active() != 0 {
		t.Fatalf("every session must be closed, %d still open", launcher.Active())
	}
	if farm.joined() != 3 {
		t.Fatalf("expected 3 joins, got %d", farm.joined())
	}

	carried, err := runstore.ReadCredentials(layout.CarryForwardPath())
	if err != nil {
		t.Fatalf("read carry-forward: %v", err)
	}
	if len(carried) != 2 || carried[0].Secret != "wrong" {
		t.Fatalf("unexpected carry-forward %+v", carried)
	}

	if res.Summary.CarryForward != 2 || len(res.Summary.Failures) != 2 {
		t.Fatalf("unexpected summary %+v", res.Summary)
	}
	if _, err := os.Stat(res.SummaryPath); err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	shots, _ := filepath.Glob(filepath.Join(opts.ArtifactsDir, "fail-*-authenticate_login_failed.png"))
	if len(shots) != 2 {
		t.Fatalf("expected two failure screenshots, got %v", shots)
	}
	logs, _ := filepath.Glob(filepath.Join(opts.ArtifactsDir, "logs", "*.log"))
	if len(logs) != 5 {
		t.Fatalf("expected one log per session, got %d", len(logs))
	}
	if runstore.LockHeld(opts.ArtifactsDir) {
		t.Fatalf("run lock must be released")
	}

	out := console.String()
	if !strings.Contains(out, "FAIL user2: step=init error=authentication: login_failed") {
		t.Fatalf("missing failure line in console output:\n%s", out)
	}
	if !strings.Contains(out, "OK user1 (success)") {
		t.Fatalf("missing success line in console output:\n%s", out)
	}
}

func TestRunAuthProbeStopsAfterNavigation(t *testing.T) {
	farm := &siteFarm{}
	opts := testOptions(t, farm.launcher(), creds("p1", "p2"))
	opts.AuthProbe = true

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, o := range res.Outcomes {
		if o.Status != model.StatusTestSuccess || o.Step != model.StepMatchOpened {
			t.Fatalf("unexpected probe outcome %+v", o)
		}
	}
	if farm.joined() != 0 {
		t.Fatalf("probe mode must not join contests")
	}
	if res.Summary.Mode != ModeAuthProbe {
		t.Fatalf("unexpected mode %q", res.Summary.Mode)
	}
}

func TestRunRetryFailedDeletesCarryForwardOnFullSuccess(t *testing.T) {
	farm := &siteFarm{}
	opts := testOptions(t, farm.launcher(), creds("p1", "p2"))
	opts.RetryFailed = true
	layout := runstore.Layout{Root: opts.ArtifactsDir}
	for _, c := range opts.Credentials {
		if err := runstore.NewCarryForward(layout.CarryForwardPath()).Append(c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Summary.CarryForward != 0 {
		t.Fatalf("expected nothing carried, got %d", res.Summary.CarryForward)
	}
	if _, err := os.Stat(layout.CarryForwardPath()); !os.IsNotExist(err) {
		t.Fatalf("carry-forward file must be deleted, stat err=%v", err)
	}
	if _, err := os.Stat(runstore.StagingPath(layout.CarryForwardPath())); !os.IsNotExist(err) {
		t.Fatalf("staging file must not linger")
	}
}

func TestRunRetryFailedReplacesCarryForward(t *testing.T) {
	farm := &siteFarm{}
	opts := testOptions(t, farm.launcher(), creds("p1", "wrong"))
	opts.RetryFailed = true
	layout := runstore.Layout{Root: opts.ArtifactsDir}
	for _, c := range opts.Credentials {
		_ = runstore.NewCarryForward(layout.CarryForwardPath()).Append(c)
	}

	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("run: %v", err)
	}
	carried, err := runstore.ReadCredentials(layout.CarryForwardPath())
	if err != nil {
		t.Fatalf("read carry-forward: %v", err)
	}
	if len(carried) != 1 || carried[0].Identifier != "user2" {
		t.Fatalf("expected only the new failure, got %+v", carried)
	}
}

func TestRunReplacesCarryForwardAcrossNormalRuns(t *testing.T) {
	farm := &siteFarm{}
	opts := testOptions(t, farm.launcher(), creds("p1", "wrong"))
	layout := runstore.Layout{Root: opts.ArtifactsDir}

	for i := 0; i < 2; i++ {
		res, err := Run(context.Background(), opts)
		if err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
		if res.Summary.CarryForward != 1 {
			t.Fatalf("run %d: expected one carried, got %d", i+1, res.Summary.CarryForward)
		}
	}

	retry, err := settings.LoadCredentials("", layout.CarryForwardPath(), true)
	if err != nil {
		t.Fatalf("retry after two runs: %v", err)
	}
	if len(retry) != 1 || retry[0] != (model.Credential{Identifier: "user2", Secret: "wrong"}) {
		t.Fatalf("unexpected carry-forward %+v", retry)
	}

	opts.Credentials = creds("p1")
	if _, err := Run(context.Background(), opts); err != nil {
		t.Fatalf("clean run: %v", err)
	}
	if _, err := os.Stat(layout.CarryForwardPath()); !os.IsNotExist(err) {
		t.Fatalf("a run without failures must clear the carry-forward file, stat err=%v", err)
	}
	if _, err := os.Stat(runstore.StagingPath(layout.CarryForwardPath())); !os.IsNotExist(err) {
		t.Fatalf("staging file must not linger")
	}
}

type panicLauncher struct{}

func (panicLauncher) NewSession(context.Context) (surface.Session, error) {
	panic("driver crashed")
}

func TestRunIsolatesLauncherFailures(t *testing.T) {
	opts := testOptions(t, &surfacetest.Launcher{Err: errors.New("browser gone")}, creds("a", "b", "c"))
	res, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, o := range res.Outcomes {
		if o.Status != model.StatusFail || o.Step != "init:error" || !strings.Contains(o.Error, "browser gone") {
			t.Fatalf("unexpected outcome %+v", o)
		}
	}

	opts = testOptions(t, panicLauncher{}, creds("a", "b"))
	res, err = Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Outcomes) != 2 || res.Outcomes[1].Status != model.StatusFail || !strings.Contains(res.Outcomes[1].Error, "driver crashed") {
		t.Fatalf("panic must become a failed outcome, got %+v", res.Outcomes)
	}
}

func TestRunRefusesLockedArtifacts(t *testing.T) {
	opts := testOptions(t, (&siteFarm{}).launcher(), creds("p1"))
	lock, err := runstore.AcquireRunLock(opts.ArtifactsDir, "other")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer func() { _ = lock.Release() }()

	if _, err := Run(context.Background(), opts); err == nil {
		t.Fatalf("expected lock error")
	}
}

func TestRunRequiresCredentials(t *testing.T) {
	opts := testOptions(t, (&siteFarm{}).launcher(), nil)
	_, err := Run(context.Background(), opts)
	if !model.IsKind(err, model.KindConfigurationInvalid) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
