package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lineup-runner/internal/runstore"
)

type DoctorOptions struct {
	Env Env
	// BrowserCheck reports whether the automation driver is installed.
	BrowserCheck func() (bool, string)
}

type DoctorResult struct {
	OK     bool          `json:"ok"`
	Checks []DoctorCheck `json:"checks"`
}

type DoctorCheck struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type InitWorkspaceResult struct {
	ArtifactsDir string       `json:"artifacts_dir"`
	Created      []string     `json:"created"`
	DoctorResult DoctorResult `json:"doctor"`
}

func Doctor(opts DoctorOptions) DoctorResult {
	e := opts.Env
	checks := make([]DoctorCheck, 0, 7)

	checks = append(checks, errCheck("config:base_url", ValidateBaseURL(e.BaseURL), e.BaseURL))

	team, err := LoadTeam(e.TeamFile)
	if err == nil {
		err = ValidateTeam(&team)
	}
	checks = append(checks, errCheck("config:team", err,
		fmt.Sprintf("%s (%d players, amount %v)", e.TeamFile, team.PlayerCount(), team.MonetaryTier)))

	_, err = LoadSelectors(e.SelectorsFile)
	checks = append(checks, errCheck("config:selectors", err, e.SelectorsFile))

	creds, err := LoadCredentials(e.AccountsFile, e.Layout().CarryForwardPath(), false)
	checks = append(checks, errCheck("config:accounts", err, fmt.Sprintf("%s (%d credentials)", e.AccountsFile, len(creds))))

	ok, msg := ensureWritableDir(e.ArtifactsDir)
	checks = append(checks, DoctorCheck{Name: "directory:artifacts", OK: ok, Message: msg})

	pending, err := runstore.ReadCredentials(e.Layout().CarryForwardPath())
	switch {
	case os.IsNotExist(err):
		checks = append(checks, DoctorCheck{Name: "state:carry_forward", OK: true, Message: "no failed credentials pending"})
	case err != nil:
		checks = append(checks, DoctorCheck{Name: "state:carry_forward", OK: false, Message: err.Error()})
	default:
		checks = append(checks, DoctorCheck{Name: "state:carry_forward", OK: true, Message: fmt.Sprintf("%d failed credentials pending", len(pending))})
	}

	if opts.BrowserCheck != nil {
		found, detail := opts.BrowserCheck()
		checks = append(checks, DoctorCheck{Name: "dependency:browser", OK: found, Message: detail})
	}

	all := true
	for _, c := range checks {
		if !c.OK {
			all = false
			break
		}
	}
	return DoctorResult{OK: all, Checks: checks}
}

// InitWorkspace writes sample configuration files that do not exist yet and
// creates the artifacts directory.
func InitWorkspace(opts DoctorOptions) (InitWorkspaceResult, error) {
	e := opts.Env
	if err := runstore.Mkdir(e.ArtifactsDir); err != nil {
		return InitWorkspaceResult{}, err
	}

	created := []string{}
	samples := []struct {
		path string
		body string
	}{
		{e.AccountsFile, sampleAccounts},
		{e.TeamFile, sampleTeam},
		{e.SelectorsFile, sampleSelectors},
	}
	for _, s := range samples {
		if strings.TrimSpace(s.path) == "" {
			continue
		}
		if _, err := os.Stat(s.path); err == nil {
			continue
		}
		if err := runstore.WriteBytes(s.path, []byte(s.body)); err != nil {
			return InitWorkspaceResult{}, err
		}
		created = append(created, s.path)
	}

	return InitWorkspaceResult{
		ArtifactsDir: e.ArtifactsDir,
		Created:      created,
		DoctorResult: Doctor(opts),
	}, nil
}

func errCheck(name string, err error, okMessage string) DoctorCheck {
	if err != nil {
		return DoctorCheck{Name: name, OK: false, Message: err.Error()}
	}
	return DoctorCheck{Name: name, OK: true, Message: okMessage}
}

func ensureWritableDir(path string) (bool, string) {
	if strings.TrimSpace(path) == "" {
		return false, "empty path"
	}
	if err := runstore.Mkdir(path); err != nil {
		return false, err.Error()
	}
	f, err := os.CreateTemp(path, "lineup-runner-check-*.tmp")
	if err != nil {
		return false, err.Error()
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return true, abs + " writable"
}

const sampleAccounts = `username,password
`

const sampleTeam = `match_title: "India vs Australia"
# match_id: "12345"
contest_amount: 49
players:
  Wicket Keeper:
    - "Player One"
  Batsmen:
    - "Player Two"
    - "Player Three"
captain: "Player Two"
vice_captain: "Player Three"
`

const sampleSelectors = `# Overrides for the built-in selector table. Each role takes a CSS string,
# a {css, text} mapping, or a list of either; text is a case-insensitive
# pattern over the element's visible text.
#
# landing_path: /fantasy/our
# tab_labels:
#   Wicket Keeper: WK
#   Batsmen: BAT
# game_tile:
#   - css: .casino-list-item
#     text: diam11
`
