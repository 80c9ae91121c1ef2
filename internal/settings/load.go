package settings

import (
	"fmt"
	"net/url"

	"lineup-runner/internal/model"
	"lineup-runner/internal/phase"
)

// Bundle is everything a run needs, loaded and validated.
type Bundle struct {
	Env         Env
	Team        model.RunConfiguration
	Selectors   *phase.Selectors
	Credentials []model.Credential
}

func Load(e Env, retryFailed bool) (Bundle, error) {
	if err := ValidateBaseURL(e.BaseURL); err != nil {
		return Bundle{}, err
	}
	team, err := LoadTeam(e.TeamFile)
	if err != nil {
		return Bundle{}, err
	}
	if err := ValidateTeam(&team); err != nil {
		return Bundle{}, err
	}
	sel, err := LoadSelectors(e.SelectorsFile)
	if err != nil {
		return Bundle{}, err
	}
	creds, err := LoadCredentials(e.AccountsFile, e.Layout().CarryForwardPath(), retryFailed)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{Env: e, Team: team, Selectors: sel, Credentials: creds}, nil
}

func ValidateBaseURL(raw string) error {
	if raw == "" {
		return model.Invalid("base_url_missing", fmt.Errorf("BASE_URL is not set"))
	}
	u, err := url.Parse(raw)
	if err != nil {
		return model.Invalid("base_url_malformed", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return model.Invalid("base_url_malformed", fmt.Errorf("%q is not an http(s) URL", raw))
	}
	return nil
}
