package model

import (
	"regexp"
	"time"
)

type Credential struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"-"`
}

// RosterCategory keeps one tab's players in the order they were configured.
type RosterCategory struct {
	Name    string   `json:"name"`
	Players []string `json:"players"`
}

type RunConfiguration struct {
	TargetLabel      string           `json:"target_label"`
	TargetIdentifier string           `json:"target_identifier,omitempty"`
	TargetPattern    *regexp.Regexp   `json:"-"`
	MonetaryTier     float64          `json:"monetary_tier"`
	Roster           []RosterCategory `json:"roster"`
	CaptainName      string           `json:"captain_name"`
	ViceCaptainName  string           `json:"vice_captain_name"`
}

func (c RunConfiguration) PlayerCount() int {
	n := 0
	for _, cat := range c.Roster {
		n += len(cat.Players)
	}
	return n
}

type SessionOutcome struct {
	Timestamp   time.Time `json:"timestamp"`
	TargetLabel string    `json:"target_label"`
	Identifier  string    `json:"identifier"`
	Status      string    `json:"status"`
	Step        string    `json:"step"`
	DurationMs  int64     `json:"duration_ms"`
	Error       string    `json:"error,omitempty"`
}

func (o SessionOutcome) Failed() bool {
	return o.Status == StatusFail
}
