package settings

import (
	"testing"

	"lineup-runner/internal/model"
)

func TestParseTeamKeepsRosterOrder(t *testing.T) {
	cfg, err := ParseTeam([]byte(`
match_title: "India vs Australia"
match_id: 777
contest_amount: "₹ 49"
players:
  Wicket Keeper: ["Dhruv Jurel"]
  Batsmen:
    - Rahul Sharma
    - "  Virat K. "
  All Rounder: Hardik P.
captain: Rahul Sharma
vice_captain: Virat K.
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.TargetIdentifier != "777" || cfg.MonetaryTier != 49 {
		t.Fatalf("unexpected target fields: %+v", cfg)
	}
	names := []string{}
	for _, c := range cfg.Roster {
		names = append(names, c.Name)
	}
	if len(names) != 3 || names[0] != "Wicket Keeper" || names[1] != "Batsmen" || names[2] != "All Rounder" {
		t.Fatalf("category order not preserved: %v", names)
	}
	if cfg.Roster[1].Players[1] != "Virat K." || cfg.Roster[2].Players[0] != "Hardik P." {
		t.Fatalf("unexpected players: %+v", cfg.Roster)
	}
	if err := ValidateTeam(&cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !cfg.TargetPattern.MatchString("INDIA VS AUSTRALIA, 3rd T20I") {
		t.Fatalf("title pattern should match case-insensitively")
	}
}

func TestParseTeamAcceptsCamelCaseJSON(t *testing.T) {
	cfg, err := ParseTeam([]byte(`{"matchTitle":"C++ Cup","contestAmount":99,"players":{"Batsmen":["A"]},"captain":"A","viceCaptain":"B"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := ValidateTeam(&cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.ViceCaptainName != "B" || cfg.MonetaryTier != 99 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if !cfg.TargetPattern.MatchString("c++ cup final") {
		t.Fatalf("invalid regex titles fall back to a literal match")
	}
}

func TestValidateTeamReportsMissingFields(t *testing.T) {
	cases := map[string]string{
		"match_title_missing":    `contest_amount: 49`,
		"contest_amount_missing": "match_title: x\ncontest_amount: free\nplayers: {B: [a]}\ncaptain: a\nvice_captain: b",
		"players_missing":        "match_title: x\ncontest_amount: 49\ncaptain: a\nvice_captain: b",
		"captain_missing":        "match_title: x\ncontest_amount: 49\nplayers: {B: [a]}\nvice_captain: b",
		"vice_captain_missing":   "match_title: x\ncontest_amount: 49\nplayers: {B: [a]}\ncaptain: a",
		"match_id_malformed":     "match_title: x\nmatch_id: 'x\"]'\ncontest_amount: 49\nplayers: {B: [a]}\ncaptain: a\nvice_captain: b",
	}
	for label, doc := range cases {
		cfg, err := ParseTeam([]byte(doc))
		if err != nil {
			t.Fatalf("%s: parse: %v", label, err)
		}
		err = ValidateTeam(&cfg)
		if !model.IsKind(err, model.KindConfigurationInvalid) || model.LabelOf(err) != label {
			t.Fatalf("expected %s, got %v", label, err)
		}
	}
}

func TestValidateTeamRequiresTitleAndExactAmount(t *testing.T) {
	cases := map[string]string{
		"id without title":   "match_id: 777\ncontest_amount: 49\nplayers: {B: [a]}\ncaptain: a\nvice_captain: b",
		"ambiguous amount":   "match_title: x\ncontest_amount: abc 49 or 99\nplayers: {B: [a]}\ncaptain: a\nvice_captain: b",
		"amount with suffix": "match_title: x\ncontest_amount: 49 rupees\nplayers: {B: [a]}\ncaptain: a\nvice_captain: b",
		"infinite amount":    "match_title: x\ncontest_amount: .inf\nplayers: {B: [a]}\ncaptain: a\nvice_captain: b",
	}
	want := map[string]string{
		"id without title":   "match_title_missing",
		"ambiguous amount":   "contest_amount_missing",
		"amount with suffix": "contest_amount_missing",
		"infinite amount":    "contest_amount_missing",
	}
	for name, doc := range cases {
		cfg, err := ParseTeam([]byte(doc))
		if err != nil {
			t.Fatalf("%s: parse: %v", name, err)
		}
		if err := ValidateTeam(&cfg); model.LabelOf(err) != want[name] {
			t.Fatalf("%s: expected %s, got %v", name, want[name], err)
		}
	}

	cfg, err := ParseTeam([]byte("match_title: x\nmatch_id: ab_12-c\ncontest_amount: \"$ 99.5\"\nplayers: {B: [a]}\ncaptain: a\nvice_captain: b"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := ValidateTeam(&cfg); err != nil || cfg.MonetaryTier != 99.5 {
		t.Fatalf("expected a valid config with amount 99.5, got %v %+v", err, cfg)
	}
}

func TestParseTeamRejectsNonMapping(t *testing.T) {
	if _, err := ParseTeam([]byte(`- a`)); !model.IsKind(err, model.KindConfigurationInvalid) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := ParseTeam([]byte("players: [a, b]")); model.LabelOf(err) != "players_malformed" {
		t.Fatalf("expected players_malformed, got %v", err)
	}
}
