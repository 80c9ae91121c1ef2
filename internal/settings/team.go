package settings

import (
	"errors"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"lineup-runner/internal/model"
)

// LoadTeam reads the run configuration file. Keys may be snake_case or
// camelCase; the players mapping keeps document order.
func LoadTeam(path string) (model.RunConfiguration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RunConfiguration{}, model.Invalid("team_file_unreadable", err)
	}
	return ParseTeam(data)
}

func ParseTeam(data []byte) (model.RunConfiguration, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return model.RunConfiguration{}, model.Invalid("team_file_malformed", err)
	}
	if len(doc.Content) == 0 {
		return model.RunConfiguration{}, model.Invalid("team_file_empty", nil)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return model.RunConfiguration{}, model.Invalid("team_file_malformed", errors.New("top level must be a mapping"))
	}

	cfg := model.RunConfiguration{MonetaryTier: math.NaN()}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch canonicalKey(key.Value) {
		case "matchtitle":
			cfg.TargetLabel = scalar(val)
		case "matchid":
			cfg.TargetIdentifier = scalar(val)
		case "contestamount":
			cfg.MonetaryTier = parseAmount(scalar(val))
		case "captain":
			cfg.CaptainName = scalar(val)
		case "vicecaptain":
			cfg.ViceCaptainName = scalar(val)
		case "players":
			roster, err := decodeRoster(val)
			if err != nil {
				return model.RunConfiguration{}, model.Invalid("players_malformed", err)
			}
			cfg.Roster = roster
		}
	}
	return cfg, nil
}

var matchIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// parseAmount reads a contest amount such as "49" or "₹ 49". Anything else
// yields NaN.
func parseAmount(s string) float64 {
	if r, size := utf8.DecodeRuneInString(s); unicode.Is(unicode.Sc, r) {
		s = strings.TrimSpace(s[size:])
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN()
	}
	return v
}

// ValidateTeam checks every required field and compiles the title pattern.
// It runs once, before scheduling.
func ValidateTeam(cfg *model.RunConfiguration) error {
	if cfg.TargetLabel == "" {
		return model.Invalid("match_title_missing", nil)
	}
	if cfg.TargetIdentifier != "" && !matchIDPattern.MatchString(cfg.TargetIdentifier) {
		return model.Invalid("match_id_malformed", fmt.Errorf("%q may only contain letters, digits, '-' and '_'", cfg.TargetIdentifier))
	}
	if math.IsNaN(cfg.MonetaryTier) || cfg.MonetaryTier <= 0 {
		return model.Invalid("contest_amount_missing", nil)
	}
	if cfg.PlayerCount() == 0 {
		return model.Invalid("players_missing", nil)
	}
	if cfg.CaptainName == "" {
		return model.Invalid("captain_missing", nil)
	}
	if cfg.ViceCaptainName == "" {
		return model.Invalid("vice_captain_missing", nil)
	}
	if cfg.TargetLabel != "" {
		pattern, err := regexp.Compile("(?i)" + cfg.TargetLabel)
		if err != nil {
			pattern = regexp.MustCompile("(?i)" + regexp.QuoteMeta(cfg.TargetLabel))
		}
		cfg.TargetPattern = pattern
	}
	return nil
}

func decodeRoster(node *yaml.Node) ([]model.RosterCategory, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: players must map category to names", node.Line)
	}
	out := make([]model.RosterCategory, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := strings.TrimSpace(node.Content[i].Value)
		list := node.Content[i+1]
		var players []string
		switch list.Kind {
		case yaml.SequenceNode:
			if err := list.Decode(&players); err != nil {
				return nil, fmt.Errorf("category %s: %w", name, err)
			}
		case yaml.ScalarNode:
			if v := scalar(list); v != "" {
				players = []string{v}
			}
		default:
			return nil, fmt.Errorf("category %s: expected a list of names", name)
		}
		cleaned := make([]string, 0, len(players))
		for _, p := range players {
			if p = strings.TrimSpace(p); p != "" {
				cleaned = append(cleaned, p)
			}
		}
		out = append(out, model.RosterCategory{Name: name, Players: cleaned})
	}
	return out, nil
}

func canonicalKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(k), "_", ""))
}

func scalar(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return strings.TrimSpace(n.Value)
}
