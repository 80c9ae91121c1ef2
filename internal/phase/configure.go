package phase

import (
	"context"
	"math"
	"regexp"
	"strings"

	"lineup-runner/internal/interact"
	"lineup-runner/internal/model"
	"lineup-runner/internal/surface"
	"lineup-runner/internal/wait"
)

const (
	primaryMark   = "C"
	secondaryMark = "VC"
)

// Configure enters the monetary tier and, unless an existing team is
// offered, builds the roster, assigns captain and vice-captain and saves.
func (x *Executor) Configure(ctx context.Context, frame surface.Surface, cfg model.RunConfiguration) (Landing, error) {
	t := x.Timings
	s := x.Selectors

	if interact.EqualFold(cfg.CaptainName, cfg.ViceCaptainName) {
		return "", model.Precondition("captain_and_vice_captain_same")
	}
	if math.IsNaN(cfg.MonetaryTier) || cfg.MonetaryTier <= 0 {
		return "", model.Precondition("monetary_tier_missing")
	}

	landing, err := x.enterTier(ctx, frame, cfg.MonetaryTier)
	if err != nil {
		return "", err
	}
	if landing == LandingExisting {
		x.logf("existing team offered, skipping construction")
		return LandingExisting, nil
	}
	if landing == LandingUnknown {
		x.logf("landing panel not recognised, attempting construction")
	}

	for _, cat := range cfg.Roster {
		if len(cat.Players) == 0 {
			continue
		}
		list, err := x.activateTab(ctx, frame, s.TabLabel(cat.Name))
		if err != nil {
			return "", err
		}
		rows := interact.RowSpec{Row: s.PlayerRow.First(), NameCell: s.PlayerName.First()}
		for _, name := range cat.Players {
			row, ok := interact.FindRowByExactFirstLine(ctx, list, rows, name)
			if !ok {
				x.logf("warn: player not found in %s: %s", cat.Name, name)
				continue
			}
			if err := x.include(ctx, row, name); err != nil {
				return "", err
			}
			if err := x.sleep(ctx, t.Tick); err != nil {
				return "", err
			}
		}
	}

	cont, ok := interact.ResolveFirstVisible(ctx, frame, s.Continue)
	if !ok {
		if err := x.sleep(ctx, t.Grace); err != nil {
			return "", err
		}
		cont, ok = interact.ResolveFirstVisible(ctx, frame, s.Continue)
	}
	if !ok {
		x.diagnose(ctx, frame, "continue_button_not_found", surface.Candidates{surface.CSS("button")})
		return "", model.NotFound("continue_button_not_found")
	}
	interact.RobustClick(ctx, cont)

	if err := x.assignDesignations(ctx, frame, cfg); err != nil {
		return "", err
	}
	if err := x.saveTeam(ctx, frame); err != nil {
		return "", err
	}
	if err := x.sleep(ctx, t.SaveSettle); err != nil {
		return "", err
	}
	return LandingNew, nil
}

// enterTier clicks the entry control whose amount equals tier and reports
// which panel the UI landed on.
func (x *Executor) enterTier(ctx context.Context, frame surface.Surface, tier float64) (Landing, error) {
	t := x.Timings
	s := x.Selectors

	if _, err := x.visible(ctx, frame, s.EntryButton, t.Appear, "entry_buttons"); err != nil {
		return "", err
	}
	entries := interact.AllVisible(ctx, frame, s.EntryButton.First())
	labels := make([]string, len(entries))
	for i, el := range entries {
		labels[i], _ = el.Text(ctx)
	}
	idx := interact.IndexOfAmount(labels, tier)
	if idx < 0 {
		x.logf("entry amounts on screen: [%s]", strings.Join(labels, " | "))
		return "", model.NotFound("entry_amount_not_found:" + formatAmount(tier))
	}
	if !interact.RobustClick(ctx, entries[idx]) {
		return "", model.Timeout("entry_amount_click", nil)
	}

	landing, err := wait.Poll(ctx, x.opts(t.Landing, "configure_landing"), func(ctx context.Context) (Landing, bool, error) {
		if x.isVisible(ctx, frame, s.ExistingTeam) {
			return LandingExisting, true, nil
		}
		if pane, ok := interact.ResolveFirstVisible(ctx, frame, s.ActivePane); ok && x.isVisible(ctx, pane, s.PlayersList) {
			return LandingNew, true, nil
		}
		return "", false, nil
	})
	if err != nil {
		return LandingUnknown, nil
	}
	return landing, nil
}

// activateTab opens the category tab and returns the player list inside the
// pane it activated. Lookups that follow are scoped to that pane.
func (x *Executor) activateTab(ctx context.Context, frame surface.Surface, label string) (surface.Element, error) {
	t := x.Timings
	s := x.Selectors
	word := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(label) + `\b`)

	tabs := make(surface.Candidates, 0, len(s.TeamTab))
	for _, q := range s.TeamTab {
		tabs = append(tabs, surface.Query{CSS: q.CSS, Text: word})
	}
	if tab, ok := interact.ResolveFirstVisible(ctx, frame, tabs); ok {
		_ = clickWithin(ctx, tab, t.Short)
	}
	if _, err := x.visible(ctx, frame, tabs, t.Landing, "team_tab:"+label); err != nil {
		return nil, err
	}

	return wait.Poll(ctx, x.opts(t.Landing, "players_list:"+label), func(ctx context.Context) (surface.Element, bool, error) {
		pane, ok := interact.ResolveFirstVisible(ctx, frame, s.ActivePane)
		if !ok {
			return nil, false, nil
		}
		list, ok := interact.ResolveFirstVisible(ctx, pane, s.PlayersList)
		return list, ok, nil
	})
}

// include is idempotent: a row already showing the remove control is left
// alone.
func (x *Executor) include(ctx context.Context, row surface.Element, name string) error {
	t := x.Timings
	s := x.Selectors
	if x.isVisible(ctx, row, s.PlayerRemove) {
		return nil
	}
	add, err := x.visible(ctx, row, s.PlayerAdd, t.Short, "player_add:"+name)
	if err != nil {
		return err
	}
	_ = add.Click(ctx)
	if _, err := x.visible(ctx, row, s.PlayerRemove, t.Short, "player_included:"+name); err != nil {
		x.logf("warn: %s did not switch to included", name)
	}
	return nil
}

func (x *Executor) assignDesignations(ctx context.Context, frame surface.Surface, cfg model.RunConfiguration) error {
	t := x.Timings
	s := x.Selectors

	if _, err := x.visible(ctx, frame, s.CaptainScreen, t.Appear, "captain_screen"); err != nil {
		return err
	}
	if err := x.designate(ctx, frame, cfg.CaptainName, primaryMark, "captain_not_found"); err != nil {
		return err
	}
	return x.designate(ctx, frame, cfg.ViceCaptainName, secondaryMark, "vice_captain_not_found")
}

func (x *Executor) designate(ctx context.Context, frame surface.Surface, name, mark, missing string) error {
	t := x.Timings
	s := x.Selectors

	list, err := x.visible(ctx, frame, s.DesignationList, t.Landing, "designation_list")
	if err != nil {
		return err
	}
	rows := interact.RowSpec{Row: s.DesignationRow.First(), NameCell: s.DesignationName.First()}
	row, ok := interact.FindRowByExactFirstLine(ctx, list, rows, name)
	if !ok {
		return model.NotFound(missing + ":" + name)
	}

	exact := regexp.MustCompile(`(?i)^\s*` + regexp.QuoteMeta(mark) + `\s*$`)
	buttons := make(surface.Candidates, 0, len(s.DesignationBtn))
	for _, q := range s.DesignationBtn {
		buttons = append(buttons, surface.Query{CSS: q.CSS, Text: exact})
	}
	btn, err := x.visible(ctx, row, buttons, t.Short, "designation_button:"+mark)
	if err != nil {
		return err
	}
	_ = btn.Click(ctx)
	return nil
}

// DesignationsSettled reports whether exactly two markers are active and
// they carry the primary and secondary labels, in any order.
func DesignationsSettled(labels []string) bool {
	if len(labels) != 2 {
		return false
	}
	seen := map[string]bool{}
	for _, l := range labels {
		seen[strings.ToUpper(interact.NormalizeText(l))] = true
	}
	return seen[primaryMark] && seen[secondaryMark]
}

func (x *Executor) saveTeam(ctx context.Context, frame surface.Surface) error {
	t := x.Timings
	s := x.Selectors

	err := wait.Until(ctx, x.opts(t.Designation, "designations_not_settled"), func(ctx context.Context) (bool, error) {
		els, err := frame.Find(ctx, s.DesignationOn.First())
		if err != nil {
			return false, err
		}
		labels := make([]string, 0, len(els))
		for _, el := range els {
			text, err := el.Text(ctx)
			if err != nil {
				return false, err
			}
			labels = append(labels, text)
		}
		return DesignationsSettled(labels), nil
	})
	if err != nil {
		return err
	}
	if err := x.sleep(ctx, t.Tick); err != nil {
		return err
	}

	save, err := wait.Poll(ctx, wait.Options{Timeout: t.SaveEnable, Interval: t.SavePoll, Label: "save_team"},
		func(ctx context.Context) (surface.Element, bool, error) {
			el, ok := x.findSave(ctx, frame)
			return el, ok, nil
		})
	if err != nil {
		x.diagnose(ctx, frame, "save_team", surface.Candidates{surface.CSS(".team-preview a"), surface.CSS(".team-preview button")})
		return model.NotFound("save_team_not_found_or_disabled")
	}
	if !interact.RobustClick(ctx, save) {
		return model.NotFound("save_team_click_failed")
	}
	return nil
}

// findSave looks inside the first visible preview block before falling
// back to page-wide candidates.
func (x *Executor) findSave(ctx context.Context, frame surface.Surface) (surface.Element, bool) {
	s := x.Selectors
	if block, ok := interact.ResolveFirstVisible(ctx, frame, s.TeamPreview); ok {
		if el, ok := interact.ResolveFirstMatch(ctx, block, s.SaveInPreview); ok {
			return el, true
		}
	}
	return interact.ResolveFirstMatch(ctx, frame, s.SaveTeam)
}
