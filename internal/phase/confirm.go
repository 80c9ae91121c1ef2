package phase

import (
	"context"
	"math"
	"regexp"

	"lineup-runner/internal/interact"
	"lineup-runner/internal/model"
	"lineup-runner/internal/surface"
	"lineup-runner/internal/wait"
)

const (
	scrollScript = `(dy) => window.scrollBy(0, dy)`
	scrollStepPx = 400
	scrollMaxPx  = 4000
)

var joiningAmount = regexp.MustCompile(`(?i)joining amount[:\s]*([₹\s\d,.]+)`)

// Confirm joins the contest with the first saved team. A mismatch between
// the configured amount and the one shown on the confirmation overlay is
// logged but not fatal; the remote UI decides the final charge.
func (x *Executor) Confirm(ctx context.Context, frame surface.Surface, cfg model.RunConfiguration, landing Landing) error {
	t := x.Timings
	s := x.Selectors

	if err := x.sleep(ctx, t.Hydrate); err != nil {
		return err
	}
	if landing == LandingExisting {
		x.logf("existing team selected, skipping contest entry lookup")
	} else {
		if err := x.waitForContests(ctx, frame); err != nil {
			return err
		}
		entry, ok := x.contestEntry(ctx, frame, cfg.MonetaryTier)
		if !ok {
			x.diagnose(ctx, frame, "contest_entry", s.EntryButton)
			return model.NotFound("contest_button_not_found_for_amount_" + formatAmount(cfg.MonetaryTier))
		}
		interact.RobustClick(ctx, entry)
	}

	if err := x.sleep(ctx, t.Settle); err != nil {
		return err
	}
	if err := x.waitForTeamSheet(ctx, frame); err != nil {
		return err
	}
	if err := x.sleep(ctx, t.Settle); err != nil {
		return err
	}

	radio, ok := interact.First(ctx, frame, s.TeamRadio.First())
	if !ok {
		return model.NotFound("team_radio_not_found")
	}
	if !interact.RobustClick(ctx, radio) {
		return model.NotFound("team_radio_click_failed")
	}

	join, ok := interact.ResolveFirstMatch(ctx, frame, s.JoinButton)
	if !ok {
		x.diagnose(ctx, frame, "join_button", s.JoinButton)
		return model.NotFound("join_button_not_found_or_disabled")
	}
	clicked := interact.RobustClick(ctx, join)
	if err := x.sleep(ctx, t.ActionSettle); err != nil {
		return err
	}
	if !clicked {
		return model.NotFound("join_button_click_failed")
	}

	modal, err := wait.Poll(ctx, x.opts(t.Appear, "confirmation_modal"), func(ctx context.Context) (surface.Element, bool, error) {
		m, ok := interact.LastVisible(ctx, frame, s.ConfirmModal.First())
		if !ok {
			return nil, false, nil
		}
		return m, x.isVisible(ctx, m, s.ModalTitle) && x.isVisible(ctx, m, s.ModalConfirm), nil
	})
	if err != nil {
		return err
	}

	if seen := x.readAmount(ctx, modal); !math.IsNaN(seen) && seen != cfg.MonetaryTier {
		x.logf("warn: confirmation shows amount %s, expected %s", formatAmount(seen), formatAmount(cfg.MonetaryTier))
	}

	confirm, err := x.visible(ctx, modal, s.ModalConfirm, t.Short, "confirm_join")
	if err != nil {
		return err
	}
	if !interact.RobustClick(ctx, confirm) {
		return model.NotFound("confirm_join_click_failed")
	}
	return x.sleep(ctx, t.ActionSettle)
}

// waitForContests blocks until the contest listing has rendered. Entry
// controls alone count only once the designation screen is gone.
func (x *Executor) waitForContests(ctx context.Context, frame surface.Surface) error {
	s := x.Selectors
	return wait.Until(ctx, wait.Options{Timeout: x.Timings.Appear, Interval: x.Timings.SavePoll, Label: "contests_not_rendered"},
		func(ctx context.Context) (bool, error) {
			if x.isVisible(ctx, frame, s.ContestList) || x.isVisible(ctx, frame, s.ContestCategory) {
				return true, nil
			}
			if x.isVisible(ctx, frame, s.CaptainScreen) {
				return false, nil
			}
			_, ok := interact.First(ctx, frame, s.EntryButton.First())
			return ok, nil
		})
}

// contestEntry checks the leading entry control of each visible listing,
// then every entry control on the page.
func (x *Executor) contestEntry(ctx context.Context, frame surface.Surface, amount float64) (surface.Element, bool) {
	s := x.Selectors
	lists, _ := frame.Find(ctx, s.ContestList.First())
	for _, list := range lists {
		btn, ok := interact.First(ctx, list, s.EntryButton.First())
		if !ok || !btn.Visible(ctx) {
			continue
		}
		if text, err := btn.Text(ctx); err == nil && interact.NormalizeAmount(text) == amount {
			_ = btn.ScrollIntoView(ctx)
			return btn, true
		}
	}
	all, _ := frame.Find(ctx, s.EntryButton.First())
	for _, btn := range all {
		if text, err := btn.Text(ctx); err == nil && interact.NormalizeAmount(text) == amount {
			_ = btn.ScrollIntoView(ctx)
			return btn, true
		}
	}
	return nil, false
}

// waitForTeamSheet scrolls in steps between checks because the sheet can
// render lazily below the fold.
func (x *Executor) waitForTeamSheet(ctx context.Context, frame surface.Surface) error {
	s := x.Selectors
	present := func(ctx context.Context) bool {
		if x.isVisible(ctx, frame, s.TeamSheet) {
			return true
		}
		_, ok := interact.First(ctx, frame, s.TeamRadio.First())
		return ok
	}
	return wait.Until(ctx, x.opts(x.Timings.Appear, "team_selection_sheet_timeout"), func(ctx context.Context) (bool, error) {
		if present(ctx) {
			return true, nil
		}
		for scrolled := 0; scrolled <= scrollMaxPx; scrolled += scrollStepPx {
			if _, err := frame.Evaluate(ctx, scrollScript, scrollStepPx); err != nil {
				break
			}
			if err := x.sleep(ctx, x.Timings.ScrollStep); err != nil {
				return false, wait.Fatal(err)
			}
			if present(ctx) {
				return true, nil
			}
		}
		return false, nil
	})
}

func (x *Executor) readAmount(ctx context.Context, modal surface.Element) float64 {
	s := x.Selectors
	if cell, ok := interact.First(ctx, modal, s.ModalAmount.First()); ok {
		if text, err := cell.Text(ctx); err == nil {
			if v := interact.NormalizeAmount(text); !math.IsNaN(v) {
				return v
			}
		}
	}
	if body, ok := interact.First(ctx, modal, s.ModalBody.First()); ok {
		if text, err := body.Text(ctx); err == nil {
			if m := joiningAmount.FindStringSubmatch(text); m != nil {
				return interact.NormalizeAmount(m[1])
			}
		}
	}
	return math.NaN()
}
