package phase

import (
	"context"
	"regexp"
	"strings"

	"lineup-runner/internal/model"
	"lineup-runner/internal/surface"
)

// Navigate opens the landing page, launches the embedded game and selects
// the configured match. The returned surface is the game frame; every later
// phase works inside it.
func (x *Executor) Navigate(ctx context.Context, page surface.Surface, cfg model.RunConfiguration) (surface.Surface, error) {
	t := x.Timings
	s := x.Selectors

	if err := page.Goto(ctx, x.resolveURL(s.LandingPath)); err != nil {
		return nil, model.Timeout("open_landing", err)
	}
	if _, err := x.visible(ctx, page, s.LandingContainer, t.Appear, "landing_container"); err != nil {
		return nil, err
	}

	tile, err := x.visible(ctx, page, s.GameTile, t.Landing, "game_tile")
	if err != nil {
		return nil, err
	}
	_ = tile.Hover(ctx)
	play, err := x.visible(ctx, page, s.GamePlay, t.Short, "game_play")
	if err != nil {
		return nil, err
	}
	if err := clickWithin(ctx, play, t.Short); err != nil {
		return nil, model.Timeout("game_play_click", err)
	}

	frameEl, err := x.visible(ctx, page, s.GameFrame, t.Frame, "embedded_frame")
	if err != nil {
		return nil, err
	}
	frame, err := frameEl.Frame(ctx)
	if err != nil || frame == nil {
		return nil, model.NotFound("embedded_frame_not_found")
	}

	if err := x.sleep(ctx, t.Settle); err != nil {
		return nil, err
	}
	if _, err := x.visible(ctx, frame, s.FrameReady, t.Frame, "frame_ready"); err != nil {
		return nil, err
	}
	if err := x.sleep(ctx, t.Hydrate); err != nil {
		return nil, err
	}
	if _, err := x.visible(ctx, frame, s.MatchList, t.Appear, "match_list"); err != nil {
		return nil, err
	}

	link, err := x.visible(ctx, frame, x.matchCandidates(cfg), t.Landing, "match_link")
	if err != nil {
		return nil, err
	}
	if err := clickWithin(ctx, link, t.Short); err != nil {
		return nil, model.Timeout("match_link_click", err)
	}

	if _, err := x.visible(ctx, frame, s.PostEntry, t.Appear, "post_entry"); err != nil {
		x.logf("post-entry sentinel not seen, continuing")
	}
	return frame, nil
}

// matchCandidates prefers the exact identifier and falls back to a
// case-insensitive title pattern.
func (x *Executor) matchCandidates(cfg model.RunConfiguration) surface.Candidates {
	if id := strings.TrimSpace(cfg.TargetIdentifier); id != "" {
		return x.Selectors.matchByID(id)
	}
	pattern := cfg.TargetPattern
	if pattern == nil {
		pattern = regexp.MustCompile("(?i)" + regexp.QuoteMeta(cfg.TargetLabel))
	}
	out := make(surface.Candidates, 0, len(x.Selectors.MatchLink))
	for _, q := range x.Selectors.MatchLink {
		out = append(out, surface.Query{CSS: q.CSS, Text: pattern})
	}
	return out
}
