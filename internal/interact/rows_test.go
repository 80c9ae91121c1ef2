package interact

import (
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"lineup-runner/internal/surface"
	"lineup-runner/internal/surface/surfacetest"
)

var playerRows = RowSpec{Row: surface.CSS(".player-row"), NameCell: surface.CSS(".player-name")}

func TestFindRowByExactFirstLineMatchesWholeFirstLine(t *testing.T) {
	ctx := context.Background()
	p := surfacetest.New(`<ul class="list">
		<li class="player-row" id="r1"><div class="player-name"><div>Rahul Sharma</div><div>(C)</div></div></li>
		<li class="player-row" id="r2"><div class="player-name">Virat K.</div></li>
	</ul>`)

	row, ok := FindRowByExactFirstLine(ctx, p, playerRows, "rahul sharma")
	if !ok {
		t.Fatalf("expected rahul sharma to match")
	}
	id, _, _ := row.Attribute(ctx, "id")
	if id != "r1" {
		t.Fatalf("expected r1, got %q", id)
	}
	if _, ok := FindRowByExactFirstLine(ctx, p, playerRows, "rahul"); ok {
		t.Fatalf("partial name must not match")
	}
}

func TestFindRowByExactFirstLineScrollsLazyRows(t *testing.T) {
	ctx := context.Background()
	p := surfacetest.New(`<ul>
		<li class="player-row"><div class="player-name">Shown Player</div></li>
		<li class="player-row" data-offscreen id="lazy"><div class="player-name">Hidden Player</div></li>
	</ul>`)

	row, ok := FindRowByExactFirstLine(ctx, p, playerRows, "HIDDEN PLAYER")
	if !ok {
		t.Fatalf("expected second pass to find the lazy row")
	}
	if !row.Visible(ctx) {
		t.Fatalf("expected row to be scrolled into view")
	}
	if p.CountEvents("scroll:") == 0 {
		t.Fatalf("expected scroll events")
	}
}

func TestResolveFirstMatchSkipsDisabledCandidates(t *testing.T) {
	ctx := context.Background()
	p := surfacetest.New(`
		<a class="save btn disabled">Save Team</a>
		<button class="save-alt" disabled>Save Team</button>
		<button class="save-final">Save Team</button>
		<button class="hidden-save" hidden>Save Team</button>`)

	el, ok := ResolveFirstMatch(ctx, p, surface.Candidates{
		surface.CSS(".hidden-save"),
		surface.CSS(".save"),
		surface.CSS(".save-alt"),
		surface.CSS(".save-final"),
	})
	if !ok {
		t.Fatalf("expected an enabled candidate")
	}
	class, _, _ := el.Attribute(ctx, "class")
	if class != "save-final" {
		t.Fatalf("expected save-final, got %q", class)
	}

	if _, ok := ResolveFirstMatch(ctx, p, surface.Candidates{surface.CSS(".save"), surface.CSS(".missing")}); ok {
		t.Fatalf("expected none found")
	}
}

func TestRobustClickFallsBackWhenIntercepted(t *testing.T) {
	ctx := context.Background()
	activated := false
	p := surfacetest.New(`<div class="overlay-host" data-intercept><button class="join">Join</button></div>`)
	p.OnClick(".join", func(*goquery.Document, *goquery.Selection) { activated = true })

	el, _ := First(ctx, p, surface.CSS(".join"))
	if !RobustClick(ctx, el) {
		t.Fatalf("expected fallback activation to succeed")
	}
	if !activated {
		t.Fatalf("expected click handler to run")
	}
	if p.CountEvents("activate:") != 1 {
		t.Fatalf("expected programmatic activation, events=%v", p.Events())
	}
	if RobustClick(ctx, nil) {
		t.Fatalf("nil target must report failure")
	}
}
