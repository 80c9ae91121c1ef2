package phase

import (
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"lineup-runner/internal/model"
	"lineup-runner/internal/surface/surfacetest"
)

func TestConfirmJoinsAfterBuild(t *testing.T) {
	s := surfacetest.NewSite(surfacetest.SiteOptions{})
	s.OpenContests()
	logs := &logSink{}
	x := newTestExecutor(logs)
	cfg := testConfig()

	landing, err := x.Configure(context.Background(), s.Frame, cfg)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := x.Confirm(context.Background(), s.Frame, cfg, landing); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !s.Joined() {
		t.Fatalf("expected contest join to be confirmed")
	}
	if logs.contains("warn: confirmation shows amount") {
		t.Fatalf("matching amount must not warn")
	}
}

func TestConfirmWarnsOnAmountMismatch(t *testing.T) {
	s := surfacetest.NewSite(surfacetest.SiteOptions{ExistingTeam: true, ModalAmount: "₹99"})
	s.OpenContests()
	logs := &logSink{}
	x := newTestExecutor(logs)
	cfg := testConfig()

	landing, err := x.Configure(context.Background(), s.Frame, cfg)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := x.Confirm(context.Background(), s.Frame, cfg, landing); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !s.Joined() {
		t.Fatalf("mismatch must not block the join")
	}
	if !logs.contains("warn: confirmation shows amount 99, expected 49") {
		t.Fatalf("expected mismatch warning")
	}
}

func TestConfirmSkipsEntryForExistingTeam(t *testing.T) {
	s := surfacetest.NewSite(surfacetest.SiteOptions{ExistingTeam: true})
	s.OpenContests()
	x := newTestExecutor(&logSink{})
	cfg := testConfig()

	landing, err := x.Configure(context.Background(), s.Frame, cfg)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	if err := x.Confirm(context.Background(), s.Frame, cfg, landing); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if got := s.Frame.CountEvents("click:button.entry-button"); got != 1 {
		t.Fatalf("expected a single entry click, got %d", got)
	}
}

func TestConfirmScrollsToLazyTeamSheet(t *testing.T) {
	s := surfacetest.NewSite(surfacetest.SiteOptions{ExistingTeam: true})
	s.OpenContests()
	x := newTestExecutor(&logSink{})
	cfg := testConfig()

	landing, err := x.Configure(context.Background(), s.Frame, cfg)
	if err != nil {
		t.Fatalf("configure: %v", err)
	}
	s.Frame.Mutate(func(doc *goquery.Document) {
		doc.Find(".selected-team-detail-wrapper").SetAttr("data-offscreen", "")
		doc.Find("input[name='myteam']").Remove()
	})
	scrolls := 0
	s.Frame.OnEvaluate("scrollBy", func(doc *goquery.Document, _ any) any {
		scrolls++
		if scrolls == 2 {
			wrapper := doc.Find(".selected-team-detail-wrapper")
			wrapper.RemoveAttr("data-offscreen")
			wrapper.PrependHtml(`<input type="radio" name="myteam" value="team-1">`)
		}
		return nil
	})

	if err := x.Confirm(context.Background(), s.Frame, cfg, landing); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if scrolls < 2 {
		t.Fatalf("expected the sheet lookup to scroll, got %d", scrolls)
	}
	if !s.Joined() {
		t.Fatalf("expected join after the sheet rendered")
	}
}

func TestConfirmReportsMissingContestEntry(t *testing.T) {
	s := surfacetest.NewSite(surfacetest.SiteOptions{})
	s.OpenContests()
	cfg := testConfig()
	cfg.MonetaryTier = 75

	err := newTestExecutor(&logSink{}).Confirm(context.Background(), s.Frame, cfg, LandingNew)
	if !model.IsKind(err, model.KindElementNotFound) || model.LabelOf(err) != "contest_button_not_found_for_amount_75" {
		t.Fatalf("expected contest_button_not_found_for_amount_75, got %v", err)
	}
}
