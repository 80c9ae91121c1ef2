package surfacetest

import (
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
)

// The markup below models the contest site the built-in selector table
// targets: a login modal and game lobby on the top page, and the match,
// team builder and contest screens inside the game frame.

const topMarkup = `<html><body>
<a class="open-login" data-target="#login">Login</a>
<div id="login" style="display: none">
  <form class="login-form">
    <input placeholder="Enter Username">
    <input placeholder="Enter Password" type="password">
    <input type="checkbox" id="customCheck">
    <button type="submit" disabled>Login</button>
    <div class="error-message" hidden>Invalid credentials</div>
  </form>
</div>
<div class="our-casino">
  <div class="casino-list-item">DIAM11 <span class="play-icon">play</span></div>
  <div class="casino-list-item">Teen Patti <span class="play-icon">play</span></div>
</div>
<iframe data-frame="game" src="https://realteam11.com/lobby" hidden></iframe>
</body></html>`

const frameMarkup = `<html><body>
<div class="league-names inner-matches-list">
  <a href="/league/contests/777/contests">India vs Australia T20I</a>
  <a href="/league/contests/778/contests">England vs Pakistan ODI</a>
</div>
<div id="contests" hidden>
  <div class="contest-category">Mega Contests</div>
  <div class="contest-list"><button class="entry-button">₹49</button></div>
  <div class="contest-list"><button class="entry-button">99</button></div>
  <div class="contest-list"><button class="entry-button">₹ 1,000</button></div>
</div>
<div id="builder" hidden>
  <ul class="nav-tabs"><li><a class="nav-link">WK</a></li><li><a class="nav-link">BAT</a></li></ul>
  <div class="tab-pane active">
    <div class="players-list">
      <div class="player-category-list" id="p-rahul-sharma"><div class="player-name"><div>Rahul Sharma</div><div>Sel by 80%</div></div><i class="fa-plus-circle">+</i></div>
      <div class="player-category-list" id="p-rahul"><div class="player-name">Rahul</div><i class="fa-plus-circle">+</i></div>
      <div class="player-category-list" id="p-virat"><div class="player-name">Virat K.</div><i class="fa-minus-circle">-</i></div>
    </div>
  </div>
  <div class="team-preview"><button class="btn btn-secondary continue">Continue</button></div>
</div>
<div class="select-captain-container" hidden>
  <div class="c-vc-player-category-list-container">
    <div class="c-vc-player-category-list"><div class="player-name">Rahul Sharma</div><div class="c-vc-buttons"><span class="c-vc-button">C</span><span class="c-vc-button">VC</span></div></div>
    <div class="c-vc-player-category-list"><div class="player-name">Virat K.</div><div class="c-vc-buttons"><span class="c-vc-button">C</span><span class="c-vc-button">VC</span></div></div>
  </div>
  <div class="team-preview"><a class="btn btn-secondary disabled" id="save">Save Team</a></div>
</div>
<div class="selected-team-detail-wrapper" hidden>
  <input type="radio" name="myteam" value="team-1">
  <div class="join-selected-team"><button class="btn join">Join</button></div>
</div>
<div class="modal show" role="dialog" hidden>
  <div class="modal-title">Confirmation</div>
  <div class="modal-body"><div class="row"><div class="col-8">Joining Amount</div><div class="col-4 text-right"><span>{{amount}}</span></div></div></div>
  <button class="confirm">Join Contest</button>
</div>
</body></html>`

type SiteOptions struct {
	// ExistingTeam makes the entry control land on the saved-team sheet.
	ExistingTeam bool
	// ModalAmount is the amount shown on the confirmation overlay; ₹49 by default.
	ModalAmount string
	// NoTrigger drops the login trigger link.
	NoTrigger bool
	// NoTabEnable keeps the login submit disabled regardless of focus changes.
	NoTabEnable bool
}

type Site struct {
	Top   *Page
	Frame *Page

	mu     sync.Mutex
	saved  bool
	joined bool
	match  string
}

func (s *Site) Match() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

func (s *Site) Joined() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined
}

func (s *Site) Saved() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// OpenContests shows the contest listing as if a match had been selected.
func (s *Site) OpenContests() {
	s.Frame.Mutate(func(doc *goquery.Document) { show(doc, "#contests") })
}

func show(doc *goquery.Document, css string) { doc.Find(css).RemoveAttr("hidden") }
func hide(doc *goquery.Document, css string) { doc.Find(css).SetAttr("hidden", "") }

func NewSite(opts SiteOptions) *Site {
	if opts.ModalAmount == "" {
		opts.ModalAmount = "₹49"
	}
	top := topMarkup
	if opts.NoTrigger {
		top = strings.Replace(top, `<a class="open-login" data-target="#login">Login</a>`, "", 1)
	}
	s := &Site{
		Top:   New(top),
		Frame: New(strings.Replace(frameMarkup, "{{amount}}", opts.ModalAmount, 1)),
	}
	s.Top.AddFrame("game", s.Frame)

	s.Top.OnClick(`[data-target="#login"]`, func(doc *goquery.Document, _ *goquery.Selection) {
		doc.Find("#login").RemoveAttr("style")
	})
	if !opts.NoTabEnable {
		s.Top.OnKey("Tab", func(doc *goquery.Document, _ *goquery.Selection) {
			doc.Find("button[type='submit']").RemoveAttr("disabled")
		})
	}
	submit := func(doc *goquery.Document) {
		if doc.Find("input[placeholder='Enter Password']").AttrOr("value", "") == "wrong" {
			show(doc, ".error-message")
			return
		}
		doc.Find("#login").SetAttr("style", "display: none")
		doc.Find("body").AppendHtml(`<span class="user-balance">100</span>`)
	}
	s.Top.OnClick("button[type='submit']", func(doc *goquery.Document, _ *goquery.Selection) { submit(doc) })
	s.Top.OnEvaluate("requestSubmit", func(doc *goquery.Document, _ any) any {
		submit(doc)
		return true
	})
	s.Top.OnClick(".play-icon", func(doc *goquery.Document, _ *goquery.Selection) {
		show(doc, "iframe")
	})

	s.Frame.OnClick(".inner-matches-list a", func(doc *goquery.Document, target *goquery.Selection) {
		s.mu.Lock()
		s.match = target.AttrOr("href", "")
		s.mu.Unlock()
		show(doc, "#contests")
	})
	s.Frame.OnClick(".entry-button", func(doc *goquery.Document, _ *goquery.Selection) {
		hide(doc, "#contests")
		s.mu.Lock()
		saved := s.saved
		s.mu.Unlock()
		if saved || opts.ExistingTeam {
			show(doc, ".selected-team-detail-wrapper")
			return
		}
		show(doc, "#builder")
	})
	s.Frame.OnClick(".fa-plus-circle", func(_ *goquery.Document, target *goquery.Selection) {
		target.RemoveClass("fa-plus-circle").AddClass("fa-minus-circle")
	})
	s.Frame.OnClick(".continue", func(doc *goquery.Document, _ *goquery.Selection) {
		hide(doc, "#builder")
		show(doc, ".select-captain-container")
	})
	s.Frame.OnClick(".c-vc-button", func(doc *goquery.Document, target *goquery.Selection) {
		mark := strings.TrimSpace(target.Text())
		doc.Find(".c-vc-button.c-vc-selected").Each(func(_ int, sel *goquery.Selection) {
			if strings.TrimSpace(sel.Text()) == mark {
				sel.RemoveClass("c-vc-selected")
			}
		})
		target.AddClass("c-vc-selected")
		if doc.Find(".c-vc-button.c-vc-selected").Length() == 2 {
			doc.Find("#save").RemoveClass("disabled")
		}
	})
	s.Frame.OnClick("#save", func(doc *goquery.Document, _ *goquery.Selection) {
		hide(doc, ".select-captain-container")
		show(doc, "#contests")
		s.mu.Lock()
		s.saved = true
		s.mu.Unlock()
	})
	s.Frame.OnClick(".join-selected-team button", func(doc *goquery.Document, _ *goquery.Selection) {
		show(doc, ".modal")
	})
	s.Frame.OnClick(".modal button.confirm", func(doc *goquery.Document, _ *goquery.Selection) {
		hide(doc, ".modal")
		s.mu.Lock()
		s.joined = true
		s.mu.Unlock()
	})
	return s
}

