package phase

import (
	"fmt"
	"sort"
	"strings"

	"lineup-runner/internal/surface"
)

// MatchIDPlaceholder is replaced by the configured match identifier in the
// match_by_id role.
const MatchIDPlaceholder = "{id}"

// Selectors maps every logical element role the phases touch to an ordered
// list of candidate queries.
type Selectors struct {
	LoginModal    surface.Candidates
	LoginTriggers surface.Candidates
	LoginForm     surface.Candidates
	LoginUsername surface.Candidates
	LoginPassword surface.Candidates
	LoginSubmit   surface.Candidates
	LoginAgeCheck surface.Candidates
	LoginError    surface.Candidates
	LoggedIn      surface.Candidates

	LandingPath      string
	LandingContainer surface.Candidates
	GameTile         surface.Candidates
	GamePlay         surface.Candidates
	GameFrame        surface.Candidates
	FrameReady       surface.Candidates
	MatchList        surface.Candidates
	MatchLink        surface.Candidates
	MatchByID        surface.Candidates
	PostEntry        surface.Candidates

	EntryButton     surface.Candidates
	ExistingTeam    surface.Candidates
	ActivePane      surface.Candidates
	TeamTab         surface.Candidates
	PlayersList     surface.Candidates
	PlayerRow       surface.Candidates
	PlayerName      surface.Candidates
	PlayerAdd       surface.Candidates
	PlayerRemove    surface.Candidates
	Continue        surface.Candidates
	CaptainScreen   surface.Candidates
	DesignationList surface.Candidates
	DesignationRow  surface.Candidates
	DesignationName surface.Candidates
	DesignationBtn  surface.Candidates
	DesignationOn   surface.Candidates
	TeamPreview     surface.Candidates
	SaveInPreview   surface.Candidates
	SaveTeam        surface.Candidates

	ContestList     surface.Candidates
	ContestCategory surface.Candidates
	TeamSheet       surface.Candidates
	TeamRadio       surface.Candidates
	JoinButton      surface.Candidates
	ConfirmModal    surface.Candidates
	ModalTitle      surface.Candidates
	ModalConfirm    surface.Candidates
	ModalAmount     surface.Candidates
	ModalBody       surface.Candidates

	// TabLabels maps a roster category to the text on its tab. Categories
	// without an entry use their own name.
	TabLabels map[string]string
}

func DefaultSelectors() *Selectors {
	css := surface.CSS
	text := surface.WithText
	return &Selectors{
		LoginModal: surface.Candidates{css("#login")},
		LoginTriggers: surface.Candidates{
			css(`[data-target="#login"]`),
			css(`[data-bs-target="#login"]`),
			text("a,button", `^\s*log\s*in\s*$`),
		},
		LoginForm:     surface.Candidates{css(".login-form"), css("form")},
		LoginUsername: surface.Candidates{css("input[placeholder='Enter Username']"), css("input[name='username']")},
		LoginPassword: surface.Candidates{css("input[placeholder='Enter Password']"), css("input[type='password']")},
		LoginSubmit:   surface.Candidates{css("button[type='submit']"), text("button", `log\s*in`)},
		LoginAgeCheck: surface.Candidates{css("#customCheck")},
		LoginError:    surface.Candidates{css(".login-form .error-message"), css("#login .alert-danger")},
		LoggedIn:      surface.Candidates{css(".user-balance"), css(".logout-btn")},

		LandingPath:      "/fantasy/our",
		LandingContainer: surface.Candidates{css(".our-casino"), css(".casino-list")},
		GameTile:         surface.Candidates{text(".casino-list-item", `diam11`)},
		GamePlay:         surface.Candidates{css(".casino-list-item .play-icon"), css(".casino-list-item .fa-play")},
		GameFrame:        surface.Candidates{css(`iframe[src*="realteam11.com"]`)},
		FrameReady:       surface.Candidates{css(".league-names.inner-matches-list")},
		MatchList:        surface.Candidates{css(".inner-matches-list")},
		MatchLink:        surface.Candidates{css(".inner-matches-list a")},
		MatchByID:        surface.Candidates{css(`a[href="/league/contests/` + MatchIDPlaceholder + `/contests"]`)},
		PostEntry:        surface.Candidates{css(".contest-category"), css(".contest-list"), css(".entry-button")},

		EntryButton:     surface.Candidates{css(".entry-button")},
		ExistingTeam:    surface.Candidates{css(".selected-team-detail-wrapper")},
		ActivePane:      surface.Candidates{css(".tab-pane.active")},
		TeamTab:         surface.Candidates{css(".nav-tabs .nav-link")},
		PlayersList:     surface.Candidates{css(".players-list")},
		PlayerRow:       surface.Candidates{css(".player-category-list")},
		PlayerName:      surface.Candidates{css(".player-name")},
		PlayerAdd:       surface.Candidates{css(".fa-plus-circle")},
		PlayerRemove:    surface.Candidates{css(".fa-minus-circle")},
		Continue: surface.Candidates{
			css(".team-preview .btn.btn-secondary"),
			text(".team-preview button", `continue`),
			text(".team-preview button", `contine`),
			text(".team-preview button", `next`),
			text(".team-preview button", `save team`),
			text("button.btn.btn-secondary", `continue`),
			text("button", `continue`),
			text("button", `contine`),
			text("button", `continue|contine|next|save`),
		},
		CaptainScreen:   surface.Candidates{css(".select-captain-container")},
		DesignationList: surface.Candidates{css(".c-vc-player-category-list-container")},
		DesignationRow:  surface.Candidates{css(".c-vc-player-category-list")},
		DesignationName: surface.Candidates{css(".player-name")},
		DesignationBtn:  surface.Candidates{css(".c-vc-buttons .c-vc-button")},
		DesignationOn:   surface.Candidates{css(".c-vc-player-category-list .c-vc-buttons .c-vc-button.c-vc-selected")},
		TeamPreview:     surface.Candidates{css(".team-preview")},
		SaveInPreview:   surface.Candidates{text("a,button", `save team`)},
		SaveTeam: surface.Candidates{
			text(".team-preview a.btn.btn-secondary", `save team`),
			text(".team-preview a", `save team`),
			text(".team-preview button", `save team`),
			text("a.btn.btn-secondary", `save team`),
			text("a", `save team`),
		},

		ContestList:     surface.Candidates{css(".contest-list")},
		ContestCategory: surface.Candidates{css(".contest-category")},
		TeamSheet:       surface.Candidates{css(".selected-team-detail-wrapper")},
		TeamRadio:       surface.Candidates{css(`input[type="radio"][name="myteam"]`)},
		JoinButton: surface.Candidates{
			text(".join-selected-team button", `join`),
			text(".join-selected-team .btn", `join`),
			text("button", `join`),
		},
		ConfirmModal: surface.Candidates{css(`.modal.show[role="dialog"]`)},
		ModalTitle:   surface.Candidates{text(".modal-title", `confirmation`)},
		ModalConfirm: surface.Candidates{text("button", `join contest`)},
		ModalAmount:  surface.Candidates{css(".modal-body .row .col-4.text-right span")},
		ModalBody:    surface.Candidates{css(".modal-body")},

		TabLabels: map[string]string{},
	}
}

func (s *Selectors) roles() map[string]*surface.Candidates {
	return map[string]*surface.Candidates{
		"login_modal":      &s.LoginModal,
		"login_triggers":   &s.LoginTriggers,
		"login_form":       &s.LoginForm,
		"login_username":   &s.LoginUsername,
		"login_password":   &s.LoginPassword,
		"login_submit":     &s.LoginSubmit,
		"login_age_check":  &s.LoginAgeCheck,
		"login_error":      &s.LoginError,
		"logged_in":        &s.LoggedIn,
		"landing":          &s.LandingContainer,
		"game_tile":        &s.GameTile,
		"game_play":        &s.GamePlay,
		"game_frame":       &s.GameFrame,
		"frame_ready":      &s.FrameReady,
		"match_list":       &s.MatchList,
		"match_link":       &s.MatchLink,
		"match_by_id":      &s.MatchByID,
		"post_entry":       &s.PostEntry,
		"entry_button":     &s.EntryButton,
		"existing_team":    &s.ExistingTeam,
		"active_pane":      &s.ActivePane,
		"team_tab":         &s.TeamTab,
		"players_list":     &s.PlayersList,
		"player_row":       &s.PlayerRow,
		"player_name":      &s.PlayerName,
		"player_add":       &s.PlayerAdd,
		"player_remove":    &s.PlayerRemove,
		"continue":         &s.Continue,
		"captain_screen":   &s.CaptainScreen,
		"designation_list": &s.DesignationList,
		"designation_row":  &s.DesignationRow,
		"designation_name": &s.DesignationName,
		"designation_btn":  &s.DesignationBtn,
		"designation_on":   &s.DesignationOn,
		"team_preview":     &s.TeamPreview,
		"save_in_preview":  &s.SaveInPreview,
		"save_team":        &s.SaveTeam,
		"contest_list":     &s.ContestList,
		"contest_category": &s.ContestCategory,
		"team_sheet":       &s.TeamSheet,
		"team_radio":       &s.TeamRadio,
		"join_button":      &s.JoinButton,
		"confirm_modal":    &s.ConfirmModal,
		"modal_title":      &s.ModalTitle,
		"modal_confirm":    &s.ModalConfirm,
		"modal_amount":     &s.ModalAmount,
		"modal_body":       &s.ModalBody,
	}
}

// Roles lists the names accepted by Override, sorted.
func (s *Selectors) Roles() []string {
	names := make([]string, 0, len(s.roles()))
	for name := range s.roles() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Override replaces the candidates for one role.
func (s *Selectors) Override(role string, c surface.Candidates) error {
	slot, ok := s.roles()[strings.TrimSpace(role)]
	if !ok {
		return fmt.Errorf("unknown selector role %q", role)
	}
	if len(c) == 0 {
		return fmt.Errorf("selector role %q has no candidates", role)
	}
	for i, q := range c {
		if q.IsZero() {
			return fmt.Errorf("selector role %q candidate %d has empty css", role, i)
		}
	}
	*slot = c
	return nil
}

func (s *Selectors) TabLabel(category string) string {
	if label := strings.TrimSpace(s.TabLabels[category]); label != "" {
		return label
	}
	return category
}

var cssStringEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "'", `\'`, "\n", `\a `)

// matchByID expands the identifier placeholder in every candidate. The id is
// escaped for use inside a quoted attribute value.
func (s *Selectors) matchByID(id string) surface.Candidates {
	id = cssStringEscaper.Replace(id)
	out := make(surface.Candidates, 0, len(s.MatchByID))
	for _, q := range s.MatchByID {
		q.CSS = strings.ReplaceAll(q.CSS, MatchIDPlaceholder, id)
		out = append(out, q)
	}
	return out
}
