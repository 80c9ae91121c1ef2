package phase

import (
	"context"
	"time"

	"lineup-runner/internal/interact"
	"lineup-runner/internal/model"
	"lineup-runner/internal/surface"
	"lineup-runner/internal/wait"
)

const (
	forceShowScript = `(sel) => {
	const root = document.querySelector(sel);
	if (!root) return false;
	root.style.display = 'block';
	root.classList.add('show');
	root.setAttribute('aria-modal', 'true');
	root.removeAttribute('aria-hidden');
	return true;
}`
	requestSubmitScript = `(sel) => {
	const form = document.querySelector(sel);
	if (!form) return false;
	if (typeof form.requestSubmit === 'function') form.requestSubmit(); else form.submit();
	return true;
}`
)

// Authenticate opens the base URL, reveals the login form, submits the
// credential and checks for a rejection message.
func (x *Executor) Authenticate(ctx context.Context, page surface.Surface, cred model.Credential) error {
	t := x.Timings
	s := x.Selectors

	if err := page.Goto(ctx, x.BaseURL); err != nil {
		return model.Timeout("open_base_url", err)
	}
	if err := x.sleep(ctx, t.AfterGoto); err != nil {
		return err
	}

	if !x.revealLogin(ctx, page) {
		return model.NotFound("login_modal_not_visible")
	}
	modal, _ := interact.ResolveFirstVisible(ctx, page, s.LoginModal)

	form, err := x.visible(ctx, modal, s.LoginForm, t.Appear, "login_form")
	if err != nil {
		return err
	}
	user, err := x.visible(ctx, form, s.LoginUsername, t.Appear, "login_username")
	if err != nil {
		return err
	}
	pass, err := x.visible(ctx, form, s.LoginPassword, t.Appear, "login_password")
	if err != nil {
		return err
	}
	if err := user.Fill(ctx, cred.Identifier); err != nil {
		return model.Timeout("fill_username", err)
	}
	if err := pass.Fill(ctx, cred.Secret); err != nil {
		return model.Timeout("fill_password", err)
	}
	_ = user.Dispatch(ctx, "input", "change", "blur")
	_ = pass.Dispatch(ctx, "input", "change", "blur")

	if age, ok := interact.ResolveFirstVisible(ctx, form, s.LoginAgeCheck); ok {
		_ = age.Check(ctx)
	}

	submit, err := wait.Poll(ctx, wait.Options{Timeout: t.SubmitEnable, Interval: t.Nudge, Label: "login_submit_enabled"},
		func(ctx context.Context) (surface.Element, bool, error) {
			if el, ok := interact.ResolveFirstMatch(ctx, form, s.LoginSubmit); ok {
				return el, true, nil
			}
			_ = pass.Focus(ctx)
			_ = pass.Press(ctx, "Tab")
			return nil, false, nil
		})
	if err == nil {
		_ = clickWithin(ctx, submit, t.Short)
	} else {
		x.logf("submit control stayed disabled, submitting form directly")
		_, _ = page.Evaluate(ctx, requestSubmitScript, s.LoginForm.First().CSS)
	}

	// Either signal is enough; neither is an error by itself.
	_ = wait.Until(ctx, x.opts(t.Short, "login_signal"), func(ctx context.Context) (bool, error) {
		return !x.isVisible(ctx, page, s.LoginModal) || x.isVisible(ctx, page, s.LoggedIn), nil
	})
	if err := x.sleep(ctx, t.LoginSettle); err != nil {
		return err
	}
	for range 3 {
		_ = page.Press(ctx, "Escape")
		if err := x.sleep(ctx, t.EscapeGap); err != nil {
			return err
		}
	}

	if x.isVisible(ctx, page, s.LoginError) {
		return model.AuthFailed("login_failed")
	}
	return nil
}

// revealLogin makes the login modal visible, trying each trigger before
// forcing it open with a script.
func (x *Executor) revealLogin(ctx context.Context, page surface.Surface) bool {
	s := x.Selectors
	if x.isVisible(ctx, page, s.LoginModal) {
		return true
	}
	for _, q := range s.LoginTriggers {
		trigger, ok := interact.FirstVisible(ctx, page, q)
		if !ok {
			continue
		}
		_ = clickWithin(ctx, trigger, 5*time.Second)
		_ = x.sleep(ctx, x.Timings.Tick+x.Timings.Tick/2)
		if x.isVisible(ctx, page, s.LoginModal) {
			return true
		}
	}
	x.logf("login triggers did not open the modal, forcing it visible")
	_, _ = page.Evaluate(ctx, forceShowScript, s.LoginModal.First().CSS)
	_ = x.sleep(ctx, x.Timings.Tick)
	return x.isVisible(ctx, page, s.LoginModal)
}
