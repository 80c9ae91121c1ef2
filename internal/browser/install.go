package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Install downloads the playwright driver and the Chromium build it pins.
func Install() error {
	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return fmt.Errorf("install chromium: %w", err)
	}
	return nil
}

// Check starts the driver and a headless Chromium, then shuts both down.
func Check() (bool, string) {
	l, err := Launch(Options{Headless: true})
	if err != nil {
		return false, err.Error() + " (run: lineup-runner install)"
	}
	version := l.browser.Version()
	if err := l.Close(); err != nil {
		return false, err.Error()
	}
	return true, "chromium " + version
}
