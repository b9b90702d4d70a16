package auth

import (
	"fmt"
	"log"
	"strings"
	"time"

	"go-bosszp-automation/internal/browser"
	"go-bosszp-automation/internal/config"

	"github.com/playwright-community/playwright-go"
)

// Login page selectors. The switch button carries phone-switch when the QR
// panel is showing and ewm-switch when the password form is showing, so
// reaching the QR code sometimes takes a double toggle.
const (
	selPhoneSwitch  = ".btn-sign-switch.phone-switch"
	selQRSwitch     = ".btn-sign-switch.ewm-switch"
	selQRBox        = ".qr-img-box"
	selScannedTitle = ".login-step-title:has-text('扫描成功')"
	selEmailDialog  = "div.dialog-container:has-text('尚未设置邮箱验证')"
	selDialogClose  = "i.icon-close"
)

const (
	maxChallengeTrials = 5
	maxToggleAttempts  = 5
)

// dialogOutcome is the result of a best-effort popup dismissal. Only
// dialogError is worth surfacing; absence is success.
type dialogOutcome int

const (
	dialogDismissed dialogOutcome = iota
	dialogNotPresent
	dialogError
)

// LoginManager drives the QR-code login flow for one browser page.
type LoginManager struct {
	page  playwright.Page
	cfg   *config.Config
	log   *log.Logger
	state State
}

func NewLoginManager(page playwright.Page, cfg *config.Config, logger *log.Logger) *LoginManager {
	return &LoginManager{
		page:  page,
		cfg:   cfg,
		log:   logger,
		state: StateUnauthenticated,
	}
}

func (lm *LoginManager) State() State {
	return lm.state
}

// Login establishes an authenticated session. It applies cached cookies
// first; if those still work the challenge is skipped entirely. Otherwise it
// loops the QR challenge up to maxChallengeTrials times, refreshing the code
// whenever the scan or the phone confirmation times out.
func (lm *LoginManager) Login() error {
	lm.log.Println("🔐 Opening login page...")
	lm.loadCookies()

	if _, err := lm.page.Goto(lm.cfg.LoginURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(float64(lm.cfg.Timeouts.PageLoad)),
	}); err != nil {
		lm.state = StateFailed
		return fmt.Errorf("failed to open login page: %w", err)
	}

	if lm.isAuthenticatedURL(lm.page.URL()) {
		lm.log.Printf("✅ Already logged in via cached cookies (url: %s)", lm.page.URL())
		lm.state = StateAuthenticated
		lm.dismissEmailDialog()
		return nil
	}
	lm.log.Printf("👤 Not logged in, starting QR flow (url: %s)", lm.page.URL())

	for trial := 1; trial <= maxChallengeTrials; trial++ {
		if strings.HasPrefix(lm.page.URL(), lm.cfg.RecommendURL) {
			break
		}
		lm.log.Printf("📷 Challenge trial %d/%d", trial, maxChallengeTrials)

		if err := lm.switchToQRLogin(); err != nil {
			//one trial burned; a refresh sometimes un-wedges the layout
			lm.log.Printf("⚠️ %v, refreshing and retrying", err)
			lm.refreshChallenge()
			continue
		}
		lm.state = StateChallengeDisplayed

		lm.log.Printf("⏳ Waiting for QR scan (%dms timeout)...", lm.cfg.Timeouts.QRScan)
		err := lm.page.Locator(selScannedTitle).WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(float64(lm.cfg.Timeouts.QRScan)),
		})
		if err != nil {
			//expected: the code was not scanned in time or silently expired
			lm.log.Println("🔄 QR not scanned or expired, refreshing the code...")
			lm.refreshChallenge()
			continue
		}

		lm.log.Println("📱 QR scanned! Waiting for confirmation on the phone...")
		err = lm.page.WaitForURL(lm.cfg.RecommendURL+"*", playwright.PageWaitForURLOptions{
			Timeout: playwright.Float(float64(lm.cfg.Timeouts.QRConfirm)),
		})
		if err != nil {
			lm.log.Println("🔄 Confirmation timed out, refreshing the code...")
			lm.refreshChallenge()
			continue
		}
		break
	}

	url := lm.page.URL()
	if strings.HasPrefix(url, lm.cfg.RecommendURL) || strings.HasPrefix(url, lm.cfg.SecurityCheckURL) {
		lm.log.Printf("✅ Login successful (url: %s)", url)
		lm.state = StateAuthenticated
		lm.saveCookies()
		lm.dismissEmailDialog()
		return nil
	}

	lm.state = StateFailed
	return &LoginError{LastURL: url}
}

// switchToQRLogin toggles the login form until the QR code box is visible.
// Returns ErrChallengeUnavailable when the bound is exhausted.
func (lm *LoginManager) switchToQRLogin() error {
	settle := lm.cfg.Timeouts.ToggleSettleDuration()

	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		time.Sleep(settle)

		phoneSwitch := lm.page.Locator(selPhoneSwitch)
		if visible, _ := phoneSwitch.IsVisible(); visible {
			//password form with the phone toggle showing: double toggle
			lm.log.Println("🔁 Switching to QR login (double toggle)...")
			if err := phoneSwitch.Click(); err != nil {
				continue
			}
			time.Sleep(settle)
			qrSwitch := lm.page.Locator(selQRSwitch)
			if visible, _ := qrSwitch.IsVisible(); visible {
				if err := qrSwitch.Click(); err != nil {
					continue
				}
				time.Sleep(2 * settle)
				if visible, _ := lm.page.Locator(selQRBox).IsVisible(); visible {
					return nil
				}
			}
		} else {
			qrSwitch := lm.page.Locator(selQRSwitch)
			if visible, _ := qrSwitch.IsVisible(); visible {
				lm.log.Println("🔁 Switching to QR login...")
				if err := qrSwitch.Click(); err != nil {
					continue
				}
				time.Sleep(2 * settle)
				if visible, _ := lm.page.Locator(selQRBox).IsVisible(); visible {
					return nil
				}
			}
		}
	}
	return ErrChallengeUnavailable
}

// refreshChallenge forces a fresh QR code by toggling to the password form
// and back. When the page layout is not what we expect a full reload has the
// same effect.
func (lm *LoginManager) refreshChallenge() {
	lm.state = StateChallengeRefreshing

	phoneSwitch := lm.page.Locator(selPhoneSwitch)
	if visible, _ := phoneSwitch.IsVisible(); visible {
		phoneSwitch.Click()
		time.Sleep(lm.cfg.Timeouts.ToggleSettleDuration() / 2)
		lm.page.Locator(selQRSwitch).Click()
		return
	}
	if _, err := lm.page.Reload(); err != nil {
		lm.log.Printf("⚠️ Page reload failed during challenge refresh: %v", err)
	}
}

// dismissEmailDialog closes the first-run "set up email verification" popup
// if it shows within the bounded wait. Absence is not an error.
func (lm *LoginManager) dismissEmailDialog() dialogOutcome {
	dialog := lm.page.Locator(selEmailDialog)
	err := dialog.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(lm.cfg.Timeouts.DialogClose)),
	})
	if err != nil {
		lm.log.Println("ℹ️ No email verification popup, continuing.")
		return dialogNotPresent
	}

	lm.log.Println("✉️ Email verification popup detected, closing...")
	if err := dialog.Locator(selDialogClose).Click(); err != nil {
		lm.log.Printf("⚠️ Failed to close email popup: %v", err)
		return dialogError
	}
	return dialogDismissed
}

func (lm *LoginManager) loadCookies() {
	cookies, err := browser.LoadCookies(lm.cfg.CookiesFile)
	if err != nil {
		lm.log.Printf("⚠️ Could not load cookies: %v. Continuing without.", err)
		return
	}
	if cookies == nil {
		lm.log.Println("🍪 No cookie file yet, starting fresh.")
		return
	}
	if err := lm.page.Context().AddCookies(cookies); err != nil {
		lm.log.Printf("⚠️ Could not apply cookies: %v. Continuing without.", err)
		return
	}
	lm.log.Printf("🍪 Applied %d cached cookies.", len(cookies))
	lm.state = StateCredentialLoaded
}

func (lm *LoginManager) saveCookies() {
	cookies, err := lm.page.Context().Cookies()
	if err != nil {
		lm.log.Printf("⚠️ Could not read session cookies: %v", err)
		return
	}
	if err := browser.SaveCookies(lm.cfg.CookiesFile, cookies); err != nil {
		lm.log.Printf("⚠️ Could not save cookies: %v", err)
		return
	}
	lm.log.Printf("💾 Saved %d cookies to %s", len(cookies), lm.cfg.CookiesFile)
}

func (lm *LoginManager) isAuthenticatedURL(url string) bool {
	if strings.HasPrefix(url, lm.cfg.RecommendURL) {
		return true
	}
	return strings.TrimSuffix(url, "/") == strings.TrimSuffix(lm.cfg.BaseURL, "/")
}
