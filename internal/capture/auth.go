package capture

import (
	"os"

	"github.com/playwright-community/playwright-go"
)

const (
	sessionIDCookie     = "sessionid"
	sessionIDSignCookie = "sessionid_sign"
	cookieDomain        = ".tradingview.com"

	tradingViewOrigin = "https://www.tradingview.com"
)

// credentials is the TradingView session cookie pair. The sign value is a
// companion to the primary session ID and is useless on its own.
type credentials struct {
	sessionID     string
	sessionIDSign string
}

// authSeed selects how a fresh browsing context gets its authentication
// state. The two seeding modes are mutually exclusive per context.
type authSeed int

const (
	authNone authSeed = iota
	authStorageState
	authCookies
)

// resolveAuthSeed picks the seeding mode: a persisted storage-state snapshot
// takes priority over raw credentials, which take priority over nothing.
func resolveAuthSeed(storageStatePath string, creds credentials) authSeed {
	if storageStatePath != "" {
		if _, err := os.Stat(storageStatePath); err == nil {
			return authStorageState
		}
	}
	if creds.sessionID != "" {
		return authCookies
	}
	return authNone
}

// sessionCookies builds the cookie list to inject on the upstream domain.
// When the sign companion is absent the primary cookie is injected alone,
// never with an empty-value substitute.
func sessionCookies(creds credentials) []playwright.OptionalCookie {
	if creds.sessionID == "" {
		return nil
	}
	cookies := []playwright.OptionalCookie{{
		Name:     sessionIDCookie,
		Value:    creds.sessionID,
		Domain:   playwright.String(cookieDomain),
		Path:     playwright.String("/"),
		Secure:   playwright.Bool(true),
		HttpOnly: playwright.Bool(true),
	}}
	if creds.sessionIDSign != "" {
		cookies = append(cookies, playwright.OptionalCookie{
			Name:     sessionIDSignCookie,
			Value:    creds.sessionIDSign,
			Domain:   playwright.String(cookieDomain),
			Path:     playwright.String("/"),
			Secure:   playwright.Bool(true),
			HttpOnly: playwright.Bool(true),
		})
	}
	return cookies
}
