package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/config"
)

// RefreshCookiePath limits the refresh cookie to the auth endpoints.
const RefreshCookiePath = APIPrefix + "/auth"

type cookieSettings struct {
	secure     bool
	sameSite   http.SameSite
	domain     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newCookieSettings(cfg *config.Config) cookieSettings {
	return cookieSettings{
		secure:     cfg.CookieSecure,
		sameSite:   ParseSameSite(cfg.CookieSameSite),
		domain:     cfg.CookieDomain,
		accessTTL:  cfg.AccessTokenValidityDuration,
		refreshTTL: cfg.RefreshTokenValidityDuration,
	}
}

// ParseSameSite maps "strict", "none" and "lax" to http.SameSite. Anything
// else is lax.
func ParseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func (c cookieSettings) cookie(name, value, path string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   c.domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	}
}

func (c cookieSettings) setAccess(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(common.AccessTokenCookieName, token, "/", int(c.accessTTL/time.Second)))
}

func (c cookieSettings) setRefresh(w http.ResponseWriter, token string) {
	http.SetCookie(w, c.cookie(common.RefreshTokenCookieName, token, RefreshCookiePath, int(c.refreshTTL/time.Second)))
}

// clear expires both session cookies on the client.
func (c cookieSettings) clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie(common.AccessTokenCookieName, "", "/", -1))
	http.SetCookie(w, c.cookie(common.RefreshTokenCookieName, "", RefreshCookiePath, -1))
}
