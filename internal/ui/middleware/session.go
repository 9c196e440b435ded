package middleware

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// sessionMaxAge keeps a browser on its workspace for 30 days.
const sessionMaxAge = 86400 * 30

// NewSessionStore creates the cookie store for workspace sessions. An empty
// secret gets a random key, so sessions do not survive a restart.
//
// The server speaks plain HTTP, so cookies are not marked Secure; browsers
// and HTTP clients would otherwise drop them when the UI is reached by IP.
func NewSessionStore(secret string) *sessions.CookieStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}

	store := sessions.NewCookieStore(key)
	store.MaxAge(sessionMaxAge)
	store.Options.Path = "/"
	store.Options.HttpOnly = true
	store.Options.Secure = false
	store.Options.SameSite = http.SameSiteLaxMode
	return store
}
