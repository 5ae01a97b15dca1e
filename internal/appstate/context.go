// Package appstate holds per-browser dashboard state (theme, last search and
// filters) keyed by the X-Client-ID header.
package appstate

import (
	"context"
	"net/http"

	"github.com/gamedash/gamedash-server/internal/id"
)

// HeaderClientID carries the client identity in both directions.
const HeaderClientID = "X-Client-ID"

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	clientIDKey       ctxKey = "clientID"
	clientIDIssuedKey ctxKey = "clientIDIssued"
)

// ClientID returns the client ID stored by Middleware, or "" outside a request.
func ClientID(ctx context.Context) string {
	v, _ := ctx.Value(clientIDKey).(string)
	return v
}

// WithClientID stores a client ID in ctx.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey, clientID)
}

// ClientIDIssued reports whether Middleware generated the client ID for this
// request because the caller sent none or a malformed one.
func ClientIDIssued(ctx context.Context) bool {
	v, _ := ctx.Value(clientIDIssuedKey).(bool)
	return v
}

// Middleware resolves the caller's client ID. A missing or malformed header
// gets a freshly generated ID. The resolved ID is always echoed back in the
// response header so the browser can keep it.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		clientID := r.Header.Get(HeaderClientID)
		if !id.Valid(id.PrefixClient, clientID) {
			generated, err := id.Generate(id.PrefixClient)
			if err != nil {
				http.Error(w, "failed to assign client id", http.StatusInternalServerError)
				return
			}
			clientID = generated
			ctx = context.WithValue(ctx, clientIDIssuedKey, true)
		}

		w.Header().Set(HeaderClientID, clientID)
		next.ServeHTTP(w, r.WithContext(WithClientID(ctx, clientID)))
	})
}

// FromRequest returns the client ID of r, for handlers mounted outside the middleware.
func FromRequest(r *http.Request) string {
	if v := ClientID(r.Context()); v != "" {
		return v
	}
	if v := r.Header.Get(HeaderClientID); id.Valid(id.PrefixClient, v) {
		return v
	}
	return ""
}
