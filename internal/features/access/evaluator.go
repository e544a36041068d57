package access

import (
	"net"
	"net/http"
	"strings"
)

// Identity is the authenticated caller as established by the identity
// middleware. A zero Identity means the caller presented no valid token.
type Identity struct {
	Authenticated bool
	Username      string
	Roles         []string
}

// Options are the configured allow-lists gating the data API.
type Options struct {
	Enabled   bool
	Usernames []string
	Roles     []string
}

// CanAccess decides whether a request may query logs. Rules are evaluated
// in order and the first match wins:
//  1. local callers are always allowed (same-host tooling, health checks)
//  2. if authorization is disabled everyone is allowed
//  3. unauthenticated callers are denied
//  4. a username on the allow-list (case-insensitive) is allowed
//  5. any allow-listed role is allowed
//  6. everyone else is denied
func CanAccess(isLocal bool, identity Identity, opts Options) bool {
	if isLocal {
		return true
	}

	if !opts.Enabled {
		return true
	}

	if !identity.Authenticated {
		return false
	}

	for _, username := range opts.Usernames {
		if strings.EqualFold(username, identity.Username) {
			return true
		}
	}

	for _, allowed := range opts.Roles {
		for _, role := range identity.Roles {
			if strings.EqualFold(allowed, role) {
				return true
			}
		}
	}

	return false
}

// IsLocalRequest reports whether the request originates from the host the
// server runs on: a loopback peer address, or a peer address equal to the
// local listener address.
func IsLocalRequest(request *http.Request) bool {
	if request.RemoteAddr == "" {
		// No socket information means an in-process call.
		return true
	}

	remoteHost, _, err := net.SplitHostPort(request.RemoteAddr)
	if err != nil {
		remoteHost = request.RemoteAddr
	}

	remoteIP := net.ParseIP(remoteHost)
	if remoteIP == nil {
		return false
	}

	if remoteIP.IsLoopback() {
		return true
	}

	if localAddr, ok := request.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if localHost, _, err := net.SplitHostPort(localAddr.String()); err == nil {
			if localIP := net.ParseIP(localHost); localIP != nil && localIP.Equal(remoteIP) {
				return true
			}
		}
	}

	return false
}
