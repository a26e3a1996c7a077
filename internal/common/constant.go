package common

const (
	// SessionTokenHeaderName is the gRPC metadata key carrying the session token.
	SessionTokenHeaderName = "session_token"

	// SessionTokenHTTPHeader carries the session token for cookie-less HTTP clients.
	SessionTokenHTTPHeader = "X-Session-Token"

	// SessionCookieName is the browser cookie carrying the session token.
	SessionCookieName = "timeboard_session"
)
