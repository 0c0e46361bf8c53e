package common

// SessionCookieName is the cookie that carries the opaque session token.
const SessionCookieName = "session_id"

// BearerPrefix is accepted in the Authorization header as a fallback for
// clients that cannot keep cookies.
const BearerPrefix = "Bearer "
