package session

// Session represents a user session at the portal API.
// A session is identified by its token; the stored token is the hash of the
// raw token handed out to the client.
type Session struct {
	Token   string
	UserID  string
	Expires int64
}
