package upstream

import "net/http"

// Credentials is the closed set of authentication variants an upstream
// accepts. It is resolved once at process start and attached to every
// outbound request; it is never re-derived per call.
type Credentials interface {
	authorize(req *http.Request)
}

// APIKey authenticates with a bearer token header.
type APIKey struct {
	Key string
}

func (a APIKey) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Key)
}

// UserPassword authenticates with HTTP basic auth.
type UserPassword struct {
	Login    string
	Password string
}

func (u UserPassword) authorize(req *http.Request) {
	req.SetBasicAuth(u.Login, u.Password)
}
