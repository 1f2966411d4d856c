package client

import "github.com/shashiranjanraj/medcart/app/models"

// Session is the signed-in state of a caller. The zero value is signed out.
type Session struct {
	Token string
	User  models.User
}

func (s Session) LoggedIn() bool { return s.Token != "" }

// Logout returns the signed-out session. Tokens are stateless, so nothing is
// sent to the server.
func (s Session) Logout() Session { return Session{} }
