package session

import "github.com/dmitrijs2005/gophtodo/internal/client/client"

const (
	msgInvalidCredentials = "Invalid email or password. Please try again."
	msgCheckFormat        = "Please check your email and password format."
	msgNetwork            = "Unable to reach the server. Please check your connection."
	msgLoginFailed        = "Login failed. Please try again."
	msgRegisterFailed     = "Registration failed"
	msgGoogleFailed       = "Google sign-in failed. Please try again."
)

// loginMessage picks the text shown for a failed login. A detail sent by the
// server wins over the generic text of its class.
func loginMessage(err error) string {
	if d := client.Detail(err); d != "" {
		return d
	}
	switch client.Classify(err) {
	case client.KindAuth:
		return msgInvalidCredentials
	case client.KindValidation:
		return msgCheckFormat
	case client.KindNetwork:
		return msgNetwork
	default:
		return msgLoginFailed
	}
}

func registerMessage(err error) string {
	if d := client.Detail(err); d != "" {
		return d
	}
	if client.Classify(err) == client.KindNetwork {
		return msgNetwork
	}
	return msgRegisterFailed
}

func googleMessage(err error) string {
	if d := client.Detail(err); d != "" {
		return d
	}
	if client.Classify(err) == client.KindNetwork {
		return msgNetwork
	}
	return msgGoogleFailed
}
