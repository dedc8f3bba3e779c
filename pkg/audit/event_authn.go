package audit

import "fmt"

// AuthenticateEvent is a login attempt or a rejected session token.
type AuthenticateEvent struct {
	Subject
	Login             string
	AuthenticatorName string
	Success           bool
	ErrorMessage      string
}

func (e AuthenticateEvent) MessageID() string {
	return MsgIDAuthn
}

func (e AuthenticateEvent) who() string {
	if e.Login != "" {
		return e.Login
	}
	return e.user()
}

func (e AuthenticateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s successfully authenticated with authenticator %s", e.who(), e.AuthenticatorName)
	}
	msg := fmt.Sprintf("%s failed to authenticate with authenticator %s", e.who(), e.AuthenticatorName)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e AuthenticateEvent) Severity() Severity {
	return severity(e.Success)
}

func (e AuthenticateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e AuthenticateEvent) StructuredData() map[string]map[string]string {
	sd := e.data()
	sd[SDIDAuth]["authenticator"] = e.AuthenticatorName
	if e.Login != "" {
		sd[SDIDAuth]["login"] = e.Login
	}
	sd[SDIDAction] = map[string]string{
		"operation": "authenticate",
		"result":    result(e.Success),
	}
	return sd
}
