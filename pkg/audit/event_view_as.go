package audit

import "fmt"

// ViewAsDeniedEvent is a rejected X-View-As-Role override.
type ViewAsDeniedEvent struct {
	Subject
	RequestedRole string
	Reason        string
}

func (e ViewAsDeniedEvent) MessageID() string {
	return MsgIDViewAs
}

func (e ViewAsDeniedEvent) Message() string {
	msg := fmt.Sprintf("%s tried to act as %q", e.user(), e.RequestedRole)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e ViewAsDeniedEvent) Severity() Severity {
	return SeverityWarning
}

func (e ViewAsDeniedEvent) Facility() int {
	return FacilityAuth
}

func (e ViewAsDeniedEvent) StructuredData() map[string]map[string]string {
	sd := e.data()
	sd[SDIDSubject] = map[string]string{
		"role": e.RequestedRole,
	}
	sd[SDIDAction] = map[string]string{
		"operation": "view-as",
		"result":    "failure",
	}
	return sd
}
