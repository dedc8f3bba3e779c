package audit

import "fmt"

// RoleChangeEvent is an admin changing the stored role of a user.
type RoleChangeEvent struct {
	Subject
	TargetUserID string
	FromRole     string
	ToRole       string
	Success      bool
	ErrorMessage string
}

func (e RoleChangeEvent) MessageID() string {
	return MsgIDRoleChange
}

func (e RoleChangeEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s changed role of %s from %s to %s", e.user(), e.TargetUserID, e.FromRole, e.ToRole)
	}
	msg := fmt.Sprintf("%s tried to change role of %s to %s", e.user(), e.TargetUserID, e.ToRole)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e RoleChangeEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e RoleChangeEvent) Facility() int {
	return FacilityAuth
}

func (e RoleChangeEvent) StructuredData() map[string]map[string]string {
	sd := e.data()
	sd[SDIDSubject] = map[string]string{
		"user": e.TargetUserID,
		"to":   e.ToRole,
	}
	if e.FromRole != "" {
		sd[SDIDSubject]["from"] = e.FromRole
	}
	sd[SDIDAction] = map[string]string{
		"operation": "change-role",
		"result":    result(e.Success),
	}
	return sd
}
