package audit

// Well-known message IDs. They are stored in audit_logs.msgid and accepted
// by the msgid filter of the audit log listing.
const (
	MsgIDAuthn            = "authn"
	MsgIDViewAs           = "view-as"
	MsgIDPermissionUpdate = "permission-update"
	MsgIDRoleChange       = "role-change"
)

// MessageIDs lists every message ID this package emits.
var MessageIDs = []string{MsgIDAuthn, MsgIDViewAs, MsgIDPermissionUpdate, MsgIDRoleChange}

// Subject identifies who triggered an event.
type Subject struct {
	UserID     string
	Role       string // stored role
	ActingRole string
	ClientIP   string
}

func (s Subject) user() string {
	if s.UserID == "" {
		return "anonymous"
	}
	return s.UserID
}

// data returns the auth and client SD elements shared by every event.
func (s Subject) data() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"user": s.user(),
		},
		SDIDClient: {
			"ip": s.ClientIP,
		},
	}
	if s.Role != "" {
		sd[SDIDAuth]["role"] = s.Role
	}
	if s.ActingRole != "" {
		sd[SDIDAuth]["acting_role"] = s.ActingRole
	}
	return sd
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func severity(success bool) Severity {
	if success {
		return SeverityInfo
	}
	return SeverityWarning
}
