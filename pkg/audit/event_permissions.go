package audit

import (
	"fmt"
	"strconv"
	"strings"
)

// Permission update sources
const (
	SourceAPI  = "api"
	SourceFile = "file"
	SourceSeed = "seed"
)

// PermissionUpdateEvent is a batch update of role_permissions.
type PermissionUpdateEvent struct {
	Subject
	Source       string   // SourceAPI, SourceFile or SourceSeed
	Rules        []string // "role/resource:flags" of each written rule
	Success      bool
	ErrorMessage string
}

func (e PermissionUpdateEvent) MessageID() string {
	return MsgIDPermissionUpdate
}

func (e PermissionUpdateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s updated %d permission rules via %s", e.user(), len(e.Rules), e.Source)
	}
	msg := fmt.Sprintf("%s failed to update %d permission rules via %s", e.user(), len(e.Rules), e.Source)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e PermissionUpdateEvent) Severity() Severity {
	if e.Success {
		return SeverityNotice
	}
	return SeverityWarning
}

func (e PermissionUpdateEvent) Facility() int {
	return FacilityAuth
}

func (e PermissionUpdateEvent) StructuredData() map[string]map[string]string {
	sd := e.data()
	sd[SDIDSubject] = map[string]string{
		"rules": strings.Join(e.Rules, ","),
		"count": strconv.Itoa(len(e.Rules)),
	}
	sd[SDIDAction] = map[string]string{
		"operation": "update",
		"source":    e.Source,
		"result":    result(e.Success),
	}
	return sd
}
