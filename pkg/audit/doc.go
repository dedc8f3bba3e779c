// Package audit provides the security audit trail for Shovel Heroes.
//
// Events are written as RFC5424 syslog lines and persisted to the audit_logs
// table so that admins can list them through the API.
//
// # Event Types
//
//   - AuthenticateEvent: login success and failure, rejected session tokens
//   - ViewAsDeniedEvent: a rejected X-View-As-Role override
//   - PermissionUpdateEvent: a batch update of role_permissions
//   - RoleChangeEvent: an admin changing the stored role of a user
//
// # Usage
//
//	auditor := audit.NewLogger(audit.WithStore(store), audit.WithErrorLogger(log))
//	auditor.Log(ctx, audit.RoleChangeEvent{...})
//
// Persistence failures are logged and swallowed; they never fail the request
// being audited.
package audit
