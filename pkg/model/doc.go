// Package model defines the database models for Shovel Heroes.
//
// # Core Models
//
//   - User: accounts with a stored role
//   - Grid: a geographic work zone with manpower or supply needs
//   - VolunteerRegistration: a volunteer signing up for a grid
//   - SupplyDonation: a supply pledge for a grid
//   - Announcement: a public notice
//   - RolePermission: one row of the capability table
//
// Grids, registrations and donations implement privacy.Record. Their contact
// fields are pointers so that a redacted field is absent from JSON while a
// legitimately empty one is still sent as "".
//
// # Database Schema
//
//   - users
//   - grids
//   - volunteer_registrations
//   - supply_donations
//   - announcements
//   - role_permissions
//   - audit_logs (written by pkg/audit)
package model
