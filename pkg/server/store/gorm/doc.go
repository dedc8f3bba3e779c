// Package gorm provides GORM-based implementations of the store interfaces
// defined in the parent store package.
//
// The volunteer and donation stores select every row together with the
// created_by_id of its grid, which the privacy filter needs to decide
// whether the grid owner is the viewer.
package gorm
