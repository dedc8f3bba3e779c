// Package permission evaluates role_permissions rules.
//
// A Rule maps a (role, resource key) pair to five capability flags. Lookups
// go through a Cache, a read-through snapshot of the whole table that is
// injected into the HTTP handlers. A pair with no rule is denied for every
// action; the request still succeeds, it just sees less.
//
// # Usage
//
//	cache := permission.NewCache(store, logger)
//	if !cache.Can(ctx, role.RoleUser, "grids", role.ActionCreate) {
//	    // 403
//	}
//
//	// Admin batch update. The snapshot is dropped before the lock is released.
//	err := cache.Update(ctx, rules)
//
// Rules can also be seeded from a YAML file and kept in sync with it by a
// Watcher.
package permission
