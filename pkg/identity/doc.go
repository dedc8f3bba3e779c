// Package identity provides the caller identity for Shovel Heroes requests.
//
// An Identity combines session claims (user id, email, stored role) with
// request-specific context (the acting role and the client IP). The acting
// role is what every permission check and every privacy decision uses.
//
// # Basic Usage
//
//	// Resolve the acting role from the stored role and the override header
//	acting, err := identity.ResolveRole(id, r.Header.Get("X-View-As-Role"))
//	if errors.Is(err, identity.ErrAuthorization) {
//	    // 403
//	}
//
//	id.WithActingRole(acting, override).WithRemoteIP(clientIP)
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id := identity.FromContext(ctx)
//	viewer := id.Viewer()
//
// # Acting as another role
//
// Admins and super admins may send X-View-As-Role to see the site as a lower
// role would. Viewing as guest also drops the user id from the privacy
// viewer, so records the admin authored are redacted like anyone else's.
package identity
