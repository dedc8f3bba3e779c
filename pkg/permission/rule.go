package permission

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shovel-heroes/shovel-heroes-go/pkg/role"
)

// ErrInvalidRule is returned when a rule cannot be stored.
var ErrInvalidRule = errors.New("invalid permission rule")

// Rule is one row of the role_permissions table.
type Rule struct {
	Role        role.Role `json:"role" yaml:"role"`
	ResourceKey string    `json:"resource_key" yaml:"resource"`
	CanView     bool      `json:"can_view" yaml:"view"`
	CanCreate   bool      `json:"can_create" yaml:"create"`
	CanEdit     bool      `json:"can_edit" yaml:"edit"`
	CanDelete   bool      `json:"can_delete" yaml:"delete"`
	CanManage   bool      `json:"can_manage" yaml:"manage"`
}

// Allows reports whether the rule grants action.
func (r Rule) Allows(action role.Action) bool {
	switch action {
	case role.ActionView:
		return r.CanView
	case role.ActionCreate:
		return r.CanCreate
	case role.ActionEdit:
		return r.CanEdit
	case role.ActionDelete:
		return r.CanDelete
	case role.ActionManage:
		return r.CanManage
	}
	return false
}

// With returns a copy of r with action set to allowed.
func (r Rule) With(action role.Action, allowed bool) Rule {
	switch action {
	case role.ActionView:
		r.CanView = allowed
	case role.ActionCreate:
		r.CanCreate = allowed
	case role.ActionEdit:
		r.CanEdit = allowed
	case role.ActionDelete:
		r.CanDelete = allowed
	case role.ActionManage:
		r.CanManage = allowed
	}
	return r
}

// String renders the rule as role/resource:flags, one flag per action in
// view, create, edit, delete, manage order, e.g. "guest/grids:v----".
func (r Rule) String() string {
	flags := []byte("-----")
	for i, allowed := range []bool{r.CanView, r.CanCreate, r.CanEdit, r.CanDelete, r.CanManage} {
		if allowed {
			flags[i] = "vcedm"[i]
		}
	}
	return r.Role.String() + "/" + r.ResourceKey + ":" + string(flags)
}

// Validate checks that the rule names a known role and a known resource key.
func (r Rule) Validate() error {
	if !r.Role.IsARole() {
		return fmt.Errorf("%w: unknown role %s", ErrInvalidRule, r.Role)
	}
	if r.ResourceKey == "" {
		return fmt.Errorf("%w: resource key is required", ErrInvalidRule)
	}
	if !IsKnownResource(r.ResourceKey) {
		return fmt.Errorf("%w: unknown resource %q", ErrInvalidRule, r.ResourceKey)
	}
	return nil
}

// ValidateBatch validates every rule and rejects duplicate pairs.
func ValidateBatch(rules []Rule) error {
	seen := make(map[ruleKey]bool, len(rules))
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return err
		}
		k := ruleKey{role: r.Role, resource: r.ResourceKey}
		if seen[k] {
			return fmt.Errorf("%w: duplicate rule for %s/%s", ErrInvalidRule, r.Role, r.ResourceKey)
		}
		seen[k] = true
	}
	return nil
}

// HasPermission looks up resourceKey in a rule set that belongs to a single
// role and reports whether action is granted. It is the same check the UI
// uses to hide controls; it is not an authorization decision on its own.
func HasPermission(rules []Rule, resourceKey string, action role.Action) bool {
	for _, r := range rules {
		if r.ResourceKey == resourceKey {
			return r.Allows(action)
		}
	}
	return false
}

type ruleKey struct {
	role     role.Role
	resource string
}

func sortRules(rules []Rule) {
	sort.Slice(rules, func(i, j int) bool {
		if rules[i].Role != rules[j].Role {
			return rules[i].Role < rules[j].Role
		}
		return rules[i].ResourceKey < rules[j].ResourceKey
	})
}
