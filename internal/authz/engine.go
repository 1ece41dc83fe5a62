// Package authz holds the authorization decision engine: a pure function
// from (caller, model, operation, target record) to allow/deny. It performs
// no I/O and never retries; the same input always yields the same decision.
package authz

import (
	"github.com/localnerve/fabrica/internal/schema"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
var Allow = Decision{Allowed: true}

// Deny builds a negative decision with the given reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Decide evaluates role permissions and, for mutations on owned records,
// ownership.
//
//  1. The Admin role is allowed unconditionally.
//  2. The role's permission set must contain the operation or "all"; a role
//     missing from the rbac table has no permissions, which is a denial, not
//     an error.
//  3. For update and delete on a model with an ownerField, a supplied target
//     record must carry the caller's id in that field. The gate is skipped
//     when no target record was resolved (no record id in the request) or
//     the model declares no owner. Reads are gated by the rbac table alone;
//     ownership restricts mutation, not visibility.
func Decide(role, userID string, model *schema.ModelDescriptor, op schema.Operation, target map[string]interface{}) Decision {
	if role == schema.AdminRole {
		return Allow
	}

	if !model.RBAC.Allows(role, op) {
		return Deny("Insufficient permissions for this operation")
	}

	if (op == schema.OpUpdate || op == schema.OpDelete) && model.OwnerField != "" && target != nil {
		if owner, ok := target[model.OwnerField].(string); !ok || owner != userID {
			return Deny("You can only modify your own records")
		}
	}

	return Allow
}
