// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"github.com/taibuivan/yomira-image/internal/platform/apperr"
)

// # Authorization

// Decision is the outcome of [Authorize].
type Decision struct {
	Allowed bool

	// Missing lists every acceptable scope when the check was denied.
	Missing []Scope
}

// Authorize checks account against a set of acceptable scopes.
//
// The super-user grant always passes. Otherwise the check passes when the
// account holds at least one of anyOf. An empty requirement always passes,
// and a nil account is treated as holding no scopes.
func Authorize(account *Account, anyOf ...Scope) Decision {
	if len(anyOf) == 0 {
		return Decision{Allowed: true}
	}

	for _, scope := range anyOf {
		if account.Can(scope) {
			return Decision{Allowed: true}
		}
	}

	missing := make([]Scope, len(anyOf))
	copy(missing, anyOf)
	return Decision{Missing: missing}
}

// Gate turns denied [Decision] values into permission errors qualified with
// the service namespace ("<service>-<environment>").
type Gate struct {
	namespace string
}

// NewGate creates a new [Gate] for the given namespace.
func NewGate(namespace string) *Gate {
	return &Gate{namespace: namespace}
}

// Namespace returns the scope namespace used in error messages.
func (g *Gate) Namespace() string {
	return g.namespace
}

// Require returns a PERMISSION_DENIED error unless account holds one of anyOf.
func (g *Gate) Require(account *Account, anyOf ...Scope) error {
	decision := Authorize(account, anyOf...)
	if decision.Allowed {
		return nil
	}

	names := make([]string, len(decision.Missing))
	for i, scope := range decision.Missing {
		names[i] = string(scope)
	}
	return apperr.PermissionDenied(g.namespace, names)
}
