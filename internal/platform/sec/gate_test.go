// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-image/internal/platform/apperr"
	"github.com/taibuivan/yomira-image/internal/platform/sec"
)

/*
TestAuthorize verifies the any-of semantics of the permission check.
*/
func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		account *sec.Account
		anyOf   []sec.Scope
		allowed bool
	}{
		{"super_user_passes", sec.SuperUser("admin"), []sec.Scope{sec.ScopeImageDelete}, true},
		{"holds_exact_scope", account(sec.ScopeImageData), []sec.Scope{sec.ScopeImageData}, true},
		{"holds_one_of_two", account(sec.ScopeUploadImagePrivate), []sec.Scope{sec.ScopeUploadImage, sec.ScopeUploadImagePrivate}, true},
		{"holds_unrelated_scope", account(sec.ScopeImageTags), []sec.Scope{sec.ScopeImageData}, false},
		{"no_scopes", account(), []sec.Scope{sec.ScopeImageData}, false},
		{"anonymous", nil, []sec.Scope{sec.ScopeImageData}, false},
		{"empty_requirement", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := sec.Authorize(tt.account, tt.anyOf...)

			assert.Equal(t, tt.allowed, decision.Allowed)
			if tt.allowed {
				assert.Empty(t, decision.Missing)
			} else {
				assert.Equal(t, tt.anyOf, decision.Missing)
			}
		})
	}
}

/*
TestAuthorize_AddingScopeFlipsDecision checks that granting the missing scope allows the call.
*/
func TestAuthorize_AddingScopeFlipsDecision(t *testing.T) {
	for _, scope := range sec.KnownScopes() {
		t.Run(string(scope), func(t *testing.T) {
			assert.False(t, sec.Authorize(account(), scope).Allowed)
			assert.True(t, sec.Authorize(account(scope), scope).Allowed)
		})
	}
}

/*
TestGate_Require verifies the namespaced error produced on deny.
*/
func TestGate_Require(t *testing.T) {
	gate := sec.NewGate("yomira-image-test")

	require.NoError(t, gate.Require(account(sec.ScopeImageDelete), sec.ScopeImageDelete, sec.ScopeImageDeletePrivate))

	err := gate.Require(account(), sec.ScopeImageDelete, sec.ScopeImageDeletePrivate)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "PERMISSION_DENIED", ae.Code)
	assert.Equal(t, []string{"image_delete", "image_delete_private"}, ae.Scopes)
	assert.Equal(t,
		"missing scope(s) yomira-image-test:image_delete or yomira-image-test:image_delete_private",
		ae.Message,
	)
}

/*
TestParsePermissions verifies the "all" sentinel and explicit scope sets.
*/
func TestParsePermissions(t *testing.T) {
	all := sec.ParsePermissions([]string{"image_data", "all"})
	assert.True(t, all.IsAll())
	assert.Empty(t, all.Scopes())
	for _, scope := range sec.KnownScopes() {
		assert.True(t, all.Has(scope))
	}

	scoped := sec.ParsePermissions([]string{"image_tags", "image_data"})
	assert.False(t, scoped.IsAll())
	assert.Equal(t, []sec.Scope{sec.ScopeImageData, sec.ScopeImageTags}, scoped.Scopes())
	assert.False(t, scoped.Has(sec.ScopeImageDelete))

	var zero sec.Permissions
	assert.False(t, zero.Has(sec.ScopeImageData))
}

/*
TestAccount_Owns verifies ownership checks, including anonymous callers.
*/
func TestAccount_Owns(t *testing.T) {
	owner := &sec.Account{ID: "a"}

	assert.True(t, owner.Owns("a"))
	assert.False(t, owner.Owns("b"))

	var anonymous *sec.Account
	assert.False(t, anonymous.Owns(""))
	assert.Equal(t, "", sec.AccountID(anonymous))
	assert.False(t, (&sec.Account{}).Owns(""))
}

func account(scopes ...sec.Scope) *sec.Account {
	return &sec.Account{ID: "account-1", Permissions: sec.ScopedPermissions(scopes...)}
}
