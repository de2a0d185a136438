// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"slices"
	"sort"
)

// # Scopes

// Scope names one category of operation an account may perform.
type Scope string

const (
	// Upload public images (and private ones).
	ScopeUploadImage Scope = "upload_image"

	// Upload private images only
	ScopeUploadImagePrivate Scope = "upload_image_private"

	// Read metadata through types, tags, random and info
	ScopeImageData Scope = "image_data"

	// Attach new tags to an image
	ScopeImageTags Scope = "image_tags"

	// Detach tags from an image
	ScopeImageTagsDelete Scope = "image_tags_delete"

	// Delete any image
	ScopeImageDelete Scope = "image_delete"

	// Delete own hidden images only
	ScopeImageDeletePrivate Scope = "image_delete_private"

	// List the images of the calling account
	ScopeImageList Scope = "image_list"

	// List the images of every account
	ScopeImageListAll Scope = "image_list_all"

	// scopeAll is the wire form of the super-user permission.
	scopeAll = "all"
)

// KnownScopes returns every scope the service checks, in a stable order.
func KnownScopes() []Scope {
	return []Scope{
		ScopeUploadImage,
		ScopeUploadImagePrivate,
		ScopeImageData,
		ScopeImageTags,
		ScopeImageTagsDelete,
		ScopeImageDelete,
		ScopeImageDeletePrivate,
		ScopeImageList,
		ScopeImageListAll,
	}
}

// # Permissions

// Permissions is either the super-user grant or an explicit set of scopes.
//
// The zero value is an empty scoped set and grants nothing.
type Permissions struct {
	all    bool
	scopes map[Scope]struct{}
}

// AllPermissions returns the super-user grant, which implies every scope.
func AllPermissions() Permissions {
	return Permissions{all: true}
}

// ScopedPermissions returns a grant limited to the given scopes.
func ScopedPermissions(scopes ...Scope) Permissions {
	set := make(map[Scope]struct{}, len(scopes))
	for _, scope := range scopes {
		set[scope] = struct{}{}
	}
	return Permissions{scopes: set}
}

// ParsePermissions converts token claim strings into [Permissions].
// The literal "all" anywhere in the list yields the super-user grant.
func ParsePermissions(raw []string) Permissions {
	if slices.Contains(raw, scopeAll) {
		return AllPermissions()
	}

	scopes := make([]Scope, 0, len(raw))
	for _, value := range raw {
		scopes = append(scopes, Scope(value))
	}
	return ScopedPermissions(scopes...)
}

// IsAll reports whether p is the super-user grant.
func (p Permissions) IsAll() bool {
	return p.all
}

// Has reports whether p grants scope.
func (p Permissions) Has(scope Scope) bool {
	if p.all {
		return true
	}
	_, ok := p.scopes[scope]
	return ok
}

// Scopes lists the explicit scopes in sorted order. It is empty for the super-user grant.
func (p Permissions) Scopes() []Scope {
	out := make([]Scope, 0, len(p.scopes))
	for scope := range p.scopes {
		out = append(out, scope)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// # Accounts

// Account is the authenticated caller attached to a request.
type Account struct {
	ID          string
	Permissions Permissions
}

// SuperUser returns the account used for master-token and auth-disabled requests.
func SuperUser(id string) *Account {
	return &Account{ID: id, Permissions: AllPermissions()}
}

// AccountID returns the id of account, or "" when the request is anonymous.
func AccountID(account *Account) string {
	if account == nil {
		return ""
	}
	return account.ID
}

// Can reports whether account holds scope. A nil account holds nothing.
func (account *Account) Can(scope Scope) bool {
	return account != nil && account.Permissions.Has(scope)
}

// Owns reports whether account is the owner identified by ownerID.
func (account *Account) Owns(ownerID string) bool {
	return account != nil && account.ID != "" && account.ID == ownerID
}
