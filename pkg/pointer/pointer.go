// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pointer provides helpers for optional (pointer) fields.
package pointer

// NonEmpty returns a pointer to s, or nil when s is empty.
// Optional text fields use it so "" is stored as absent.
func NonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
