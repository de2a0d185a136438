// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/yomira-image/internal/core/image"
	"github.com/taibuivan/yomira-image/internal/platform/sec"
)

func viewer(id string, scopes ...sec.Scope) *sec.Account {
	return &sec.Account{ID: id, Permissions: sec.ScopedPermissions(scopes...)}
}

/*
TestFilterTags verifies that private tags are only shown to the account that added them.
*/
func TestFilterTags(t *testing.T) {
	img := &image.Image{Tags: []image.Tag{
		{Name: "sky", Hidden: false, User: "a"},
		{Name: "secret-a", Hidden: true, User: "a"},
		{Name: "blue", Hidden: false, User: "b"},
		{Name: "secret-b", Hidden: true, User: "b"},
	}}

	tests := []struct {
		name    string
		account *sec.Account
		want    []string
	}{
		{"owner_a", viewer("a"), []string{"sky", "secret-a", "blue"}},
		{"owner_b", viewer("b"), []string{"sky", "blue", "secret-b"}},
		{"stranger", viewer("c"), []string{"sky", "blue"}},
		{"anonymous", nil, []string{"sky", "blue"}},
		{"super_user_sees_no_private_tags", sec.SuperUser("admin"), []string{"sky", "blue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := image.FilterTags(img, tt.account)

			names := make([]string, 0, len(got))
			for _, tag := range got {
				names = append(names, tag.Name)
				assert.True(t, !tag.Hidden || tag.User == sec.AccountID(tt.account), "hidden tag of another user leaked")
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestFilterTags_NoVisibleTagsIsEmpty(t *testing.T) {
	img := &image.Image{Tags: []image.Tag{{Name: "x", Hidden: true, User: "a"}}}

	got := image.FilterTags(img, viewer("b"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

/*
TestIsVisible checks image visibility against ownership.
*/
func TestIsVisible(t *testing.T) {
	public := &image.Image{Hidden: false, Account: "a"}
	private := &image.Image{Hidden: true, Account: "a"}

	assert.True(t, image.IsVisible(public, nil))
	assert.True(t, image.IsVisible(public, viewer("b")))
	assert.True(t, image.IsVisible(private, viewer("a")))
	assert.False(t, image.IsVisible(private, viewer("b")))
	assert.False(t, image.IsVisible(private, nil))
}
