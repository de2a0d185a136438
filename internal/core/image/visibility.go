// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"github.com/taibuivan/yomira-image/internal/platform/sec"
	"github.com/taibuivan/yomira-image/pkg/slice"
)

// IsVisible reports whether account may see img: it is public or account owns it.
func IsVisible(img *Image, account *sec.Account) bool {
	return !img.Hidden || account.Owns(img.Account)
}

// TagVisible reports whether account may see tag: it is public or account added it.
func TagVisible(tag Tag, account *sec.Account) bool {
	return !tag.Hidden || account.Owns(tag.User)
}

// FilterTags returns the tags of img that account may see, in their original order.
// The result is never nil.
func FilterTags(img *Image, account *sec.Account) []Tag {
	return slice.Filter(img.Tags, func(tag Tag) bool {
		return TagVisible(tag, account)
	})
}
