// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-image/internal/core/image"
	"github.com/taibuivan/yomira-image/internal/platform/apperr"
)

func TestCheckMimeType(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
		ok          bool
	}{
		{"image/jpeg", "image/jpeg", true},
		{"image/jpg", "image/jpg", true},
		{"IMAGE/PNG", "image/png", true},
		{"image/gif; charset=binary", "image/gif", true},
		{"image/webp", "", false},
		{"text/html", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			got, err := image.CheckMimeType(tt.contentType)

			if !tt.ok {
				require.Error(t, err)
				assert.True(t, apperr.HasCode(err, "UNSUPPORTED_MIME_TYPE"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
