// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
)

/*
TestBuildFilter verifies the BSON translation of each filter field.
*/
func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter QueryFilter
		want   bson.D
	}{
		{
			name:   "no_restrictions",
			filter: QueryFilter{Hidden: HiddenAny, NSFW: NSFWAny},
			want:   bson.D{},
		},
		{
			name:   "single_condition_is_not_wrapped",
			filter: QueryFilter{Hidden: HiddenOnly, NSFW: NSFWAny},
			want:   bson.D{{Key: "hidden", Value: true}},
		},
		{
			name:   "visible_to_viewer",
			filter: QueryFilter{Viewer: "a"},
			want: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "nsfw", Value: false}},
				bson.D{{Key: "$or", Value: bson.A{
					bson.D{{Key: "hidden", Value: false}},
					bson.D{{Key: "hidden", Value: true}, {Key: "account", Value: "a"}},
				}}},
			}}},
		},
		{
			name:   "own_hidden_with_filetype",
			filter: QueryFilter{Viewer: "a", Hidden: HiddenOwnOnly, NSFW: NSFWOnly, FileTypes: []string{"png"}},
			want: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "nsfw", Value: true}},
				bson.D{{Key: "hidden", Value: true}, {Key: "account", Value: "a"}},
				bson.D{{Key: "fileType", Value: bson.D{{Key: "$in", Value: []string{"png"}}}}},
			}}},
		},
		{
			name:   "tags_for_viewer",
			filter: QueryFilter{Viewer: "a", Hidden: HiddenAny, NSFW: NSFWAny, Tags: []string{"sky"}},
			want: bson.D{{Key: "tags", Value: bson.D{{Key: "$elemMatch", Value: bson.D{
				{Key: "name", Value: bson.D{{Key: "$in", Value: []string{"sky"}}}},
				{Key: "$or", Value: bson.A{
					bson.D{{Key: "hidden", Value: false}},
					bson.D{{Key: "user", Value: "a"}},
				}},
			}}}}},
		},
		{
			name:   "listing_by_account",
			filter: QueryFilter{BaseType: "bg", Hidden: HiddenAny, NSFW: NSFWAny, Account: "b"},
			want: bson.D{{Key: "$and", Value: bson.A{
				bson.D{{Key: "baseType", Value: "bg"}},
				bson.D{{Key: "account", Value: "b"}},
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFilter(tt.filter))
		})
	}
}

func TestBuildTagNamePipeline(t *testing.T) {
	pipeline := buildTagNamePipeline(QueryFilter{Hidden: HiddenAny, NSFW: NSFWAny})

	assert.Len(t, pipeline, 5)
	assert.Equal(t, bson.D{{Key: "$unwind", Value: "$tags"}}, pipeline[1])
	assert.Equal(t, bson.D{{Key: "$match", Value: bson.D{{Key: "tags.hidden", Value: false}}}}, pipeline[2])
	assert.Equal(t, bson.D{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$tags.name"}}}}, pipeline[3])
}
