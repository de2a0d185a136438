// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taibuivan/yomira-image/internal/platform/dberr"
)

// CollectionImages is the mongo collection holding image documents.
const CollectionImages = "images"

// MongoRepository stores one document per image with tags embedded.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates the indexes of collection and returns a repository.
func NewMongoRepository(ctx context.Context, collection *mongo.Collection) (*MongoRepository, error) {
	repository := &MongoRepository{collection: collection}
	if err := repository.createIndexes(ctx); err != nil {
		return nil, fmt.Errorf("image: create indexes: %w", err)
	}
	return repository, nil
}

var (
	mongoSort       = bson.D{{Key: FieldCreatedAt, Value: 1}, {Key: FieldID, Value: 1}}
	errDistinctType = errors.New("image: distinct value is not a string")
)

func (repository *MongoRepository) Find(context context.Context, filter QueryFilter) ([]*Image, error) {
	findOptions := options.Find().SetSort(mongoSort)
	if filter.Page.Limit > 0 {
		findOptions.SetSkip(int64(filter.Page.Offset())).SetLimit(int64(filter.Page.Limit))
	}

	cursor, err := repository.collection.Find(context, buildFilter(filter), findOptions)
	if err != nil {
		return nil, dberr.Wrap(err, "find_images")
	}

	images := make([]*Image, 0)
	if err := cursor.All(context, &images); err != nil {
		return nil, dberr.Wrap(err, "decode_images")
	}
	return images, nil
}

func (repository *MongoRepository) Count(context context.Context, filter QueryFilter) (int, error) {
	total, err := repository.collection.CountDocuments(context, buildFilter(filter))
	if err != nil {
		return 0, dberr.Wrap(err, "count_images")
	}
	return int(total), nil
}

func (repository *MongoRepository) FindOne(context context.Context, id string) (*Image, error) {
	img := &Image{}
	err := repository.collection.FindOne(context, bson.D{{Key: FieldID, Value: id}}).Decode(img)
	if err != nil {
		return nil, dberr.Wrap(err, "find_image")
	}
	return img, nil
}

func (repository *MongoRepository) FindFirst(context context.Context, filter QueryFilter) (*Image, error) {
	img := &Image{}
	err := repository.collection.FindOne(context, buildFilter(filter), options.FindOne().SetSort(mongoSort)).Decode(img)
	if err != nil {
		return nil, dberr.Wrap(err, "find_first_image")
	}
	return img, nil
}

func (repository *MongoRepository) Distinct(context context.Context, field Field, filter QueryFilter) ([]string, error) {
	switch field {
	case DistinctID, DistinctBaseType:
		raw, err := repository.collection.Distinct(context, string(field), buildFilter(filter))
		if err != nil {
			return nil, dberr.Wrap(err, "distinct_images")
		}

		values := make([]string, 0, len(raw))
		for _, value := range raw {
			text, ok := value.(string)
			if !ok {
				return nil, dberr.Wrap(errDistinctType, "distinct_images")
			}
			values = append(values, text)
		}
		sort.Strings(values)
		return values, nil

	case DistinctTagName:
		cursor, err := repository.collection.Aggregate(context, buildTagNamePipeline(filter))
		if err != nil {
			return nil, dberr.Wrap(err, "distinct_tag_names")
		}

		var groups []struct {
			Name string `bson:"_id"`
		}
		if err := cursor.All(context, &groups); err != nil {
			return nil, dberr.Wrap(err, "decode_tag_names")
		}

		values := make([]string, 0, len(groups))
		for _, group := range groups {
			values = append(values, group.Name)
		}
		return values, nil

	default:
		return nil, fmt.Errorf("image: unsupported distinct field %q", field)
	}
}

func (repository *MongoRepository) Save(context context.Context, img *Image) error {
	if img.Version == 0 {
		img.Version = 1
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	if img.Tags == nil {
		img.Tags = []Tag{}
	}

	_, err := repository.collection.InsertOne(context, img)
	return dberr.Wrap(err, "save_image")
}

func (repository *MongoRepository) UpdateTags(context context.Context, img *Image, tags []Tag) error {
	result, err := repository.collection.UpdateOne(context,
		bson.D{
			{Key: FieldID, Value: img.ID},
			{Key: FieldVersion, Value: img.Version},
		},
		bson.D{
			{Key: "$set", Value: bson.D{{Key: FieldTags, Value: tags}}},
			{Key: "$inc", Value: bson.D{{Key: FieldVersion, Value: 1}}},
		},
	)
	if err != nil {
		return dberr.Wrap(err, "update_image_tags")
	}

	if result.MatchedCount == 0 {
		if _, err := repository.FindOne(context, img.ID); err != nil {
			return err
		}
		return errStaleImage
	}

	img.Tags = tags
	img.Version++
	return nil
}

func (repository *MongoRepository) Remove(context context.Context, id string) error {
	result, err := repository.collection.DeleteOne(context, bson.D{{Key: FieldID, Value: id}})
	if err != nil {
		return dberr.Wrap(err, "remove_image")
	}

	if result.DeletedCount == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *MongoRepository) createIndexes(ctx context.Context) error {
	_, err := repository.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: FieldID, Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: FieldBaseType, Value: 1}}},
		{Keys: bson.D{{Key: FieldAccount, Value: 1}}},
		{Keys: bson.D{{Key: FieldTags + "." + FieldTagName, Value: 1}}},
	})
	return err
}

// # BSON translation

// buildFilter translates filter into a mongo query document.
// Multiple conditions are combined with $and.
func buildFilter(filter QueryFilter) bson.D {
	var conditions []bson.D

	if filter.BaseType != "" {
		conditions = append(conditions, bson.D{{Key: FieldBaseType, Value: filter.BaseType}})
	}

	switch filter.NSFW {
	case NSFWExclude:
		conditions = append(conditions, bson.D{{Key: FieldNSFW, Value: false}})
	case NSFWOnly:
		conditions = append(conditions, bson.D{{Key: FieldNSFW, Value: true}})
	}

	switch filter.Hidden {
	case HiddenVisibleTo:
		if filter.Viewer == "" {
			conditions = append(conditions, bson.D{{Key: FieldHidden, Value: false}})
		} else {
			conditions = append(conditions, bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: FieldHidden, Value: false}},
				bson.D{{Key: FieldHidden, Value: true}, {Key: FieldAccount, Value: filter.Viewer}},
			}}})
		}
	case HiddenPublicOnly:
		conditions = append(conditions, bson.D{{Key: FieldHidden, Value: false}})
	case HiddenOwnOnly:
		conditions = append(conditions, bson.D{
			{Key: FieldHidden, Value: true},
			{Key: FieldAccount, Value: ownerOrNone(filter.Viewer)},
		})
	case HiddenOnly:
		conditions = append(conditions, bson.D{{Key: FieldHidden, Value: true}})
	}

	if len(filter.FileTypes) > 0 {
		conditions = append(conditions, bson.D{{Key: FieldFileType, Value: bson.D{{Key: "$in", Value: filter.FileTypes}}}})
	}

	if filter.Account != "" {
		conditions = append(conditions, bson.D{{Key: FieldAccount, Value: filter.Account}})
	}

	if len(filter.Tags) > 0 {
		match := bson.D{{Key: FieldTagName, Value: bson.D{{Key: "$in", Value: filter.Tags}}}}
		match = append(match, tagVisibleBSON("", filter.Viewer)...)
		conditions = append(conditions, bson.D{{Key: FieldTags, Value: bson.D{{Key: "$elemMatch", Value: match}}}})
	}

	switch len(conditions) {
	case 0:
		return bson.D{}
	case 1:
		return conditions[0]
	default:
		all := make(bson.A, len(conditions))
		for i, condition := range conditions {
			all[i] = condition
		}
		return bson.D{{Key: "$and", Value: all}}
	}
}

// tagVisibleBSON is the tag visibility condition, with field names under prefix.
func tagVisibleBSON(prefix, viewer string) bson.D {
	if viewer == "" {
		return bson.D{{Key: prefix + FieldTagHidden, Value: false}}
	}
	return bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: prefix + FieldTagHidden, Value: false}},
		bson.D{{Key: prefix + FieldTagUser, Value: viewer}},
	}}}
}

// buildTagNamePipeline lists the distinct visible tag names of matching images.
func buildTagNamePipeline(filter QueryFilter) mongo.Pipeline {
	tagPrefix := FieldTags + "."

	return mongo.Pipeline{
		{{Key: "$match", Value: buildFilter(filter)}},
		{{Key: "$unwind", Value: "$" + FieldTags}},
		{{Key: "$match", Value: tagVisibleBSON(tagPrefix, filter.Viewer)}},
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$" + tagPrefix + FieldTagName}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}

// ownerOrNone keeps an anonymous viewer from matching documents without an owner.
func ownerOrNone(viewer string) any {
	if viewer == "" {
		return bson.D{{Key: "$in", Value: bson.A{}}}
	}
	return viewer
}
