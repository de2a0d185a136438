// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package image

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/yomira-image/internal/platform/database/schema"
	"github.com/taibuivan/yomira-image/internal/platform/dberr"
)

// PostgresRepository stores images in core.image with tags as a JSONB array.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var imageColumns = strings.Join(schema.CoreImage.Columns(), ", ")

func (repository *PostgresRepository) Find(context context.Context, filter QueryFilter) ([]*Image, error) {
	where := buildWhere(filter)

	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s ASC, %s ASC`,
		imageColumns, schema.CoreImage.Table, where.clause(),
		schema.CoreImage.CreatedAt, schema.CoreImage.ID,
	)
	if filter.Page.Limit > 0 {
		query += ` LIMIT ` + where.arg(filter.Page.Limit) + ` OFFSET ` + where.arg(filter.Page.Offset())
	}

	rows, err := repository.db.Query(context, query, where.args...)
	if err != nil {
		return nil, dberr.Wrap(err, "find_images")
	}
	defer rows.Close()

	images := make([]*Image, 0)
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_image")
		}
		images = append(images, img)
	}

	return images, dberr.Wrap(rows.Err(), "find_images")
}

func (repository *PostgresRepository) Count(context context.Context, filter QueryFilter) (int, error) {
	where := buildWhere(filter)
	query := fmt.Sprintf(`SELECT count(*) FROM %s %s`, schema.CoreImage.Table, where.clause())

	var total int
	err := repository.db.QueryRow(context, query, where.args...).Scan(&total)
	return total, dberr.Wrap(err, "count_images")
}

func (repository *PostgresRepository) FindOne(context context.Context, id string) (*Image, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, imageColumns, schema.CoreImage.Table, schema.CoreImage.ID)

	img, err := scanImage(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_image")
	}
	return img, nil
}

func (repository *PostgresRepository) FindFirst(context context.Context, filter QueryFilter) (*Image, error) {
	where := buildWhere(filter)
	query := fmt.Sprintf(`SELECT %s FROM %s %s ORDER BY %s ASC, %s ASC LIMIT 1`,
		imageColumns, schema.CoreImage.Table, where.clause(),
		schema.CoreImage.CreatedAt, schema.CoreImage.ID,
	)

	img, err := scanImage(repository.db.QueryRow(context, query, where.args...))
	if err != nil {
		return nil, dberr.Wrap(err, "find_first_image")
	}
	return img, nil
}

func (repository *PostgresRepository) Distinct(context context.Context, field Field, filter QueryFilter) ([]string, error) {
	query, args, err := buildDistinct(field, filter)
	if err != nil {
		return nil, err
	}

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "distinct_images")
	}

	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, dberr.Wrap(err, "distinct_images")
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (repository *PostgresRepository) Save(context context.Context, img *Image) error {
	if img.Version == 0 {
		img.Version = 1
	}
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now().UTC()
	}
	if img.Tags == nil {
		img.Tags = []Tag{}
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		schema.CoreImage.Table, imageColumns,
	)

	_, err := repository.db.Exec(context, query,
		img.ID, img.Source, img.Tags, img.BaseType, img.FileType, img.MimeType,
		img.NSFW, img.Hidden, img.Account, img.Version, img.CreatedAt,
	)
	return dberr.Wrap(err, "save_image")
}

func (repository *PostgresRepository) UpdateTags(context context.Context, img *Image, tags []Tag) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $3, %s = %s + 1 WHERE %s = $1 AND %s = $2`,
		schema.CoreImage.Table,
		schema.CoreImage.Tags, schema.CoreImage.Version, schema.CoreImage.Version,
		schema.CoreImage.ID, schema.CoreImage.Version,
	)

	cmd, err := repository.db.Exec(context, query, img.ID, img.Version, tags)
	if err != nil {
		return dberr.Wrap(err, "update_image_tags")
	}

	if cmd.RowsAffected() == 0 {
		if _, err := repository.FindOne(context, img.ID); err != nil {
			return err
		}
		return errStaleImage
	}

	img.Tags = tags
	img.Version++
	return nil
}

func (repository *PostgresRepository) Remove(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CoreImage.Table, schema.CoreImage.ID)

	cmd, err := repository.db.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "remove_image")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func scanImage(row pgx.Row) (*Image, error) {
	img := &Image{}
	err := row.Scan(
		&img.ID, &img.Source, &img.Tags, &img.BaseType, &img.FileType, &img.MimeType,
		&img.NSFW, &img.Hidden, &img.Account, &img.Version, &img.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// # SQL translation

// sqlWhere accumulates conditions and positional arguments.
type sqlWhere struct {
	conditions []string
	args       []any
}

// arg binds value and returns its placeholder.
func (where *sqlWhere) arg(value any) string {
	where.args = append(where.args, value)
	return "$" + strconv.Itoa(len(where.args))
}

func (where *sqlWhere) add(condition string) {
	where.conditions = append(where.conditions, condition)
}

// clause returns "WHERE a AND b", or "" without conditions.
func (where *sqlWhere) clause() string {
	if len(where.conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(where.conditions, " AND ")
}

// buildWhere translates filter into SQL conditions over core.image.
func buildWhere(filter QueryFilter) *sqlWhere {
	where := &sqlWhere{}
	columns := schema.CoreImage

	if filter.BaseType != "" {
		where.add(columns.BaseType + " = " + where.arg(filter.BaseType))
	}

	switch filter.NSFW {
	case NSFWExclude:
		where.add(columns.NSFW + " = FALSE")
	case NSFWOnly:
		where.add(columns.NSFW + " = TRUE")
	}

	switch filter.Hidden {
	case HiddenVisibleTo:
		if filter.Viewer == "" {
			where.add(columns.Hidden + " = FALSE")
		} else {
			where.add("(" + columns.Hidden + " = FALSE OR " + columns.Account + " = " + where.arg(filter.Viewer) + ")")
		}
	case HiddenPublicOnly:
		where.add(columns.Hidden + " = FALSE")
	case HiddenOwnOnly:
		if filter.Viewer == "" {
			where.add("FALSE")
		} else {
			where.add(columns.Hidden + " = TRUE AND " + columns.Account + " = " + where.arg(filter.Viewer))
		}
	case HiddenOnly:
		where.add(columns.Hidden + " = TRUE")
	}

	if len(filter.FileTypes) > 0 {
		where.add(columns.FileType + " = ANY(" + where.arg(filter.FileTypes) + ")")
	}

	if filter.Account != "" {
		where.add(columns.Account + " = " + where.arg(filter.Account))
	}

	if len(filter.Tags) > 0 {
		names := where.arg(filter.Tags)
		where.add(fmt.Sprintf(
			`EXISTS (SELECT 1 FROM jsonb_array_elements(%s) AS tag WHERE tag->>'%s' = ANY(%s) AND %s)`,
			columns.Tags, FieldTagName, names, tagVisibleSQL(where, "tag", filter.Viewer),
		))
	}

	return where
}

// tagVisibleSQL is the tag visibility condition for the JSONB element alias.
func tagVisibleSQL(where *sqlWhere, alias, viewer string) string {
	public := fmt.Sprintf(`(%s->>'%s')::boolean = FALSE`, alias, FieldTagHidden)
	if viewer == "" {
		return public
	}
	return fmt.Sprintf(`(%s OR %s->>'%s' = %s)`, public, alias, FieldTagUser, where.arg(viewer))
}

// buildDistinct returns the query listing distinct values of field.
func buildDistinct(field Field, filter QueryFilter) (string, []any, error) {
	where := buildWhere(filter)
	table := schema.CoreImage.Table

	switch field {
	case DistinctID:
		column := schema.CoreImage.ID
		return fmt.Sprintf(`SELECT DISTINCT %s FROM %s %s ORDER BY 1`, column, table, where.clause()), where.args, nil
	case DistinctBaseType:
		column := schema.CoreImage.BaseType
		return fmt.Sprintf(`SELECT DISTINCT %s FROM %s %s ORDER BY 1`, column, table, where.clause()), where.args, nil
	case DistinctTagName:
		where.add(tagVisibleSQL(where, "element", filter.Viewer))
		query := fmt.Sprintf(`SELECT DISTINCT element->>'%s' FROM %s CROSS JOIN LATERAL jsonb_array_elements(%s) AS element %s ORDER BY 1`,
			FieldTagName, table, schema.CoreImage.Tags, where.clause(),
		)
		return query, where.args, nil
	default:
		return "", nil, fmt.Errorf("image: unsupported distinct field %q", field)
	}
}
