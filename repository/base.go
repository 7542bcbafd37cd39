/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tomoncle/pokedex/database"
	"github.com/tomoncle/pokedex/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

const idColumn = "id"

type baseRepositoryImpl[T any] struct {
	db *bun.DB
}

// NewRepository returns a generic repository backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) valsToSlice(entity ...*T) []*T {
	entities := make([]*T, len(entity))
	copy(entities, entity)
	return entities
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	return r.FindBy(ctx, idColumn, id)
}

func (r *baseRepositoryImpl[T]) FindBy(ctx context.Context, column string, value any) (*T, error) {
	entity := new(T)
	err := r.db.NewSelect().
		Model(entity).
		Where("? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, database.ClassifyError(err)
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *types.QueryFilter) ([]*T, error) {
	entities := make([]*T, 0)
	query := r.db.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, database.ClassifyError(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) windowQuery(entities *[]*T, page *types.PageRequest) *bun.SelectQuery {
	query := r.db.NewSelect().Model(entities)
	if f := page.GetFilter(); f != nil {
		query = query.Where(f.Schema, f.Args...)
	}
	for _, col := range page.GetExcludedColumns() {
		query = query.ExcludeColumn(col)
	}
	return query
}

func (r *baseRepositoryImpl[T]) Window(ctx context.Context, page *types.PageRequest) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.windowQuery(&entities, page).
		Order(page.GetOrders()...).
		Offset(page.GetOffset()).
		Limit(page.GetLimit()).
		Scan(ctx)
	if err != nil {
		return nil, database.ClassifyError(err)
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	pagination := types.NewDefaultPagination[T](page.GetOffset(), page.GetLimit())

	var counted []*T
	total, err := r.windowQuery(&counted, page).Count(ctx)
	if err != nil {
		return nil, database.ClassifyError(err)
	}
	pagination.Total = total
	if total == 0 || page.GetOffset() >= total {
		return pagination, nil
	}

	items, err := r.Window(ctx, page)
	if err != nil {
		return nil, err
	}
	pagination.Items = items
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.CreateWithTx(ctx, r.db, entity...)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := r.valsToSlice(entity...)
	_, err := tx.NewInsert().Model(&entities).Exec(ctx)
	return database.ClassifyError(err)
}

func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error {
	return r.UpsertWithTx(ctx, r.db, fields, duplicateKeys, entity...)
}

func (r *baseRepositoryImpl[T]) UpsertWithTx(ctx context.Context, tx bun.IDB, fields []string, duplicateKeys []string, entity ...*T) error {
	if len(fields) == 0 {
		return fmt.Errorf("fields cannot be empty")
	}
	if len(entity) == 0 {
		return nil
	}

	entities := r.valsToSlice(entity...)
	insertQuery := tx.NewInsert()

	var err error
	if r.db.HasFeature(feature.InsertOnConflict) {
		err = r.upsertWithPostgresqlOrSQLite(ctx, insertQuery, fields, duplicateKeys, entities)
	} else if r.db.HasFeature(feature.InsertOnDuplicateKey) {
		err = r.upsertWithMySQL(ctx, insertQuery, fields, entities)
	} else {
		err = r.upsertFallback(ctx, tx, entities)
	}
	return database.ClassifyError(err)
}

func (r *baseRepositoryImpl[T]) upsertWithMySQL(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, entities []*T) error {
	queryArgs := make([]string, 0, len(fields))
	for _, field := range fields {
		queryArgs = append(queryArgs, fmt.Sprintf("%s = VALUES(%s)", r.quote(field), r.quote(field)))
	}
	_, err := insertQuery.
		Model(&entities).
		On("DUPLICATE KEY UPDATE " + strings.Join(queryArgs, ", ")).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertWithPostgresqlOrSQLite(ctx context.Context, insertQuery *bun.InsertQuery, fields []string, duplicateKeys []string, entities []*T) error {
	if len(duplicateKeys) == 0 {
		duplicateKeys = []string{idColumn}
	}
	keys := make([]string, len(duplicateKeys))
	for i, k := range duplicateKeys {
		keys[i] = r.quote(k)
	}
	queryArgs := make([]string, 0, len(fields))
	for _, field := range fields {
		queryArgs = append(queryArgs, fmt.Sprintf("%s = EXCLUDED.%s", r.quote(field), r.quote(field)))
	}
	_, err := insertQuery.
		Model(&entities).
		On("CONFLICT (" + strings.Join(keys, ", ") + ") DO UPDATE").
		Set(strings.Join(queryArgs, ", ")).
		Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) upsertFallback(ctx context.Context, tx bun.IDB, entities []*T) error {
	for _, entity := range entities {
		_, err := tx.NewInsert().Model(entity).Exec(ctx)
		if err != nil {
			_, updateErr := tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
			if updateErr != nil {
				return fmt.Errorf("upsert failed for entity: insert error: %v, update error: %w", err, updateErr)
			}
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) quote(ident string) string {
	return string(r.db.Formatter().AppendQuery(nil, "?", bun.Ident(ident)))
}

func (r *baseRepositoryImpl[T]) UpdateColumns(ctx context.Context, id any, values map[string]any) (int64, error) {
	if len(values) == 0 {
		return 0, nil
	}
	columns := make([]string, 0, len(values))
	for col := range values {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	query := r.db.NewUpdate().Model((*T)(nil))
	for _, col := range columns {
		query = query.Set("? = ?", bun.Ident(col), values[col])
	}
	res, err := query.Where("? = ?", bun.Ident(idColumn), id).Exec(ctx)
	if err != nil {
		return 0, database.ClassifyError(err)
	}
	n, err := res.RowsAffected()
	return n, database.ClassifyError(err)
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) (int64, error) {
	res, err := r.db.NewDelete().
		Model((*T)(nil)).
		Where("? = ?", bun.Ident(idColumn), id).
		Exec(ctx)
	if err != nil {
		return 0, database.ClassifyError(err)
	}
	n, err := res.RowsAffected()
	return n, database.ClassifyError(err)
}

func (r *baseRepositoryImpl[T]) DeleteAll(ctx context.Context) (int64, error) {
	return r.DeleteAllWithTx(ctx, r.db)
}

func (r *baseRepositoryImpl[T]) DeleteAllWithTx(ctx context.Context, tx bun.IDB) (int64, error) {
	// bun refuses a DELETE without WHERE
	res, err := tx.NewDelete().Model((*T)(nil)).Where("1 = 1").Exec(ctx)
	if err != nil {
		return 0, database.ClassifyError(err)
	}
	n, err := res.RowsAffected()
	return n, database.ClassifyError(err)
}

func (r *baseRepositoryImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
	return database.ClassifyError(err)
}
