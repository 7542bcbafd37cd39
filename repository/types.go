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

	"github.com/tomoncle/pokedex/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	// FindBy returns the single row whose column equals value.
	FindBy(ctx context.Context, column string, value any) (*T, error)

	List(ctx context.Context, filter *types.QueryFilter) ([]*T, error)

	Create(ctx context.Context, entity ...*T) error

	Upsert(ctx context.Context, fields []string, duplicateKeys []string, entity ...*T) error

	// UpdateColumns sets the given column values on the row with id and
	// reports how many rows changed. Values implementing bun.QueryAppender
	// (e.g. bun.Safe) are inlined as SQL.
	UpdateColumns(ctx context.Context, id any, values map[string]any) (int64, error)

	// Delete removes the row with id and reports how many rows were deleted.
	Delete(ctx context.Context, id any) (int64, error)

	DeleteAll(ctx context.Context) (int64, error)
}

// TransactionRepository defines operations executed within a transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error
	UpsertWithTx(ctx context.Context, tx bun.IDB, fields []string, duplicateKeys []string, entity ...*T) error
	DeleteAllWithTx(ctx context.Context, tx bun.IDB) (int64, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error
}

// PageQueryRepository defines offset windows over the entities.
type PageQueryRepository[T any] interface {
	// Window returns the rows selected by page without counting the total.
	Window(ctx context.Context, page *types.PageRequest) ([]*T, error)

	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD, pagination, and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
}
