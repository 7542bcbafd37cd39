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

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		kind   SQLError
		column string
	}{
		{
			name: "no rows",
			err:  fmt.Errorf("scan: %w", sql.ErrNoRows),
			kind: NoRowsErr,
		},
		{
			name:   "mysql duplicate entry",
			err:    &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '25' for key 'pokemons.no'"},
			kind:   DuplicateKeyErr,
			column: "no",
		},
		{
			name:   "postgres unique violation",
			err:    &pq.Error{Code: "23505", Message: `duplicate key value violates unique constraint "pokemons_name_key"`, Detail: "Key (name)=(pikachu) already exists."},
			kind:   DuplicateKeyErr,
			column: "name",
		},
		{
			name:   "sqlite unique constraint",
			err:    errors.New("constraint failed: UNIQUE constraint failed: pokemons.no (2067)"),
			kind:   DuplicateKeyErr,
			column: "no",
		},
		{
			name: "sqlite missing table",
			err:  errors.New("SQL logic error: no such table: pokemons (1)"),
			kind: NoTableErr,
		},
		{
			name: "postgres not null",
			err:  &pq.Error{Code: "23502"},
			kind: NotNullViolationErr,
		},
		{
			name: "mysql table exists",
			err:  &mysql.MySQLError{Number: 1050, Message: "Table 'pokemons' already exists"},
			kind: ExistTableErr,
		},
		{
			name: "unknown",
			err:  errors.New("driver: bad connection"),
			kind: UnknownErr,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := ClassifyError(c.err)
			require.Error(t, err)

			var classified *Error
			require.True(t, errors.As(err, &classified))
			assert.Equal(t, c.kind, classified.Kind)
			assert.Equal(t, c.column, classified.Column)
			assert.Equal(t, c.kind, KindOf(err))
			assert.True(t, errors.Is(err, c.err), "cause must stay reachable")
		})
	}
}

func TestClassifyError_NilAndIdempotent(t *testing.T) {
	assert.NoError(t, ClassifyError(nil))

	once := ClassifyError(sql.ErrNoRows)
	twice := ClassifyError(once)
	assert.Same(t, once, twice)
}

func TestErrorHelpers(t *testing.T) {
	assert.True(t, IsNoRows(sql.ErrNoRows))
	assert.True(t, IsNoRows(ClassifyError(sql.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("boom")))

	dup := ClassifyError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'name'"})
	assert.True(t, IsDuplicateKey(dup))
	assert.False(t, IsDuplicateKey(errors.New("duplicate")))
	assert.Equal(t, UnknownErr, KindOf(errors.New("plain")))

	assert.Contains(t, dup.Error(), `duplicate key on column "name"`)
}
