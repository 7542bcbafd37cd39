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
	"regexp"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
)

func (e SQLError) String() string {
	switch e {
	case NoRowsErr:
		return "no rows"
	case NoColumnErr:
		return "no such column"
	case NoTableErr:
		return "no such table"
	case ExistTableErr:
		return "table already exists"
	case DuplicateKeyErr:
		return "duplicate key"
	case NotNullViolationErr:
		return "not null violation"
	case CheckConstraintViolationErr:
		return "check constraint violation"
	case DataTruncatedErr:
		return "data truncated"
	default:
		return "unknown"
	}
}

// Error is a classified driver error. Column is set for DuplicateKeyErr when
// the driver reports which column collided.
type Error struct {
	Kind   SQLError
	Column string
	Err    error
}

func (e *Error) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s on column %q: %v", e.Kind, e.Column, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	pqDetailKeyRe     = regexp.MustCompile(`Key \(([^)]+)\)=`)
	mysqlDupKeyRe     = regexp.MustCompile(`for key '(?:[^'.]+\.)?([^']+)'`)
	sqliteUniqueColRe = regexp.MustCompile(`UNIQUE constraint failed: (?:\w+\.)?(\w+)`)
)

// ClassifyError wraps err into an *Error carrying its SQLError kind. nil stays
// nil and an already classified error is returned unchanged.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Kind: NoRowsErr, Err: err}
	}
	_, kind := IsSqlError(err)
	e := &Error{Kind: kind, Err: err}
	if kind == DuplicateKeyErr {
		e.Column = duplicateColumn(err)
	}
	return e
}

// KindOf returns the SQLError kind of a classified error, or UnknownErr.
func KindOf(err error) SQLError {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return UnknownErr
}

func IsNoRows(err error) bool {
	return KindOf(err) == NoRowsErr || errors.Is(err, sql.ErrNoRows)
}

func IsDuplicateKey(err error) bool {
	return KindOf(err) == DuplicateKeyErr
}

func IsSqlError(err error) (is bool, sqlErr SQLError) {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1054:
			return true, NoColumnErr
		case 1146:
			return true, NoTableErr
		case 1050:
			return true, ExistTableErr
		case 1062:
			return true, DuplicateKeyErr
		case 1048:
			return true, NotNullViolationErr
		case 3819:
			return true, CheckConstraintViolationErr
		case 1265, 1406:
			return true, DataTruncatedErr
		default:
			return true, UnknownErr
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "42703":
			return true, NoColumnErr
		case "42P01":
			return true, NoTableErr
		case "42P07":
			return true, ExistTableErr
		case "23505":
			return true, DuplicateKeyErr
		case "23502":
			return true, NotNullViolationErr
		case "23514":
			return true, CheckConstraintViolationErr
		case "22001":
			return true, DataTruncatedErr
		default:
			return true, UnknownErr
		}
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "undefined column") ||
		strings.Contains(s, "no such column") {
		return true, NoColumnErr
	}
	if strings.Contains(s, "undefined table") ||
		strings.Contains(s, "no such table") {
		return true, NoTableErr
	}
	if strings.Contains(s, "already exists") &&
		strings.Contains(s, "table") {
		return true, ExistTableErr
	}
	if strings.Contains(s, "duplicate key value") ||
		strings.Contains(s, "unique constraint failed") ||
		strings.Contains(s, "sqlstate 23505") {
		return true, DuplicateKeyErr
	}
	if strings.Contains(s, "not-null constraint") ||
		strings.Contains(s, "not null constraint failed") {
		return true, NotNullViolationErr
	}
	if strings.Contains(s, "check constraint") {
		return true, CheckConstraintViolationErr
	}
	if strings.Contains(s, "string data right truncation") ||
		strings.Contains(s, "data truncated") {
		return true, DataTruncatedErr
	}
	return false, UnknownErr
}

func duplicateColumn(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if m := pqDetailKeyRe.FindStringSubmatch(pqErr.Detail); m != nil {
			return m[1]
		}
	}
	msg := err.Error()
	if m := mysqlDupKeyRe.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	if m := sqliteUniqueColRe.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	if m := pqDetailKeyRe.FindStringSubmatch(msg); m != nil {
		return m[1]
	}
	return ""
}
