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

package types

// DefaultPageSize is used when a PageRequest carries no positive limit.
const DefaultPageSize = 10

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// PageRequest describes an offset/limit window, an optional filter, the
// ordering and the columns left out of the result.
type PageRequest struct {
	offset   int
	limit    int
	filter   *QueryFilter
	orders   []string // "no ASC", "name DESC"
	excluded []string
}

func (p *PageRequest) GetLimit() int {
	if p.limit < 1 {
		p.limit = DefaultPageSize
	}
	return p.limit
}

func (p *PageRequest) GetOffset() int {
	if p.offset < 0 {
		p.offset = 0
	}
	return p.offset
}

func (p *PageRequest) GetFilter() *QueryFilter {
	return p.filter
}

func (p *PageRequest) GetOrders() []string {
	return p.orders
}

func (p *PageRequest) GetExcludedColumns() []string {
	return p.excluded
}

// Exclude leaves the named columns out of the selected rows.
func (p *PageRequest) Exclude(columns ...string) *PageRequest {
	p.excluded = append(p.excluded, columns...)
	return p
}

// NewPageRequest constructs a PageRequest with filter and order settings.
func NewPageRequest(offset int, limit int, filter *QueryFilter, orders []string) *PageRequest {
	return &PageRequest{offset: offset, limit: limit, filter: filter, orders: orders}
}

// NewPageRequestWithOrders constructs a PageRequest with ordering only.
func NewPageRequestWithOrders(offset int, limit int, orders ...string) *PageRequest {
	return NewPageRequest(offset, limit, nil, orders)
}

// Pagination holds one window of items along with the total match count.
type Pagination[T any] struct {
	Offset int  `json:"offset"`
	Limit  int  `json:"limit"`
	Total  int  `json:"total"`
	Items  []*T `json:"items"`
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](offset int, limit int) *Pagination[T] {
	return &Pagination[T]{Offset: offset, Limit: limit, Items: make([]*T, 0)}
}
