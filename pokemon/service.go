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

package pokemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tomoncle/pokedex/database"
	"github.com/tomoncle/pokedex/types"
	"github.com/tomoncle/pokedex/utils"
	"github.com/uptrace/bun"
)

// Store is the persistence the service needs. repository.Repository[Pokemon]
// satisfies it.
type Store interface {
	FindBy(ctx context.Context, column string, value any) (*Pokemon, error)
	Window(ctx context.Context, page *types.PageRequest) ([]*Pokemon, error)
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[Pokemon], error)
	Create(ctx context.Context, entity ...*Pokemon) error
	UpdateColumns(ctx context.Context, id any, values map[string]any) (int64, error)
	Delete(ctx context.Context, id any) (int64, error)

	CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*Pokemon) error
	UpsertWithTx(ctx context.Context, tx bun.IDB, fields []string, duplicateKeys []string, entity ...*Pokemon) error
	DeleteAllWithTx(ctx context.Context, tx bun.IDB) (int64, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.IDB) error) error
}

// SeedOptions controls how Seed treats rows already in the store.
type SeedOptions struct {
	// Replace deletes every stored record before inserting.
	Replace bool
	// Upsert overwrites records whose dex number already exists instead of
	// failing on them.
	Upsert bool
}

type Service struct {
	store        Store
	defaultLimit int
	log          *utils.Logger
	now          func() time.Time
}

// NewService builds the record service. defaultLimit is the page size used
// when a listing request carries no usable limit and must be positive.
func NewService(store Store, defaultLimit int) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("pokemon store cannot be nil")
	}
	if defaultLimit < 1 {
		return nil, fmt.Errorf("default limit must be a positive integer, got %d", defaultLimit)
	}
	return &Service{
		store:        store,
		defaultLimit: defaultLimit,
		log:          utils.NewLogger("POKEMON"),
		now:          func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) DefaultLimit() int {
	return s.defaultLimit
}

// Create stores a new record with its name lower-cased.
func (s *Service) Create(ctx context.Context, dto CreatePokemonDto) (*Pokemon, error) {
	p := s.newPokemon(dto)
	if err := s.store.Create(ctx, p); err != nil {
		return nil, s.translateWriteError(err, "create", map[string]any{
			columnNo:   p.No,
			columnName: p.Name,
		})
	}
	s.log.WithFields(map[string]interface{}{"id": p.ID, "no": p.No}).Debugf("created pokemon %s", p.Name)
	return p, nil
}

// FindAll returns one page of records ordered by ascending dex number, without
// the revision field.
func (s *Service) FindAll(ctx context.Context, dto PaginationDto) ([]*Pokemon, error) {
	return s.store.Window(ctx, s.pageRequest(dto))
}

// Browse is FindAll plus the total number of stored records.
func (s *Service) Browse(ctx context.Context, dto PaginationDto) (*types.Pagination[Pokemon], error) {
	return s.store.Page(ctx, s.pageRequest(dto))
}

func (s *Service) pageRequest(dto PaginationDto) *types.PageRequest {
	limit := s.defaultLimit
	if dto.Limit != nil && *dto.Limit > 0 {
		limit = *dto.Limit
	}
	offset := 0
	if dto.Offset != nil && *dto.Offset > 0 {
		offset = *dto.Offset
	}
	return types.NewPageRequestWithOrders(offset, limit, columnNo+" ASC").Exclude(columnVersion)
}

// FindOne resolves term as a dex number, then as an id, then as a name. The
// first lookup that finds a record wins.
func (s *Service) FindOne(ctx context.Context, term string) (*Pokemon, error) {
	if no, ok := parseDexNumber(term); ok {
		p, err := s.lookup(ctx, columnNo, no)
		if p != nil || err != nil {
			return p, err
		}
	}
	if id, ok := parseID(term); ok {
		p, err := s.lookup(ctx, columnID, id)
		if p != nil || err != nil {
			return p, err
		}
	}
	p, err := s.lookup(ctx, columnName, strings.ToLower(strings.TrimSpace(term)))
	if p != nil || err != nil {
		return p, err
	}
	return nil, &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("Pokemon with id, name or no %q not found", term),
	}
}

func (s *Service) lookup(ctx context.Context, column string, value any) (*Pokemon, error) {
	p, err := s.store.FindBy(ctx, column, value)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return p, err
}

// Update applies the partial dto to the record term resolves to. The record
// returned is the one read before the write, so it does not show the patch.
func (s *Service) Update(ctx context.Context, term string, dto UpdatePokemonDto) (*Pokemon, error) {
	current, err := s.FindOne(ctx, term)
	if err != nil {
		return nil, err
	}
	snapshot := current.clone()

	values := make(map[string]any, 5)
	candidate := make(map[string]any, 2)
	if dto.Name != nil {
		name := strings.ToLower(*dto.Name)
		values[columnName] = name
		candidate[columnName] = name
	}
	if dto.No != nil {
		values[columnNo] = *dto.No
		candidate[columnNo] = *dto.No
	}
	if len(dto.Attributes) > 0 {
		values[columnAttributes] = current.Attributes.Merge(dto.Attributes)
	}
	if len(values) == 0 {
		return snapshot, nil
	}
	values[columnVersion] = bun.SafeQuery("? + 1", bun.Ident(columnVersion))
	values[columnUpdatedAt] = s.now()

	if _, err := s.store.UpdateColumns(ctx, current.ID, values); err != nil {
		return nil, s.translateWriteError(err, "update", candidate)
	}
	return snapshot, nil
}

// Remove deletes the record with the given id.
func (s *Service) Remove(ctx context.Context, id string) error {
	if canonical, ok := parseID(id); ok {
		id = canonical
	}
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return &Error{
			Kind:    KindNotFound,
			Message: fmt.Sprintf("Pokemon with id %q does not exist", id),
		}
	}
	s.log.WithField("id", id).Debug("removed pokemon")
	return nil
}

// Seed inserts dtos in a single transaction and reports how many records were
// written.
func (s *Service) Seed(ctx context.Context, dtos []CreatePokemonDto, opts SeedOptions) (int, error) {
	pokemons := make([]*Pokemon, 0, len(dtos))
	for _, dto := range dtos {
		pokemons = append(pokemons, s.newPokemon(dto))
	}

	err := s.store.RunInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		if opts.Replace {
			deleted, err := s.store.DeleteAllWithTx(ctx, tx)
			if err != nil {
				return err
			}
			s.log.Infof("seed removed %d existing pokemon", deleted)
		}
		if opts.Upsert {
			fields := []string{columnName, columnAttributes, columnUpdatedAt}
			return s.store.UpsertWithTx(ctx, tx, fields, []string{columnNo}, pokemons...)
		}
		return s.store.CreateWithTx(ctx, tx, pokemons...)
	})
	if err != nil {
		return 0, s.translateWriteError(err, "seed", nil)
	}
	s.log.Infof("seeded %d pokemon", len(pokemons))
	return len(pokemons), nil
}

func (s *Service) newPokemon(dto CreatePokemonDto) *Pokemon {
	now := s.now()
	version := 0
	p := &Pokemon{
		ID:        uuid.NewString(),
		No:        dto.No,
		Name:      strings.ToLower(dto.Name),
		Version:   &version,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if dto.Attributes != nil {
		p.Attributes = dto.Attributes.Merge(nil)
	}
	return p
}

// translateWriteError maps a failed write onto a service error. candidate
// holds the unique fields the write tried to store.
func (s *Service) translateWriteError(err error, action string, candidate map[string]any) error {
	if database.IsDuplicateKey(err) {
		return &Error{
			Kind:    KindDuplicateKey,
			Message: duplicateMessage(err, candidate),
			Cause:   err,
		}
	}
	s.log.WithError(err).Errorf("failed to %s pokemon", action)
	return &Error{
		Kind:    KindInternal,
		Message: fmt.Sprintf("Can't %s Pokemon - check server logs", action),
		Cause:   err,
	}
}

func duplicateMessage(err error, candidate map[string]any) string {
	var dbErr *database.Error
	column := ""
	if errors.As(err, &dbErr) {
		column = dbErr.Column
	}
	keyValue := candidate
	if v, ok := candidate[column]; ok {
		keyValue = map[string]any{column: v}
	}
	if len(keyValue) == 0 {
		if column == "" {
			return "Pokemon already exists"
		}
		return fmt.Sprintf("Pokemon with duplicate %q already exists", column)
	}
	b, jsonErr := json.Marshal(keyValue)
	if jsonErr != nil {
		return "Pokemon already exists"
	}
	return fmt.Sprintf("Pokemon %s already exists", b)
}

// parseDexNumber reports whether term reads as an integral number. Surrounding
// whitespace is ignored and an empty term is not a number.
func parseDexNumber(term string) (int, bool) {
	t := strings.TrimSpace(term)
	if t == "" || strings.Contains(t, "_") {
		return 0, false
	}
	lower := strings.ToLower(t)
	if strings.HasPrefix(lower, "0x") || strings.HasPrefix(lower, "0o") || strings.HasPrefix(lower, "0b") {
		n, err := strconv.ParseInt(lower, 0, 64)
		if err != nil || n > math.MaxInt32 {
			return 0, false
		}
		return int(n), true
	}
	if strings.ContainsAny(lower, "xp") {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// parseID returns the canonical form of term when it is a record id.
func parseID(term string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(term))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
