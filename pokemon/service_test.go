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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/pokedex/database"
	"github.com/tomoncle/pokedex/repository"
	"github.com/tomoncle/pokedex/types"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func setupTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(setupTestStore(t), 3)
	require.NoError(t, err)
	return svc
}

func setupTestStore(t *testing.T) Store {
	t.Helper()
	cfg := &database.Config{
		ConnectionConfig:  *database.DefaultConnectionConfig(),
		DataMigrateConfig: database.DataMigrateConfig{EnableMigrateOnStartup: true},
	}
	cfg.ConnectionConfig.DBName = ":memory:"

	factory, err := database.Open(context.Background(), cfg, database.DefaultRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = factory.Close() })
	return repository.NewRepository[Pokemon](factory.GetDB())
}

func mustCreate(t *testing.T, svc *Service, name string, no int, attrs types.JsonObject) *Pokemon {
	t.Helper()
	p, err := svc.Create(context.Background(), CreatePokemonDto{Name: name, No: no, Attributes: attrs})
	require.NoError(t, err)
	return p
}

func TestNewService_RequiresPositiveDefaultLimit(t *testing.T) {
	_, err := NewService(&failingStore{}, 0)
	assert.Error(t, err)

	_, err = NewService(nil, 10)
	assert.Error(t, err)
}

func TestCreate(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreatePokemonDto{
		Name:       "PiKaChU",
		No:         25,
		Attributes: types.JsonObject{"type": "electric"},
	})
	require.NoError(t, err)
	assert.Equal(t, "pikachu", p.Name)
	assert.Equal(t, 25, p.No)
	assert.NotEmpty(t, p.ID)
	require.NotNil(t, p.Version)
	assert.Equal(t, 0, *p.Version)

	stored, err := svc.FindOne(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "pikachu", stored.Name)
	assert.Equal(t, "electric", stored.Attributes["type"])
}

func TestCreate_CopiesAttributes(t *testing.T) {
	svc := setupTestService(t)
	attrs := types.JsonObject{"type": "fire"}

	p, err := svc.Create(context.Background(), CreatePokemonDto{Name: "vulpix", No: 37, Attributes: attrs})
	require.NoError(t, err)

	attrs["type"] = "water"
	assert.Equal(t, "fire", p.Attributes["type"])
}

func TestCreate_DuplicateKey(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "pikachu", 25, nil)

	t.Run("same no", func(t *testing.T) {
		_, err := svc.Create(ctx, CreatePokemonDto{Name: "raichu", No: 25})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateKey))
		assert.Equal(t, KindDuplicateKey, KindOf(err))
		assert.Equal(t, `Pokemon {"no":25} already exists`, err.Error())
	})

	t.Run("same name in another case", func(t *testing.T) {
		_, err := svc.Create(ctx, CreatePokemonDto{Name: "PIKACHU", No: 26})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateKey))
		assert.Equal(t, `Pokemon {"name":"pikachu"} already exists`, err.Error())
	})

	all, err := svc.FindAll(ctx, PaginationDto{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCreate_StoreFailureIsHidden(t *testing.T) {
	boom := errors.New("connection reset by peer")
	svc, err := NewService(&failingStore{err: boom}, 10)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreatePokemonDto{Name: "mew", No: 151})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, "Can't create Pokemon - check server logs", err.Error())
	assert.NotContains(t, err.Error(), "connection reset")
}

func TestFindAll(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	for _, no := range []int{5, 1, 4, 2, 3} {
		mustCreate(t, svc, "mon-"+string(rune('a'+no)), no, nil)
	}

	numbers := func(items []*Pokemon) []int {
		out := make([]int, 0, len(items))
		for _, p := range items {
			out = append(out, p.No)
		}
		return out
	}

	t.Run("default limit", func(t *testing.T) {
		items, err := svc.FindAll(ctx, PaginationDto{})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, numbers(items))
	})

	t.Run("limit and offset", func(t *testing.T) {
		items, err := svc.FindAll(ctx, PaginationDto{Limit: intPtr(2), Offset: intPtr(2)})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 4}, numbers(items))
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		items, err := svc.FindAll(ctx, PaginationDto{Limit: intPtr(0)})
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, numbers(items))
	})

	t.Run("offset past the end", func(t *testing.T) {
		items, err := svc.FindAll(ctx, PaginationDto{Offset: intPtr(50)})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("revision omitted", func(t *testing.T) {
		items, err := svc.FindAll(ctx, PaginationDto{Limit: intPtr(1)})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Nil(t, items[0].Version)

		raw, err := json.Marshal(items[0])
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "__v")
	})

	t.Run("browse reports total", func(t *testing.T) {
		page, err := svc.Browse(ctx, PaginationDto{Limit: intPtr(2), Offset: intPtr(4)})
		require.NoError(t, err)
		assert.Equal(t, 5, page.Total)
		assert.Equal(t, []int{5}, numbers(page.Items))
	})
}

func TestFindOne(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	pikachu := mustCreate(t, svc, "pikachu", 25, nil)
	// a name that reads as a number only matches once the numeric lookup misses
	numeric := mustCreate(t, svc, "7", 1, nil)
	squirtle := mustCreate(t, svc, "squirtle", 7, nil)

	cases := []struct {
		name string
		term string
		want string
	}{
		{"by no", "25", pikachu.ID},
		{"by no with whitespace", " 25 ", pikachu.ID},
		{"by no in exponent form", "2.5e1", pikachu.ID},
		{"by id", pikachu.ID, pikachu.ID},
		{"by name", "pikachu", pikachu.ID},
		{"by name ignoring case and whitespace", "  PIKACHU ", pikachu.ID},
		{"no wins over name", "7", squirtle.ID},
		{"fraction is a name", "1.5", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p, err := svc.FindOne(ctx, c.term)
			if c.want == "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.want, p.ID)
			require.NotNil(t, p.Version)
		})
	}

	require.NoError(t, svc.Remove(ctx, squirtle.ID))
	p, err := svc.FindOne(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, numeric.ID, p.ID)

	_, err = svc.FindOne(ctx, "missingno")
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, `Pokemon with id, name or no "missingno" not found`, err.Error())
}

func TestUpdate(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "pikachu", 25, types.JsonObject{"type": "electric"})

	before, err := svc.Update(ctx, "25", UpdatePokemonDto{
		Name:       strPtr("Raichu"),
		Attributes: types.JsonObject{"evolved": true},
	})
	require.NoError(t, err)
	// the returned record is the one read before the write
	assert.Equal(t, created.ID, before.ID)
	assert.Equal(t, "pikachu", before.Name)
	require.NotNil(t, before.Version)
	assert.Equal(t, 0, *before.Version)
	assert.NotContains(t, before.Attributes, "evolved")

	after, err := svc.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "raichu", after.Name)
	assert.Equal(t, 25, after.No)
	assert.Equal(t, "electric", after.Attributes["type"])
	assert.Equal(t, true, after.Attributes["evolved"])
	require.NotNil(t, after.Version)
	assert.Equal(t, 1, *after.Version)

	_, err = svc.FindOne(ctx, "pikachu")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdate_EmptyPatchWritesNothing(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	created := mustCreate(t, svc, "eevee", 133, nil)

	_, err := svc.Update(ctx, "eevee", UpdatePokemonDto{})
	require.NoError(t, err)

	after, err := svc.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *after.Version)
}

func TestUpdate_NotFound(t *testing.T) {
	store := &countingStore{Store: setupTestStore(t)}
	svc, err := NewService(store, 3)
	require.NoError(t, err)
	ctx := context.Background()
	mustCreate(t, svc, "pikachu", 25, nil)

	_, err = svc.Update(ctx, "mewtwo", UpdatePokemonDto{No: intPtr(25)})
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, `Pokemon with id, name or no "mewtwo" not found`, err.Error())
	assert.Zero(t, store.updates, "no write is attempted")

	_, err = svc.Update(ctx, "pikachu", UpdatePokemonDto{No: intPtr(26)})
	require.NoError(t, err)
	assert.Equal(t, 1, store.updates)
}

func TestUpdate_DuplicateKey(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "bulbasaur", 1, nil)
	mustCreate(t, svc, "ivysaur", 2, nil)

	_, err := svc.Update(ctx, "ivysaur", UpdatePokemonDto{No: intPtr(1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateKey))
	assert.Equal(t, `Pokemon {"no":1} already exists`, err.Error())

	p, err := svc.FindOne(ctx, "ivysaur")
	require.NoError(t, err)
	assert.Equal(t, 2, p.No)
	assert.Equal(t, 0, *p.Version)
}

func TestRemove(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "ditto", 132, nil)

	require.NoError(t, svc.Remove(ctx, p.ID))

	_, err := svc.FindOne(ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = svc.Remove(ctx, p.ID)
	require.Error(t, err)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, `Pokemon with id "`+p.ID+`" does not exist`, err.Error())
}

func TestRemove_AcceptsAnyIDCase(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	p := mustCreate(t, svc, "mew", 151, nil)

	require.NoError(t, svc.Remove(ctx, " "+strings.ToUpper(p.ID)+" "))

	_, err := svc.FindOne(ctx, p.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSeed(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	mustCreate(t, svc, "missingno", 0, nil)

	dtos := []CreatePokemonDto{
		{Name: "Bulbasaur", No: 1, Attributes: types.JsonObject{"type": "grass"}},
		{Name: "Ivysaur", No: 2},
		{Name: "Venusaur", No: 3},
	}

	t.Run("replace", func(t *testing.T) {
		n, err := svc.Seed(ctx, dtos, SeedOptions{Replace: true})
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		page, err := svc.Browse(ctx, PaginationDto{})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Total)
		assert.Equal(t, "bulbasaur", page.Items[0].Name)
	})

	t.Run("duplicate without upsert rolls back", func(t *testing.T) {
		_, err := svc.Seed(ctx, []CreatePokemonDto{{Name: "charmander", No: 4}, {Name: "other", No: 1}}, SeedOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateKey))

		_, err = svc.FindOne(ctx, "charmander")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("upsert", func(t *testing.T) {
		n, err := svc.Seed(ctx, []CreatePokemonDto{{Name: "BULBA", No: 1}, {Name: "charmander", No: 4}}, SeedOptions{Upsert: true})
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		p, err := svc.FindOne(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "bulba", p.Name)

		page, err := svc.Browse(ctx, PaginationDto{Limit: intPtr(10)})
		require.NoError(t, err)
		assert.Equal(t, 4, page.Total)
	})
}

func TestParseDexNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"25", 25, true},
		{"  25\t", 25, true},
		{"025", 25, true},
		{"-3", -3, true},
		{"2.0", 2, true},
		{"1e2", 100, true},
		{"0x19", 25, true},
		{"", 0, false},
		{"   ", 0, false},
		{"2.5", 0, false},
		{"pikachu", 0, false},
		{"NaN", 0, false},
		{"Infinity", 0, false},
		{"1_000", 0, false},
		{"0x1p4", 0, false},
	}
	for _, c := range cases {
		got, ok := parseDexNumber(c.in)
		assert.Equal(t, c.ok, ok, "input %q", c.in)
		if c.ok {
			assert.Equal(t, c.want, got, "input %q", c.in)
		}
	}
}

// countingStore records how many updates reach the store.
type countingStore struct {
	Store
	updates int
}

func (c *countingStore) UpdateColumns(ctx context.Context, id any, values map[string]any) (int64, error) {
	c.updates++
	return c.Store.UpdateColumns(ctx, id, values)
}

// failingStore fails every create.
type failingStore struct {
	Store
	err error
}

func (f *failingStore) Create(context.Context, ...*Pokemon) error {
	return database.ClassifyError(f.err)
}
