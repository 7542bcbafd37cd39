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
	"encoding/json"
	"time"

	"github.com/tomoncle/pokedex/database"
	"github.com/tomoncle/pokedex/types"
	"github.com/uptrace/bun"
)

const (
	columnID         = "id"
	columnNo         = "no"
	columnName       = "name"
	columnAttributes = "attributes"
	columnVersion    = "version"
	columnUpdatedAt  = "updated_at"
)

func init() {
	database.RegisterModel(database.NewModelAdapter((*Pokemon)(nil), 10))
}

// Pokemon is a stored dex entry. Attributes holds the descriptive fields
// this package does not interpret.
type Pokemon struct {
	bun.BaseModel `bun:"table:pokemons,alias:p"`

	ID         string           `bun:"id,pk,type:varchar(36)"`
	No         int              `bun:"no,notnull,unique"`
	Name       string           `bun:"name,notnull,unique,type:varchar(128)"`
	Attributes types.JsonObject `bun:"attributes,type:json"`
	// Version is the storage revision, bumped on every update. It is nil
	// when the column was not selected.
	Version   *int      `bun:"version,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// MarshalJSON flattens Attributes next to the stored fields, which win on a
// key clash.
func (p Pokemon) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Attributes)+6)
	for k, v := range p.Attributes {
		out[k] = v
	}
	out["id"] = p.ID
	out["no"] = p.No
	out["name"] = p.Name
	out["createdAt"] = p.CreatedAt
	out["updatedAt"] = p.UpdatedAt
	if p.Version != nil {
		out["__v"] = *p.Version
	} else {
		delete(out, "__v")
	}
	return json.Marshal(out)
}

func (p *Pokemon) clone() *Pokemon {
	c := *p
	if p.Version != nil {
		v := *p.Version
		c.Version = &v
	}
	if p.Attributes != nil {
		c.Attributes = p.Attributes.Merge(nil)
	}
	return &c
}
