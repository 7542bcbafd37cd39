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
	"fmt"

	"github.com/tomoncle/pokedex/types"
)

// CreatePokemonDto is a validated create payload. Any JSON key other than
// name and no ends up in Attributes.
type CreatePokemonDto struct {
	Name       string           `json:"name" yaml:"name"`
	No         int              `json:"no" yaml:"no"`
	Attributes types.JsonObject `json:"-" yaml:"attributes,omitempty"`
}

// UpdatePokemonDto is a partial payload; nil fields are left untouched and
// Attributes is merged key by key into the stored ones.
type UpdatePokemonDto struct {
	Name       *string          `json:"name,omitempty"`
	No         *int             `json:"no,omitempty"`
	Attributes types.JsonObject `json:"-"`
}

// PaginationDto selects a window of the ascending dex listing.
type PaginationDto struct {
	Limit  *int `json:"limit,omitempty"`
	Offset *int `json:"offset,omitempty"`
}

func (d *CreatePokemonDto) UnmarshalJSON(data []byte) error {
	fields, attrs, err := splitPayload(data)
	if err != nil {
		return err
	}
	var out CreatePokemonDto
	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &out.Name); err != nil {
			return fmt.Errorf("name: %w", err)
		}
	}
	if raw, ok := fields["no"]; ok {
		if err := json.Unmarshal(raw, &out.No); err != nil {
			return fmt.Errorf("no: %w", err)
		}
	}
	out.Attributes = attrs
	*d = out
	return nil
}

func (d *UpdatePokemonDto) UnmarshalJSON(data []byte) error {
	fields, attrs, err := splitPayload(data)
	if err != nil {
		return err
	}
	var out UpdatePokemonDto
	if raw, ok := fields["name"]; ok {
		if err := json.Unmarshal(raw, &out.Name); err != nil {
			return fmt.Errorf("name: %w", err)
		}
	}
	if raw, ok := fields["no"]; ok {
		if err := json.Unmarshal(raw, &out.No); err != nil {
			return fmt.Errorf("no: %w", err)
		}
	}
	out.Attributes = attrs
	*d = out
	return nil
}

// splitPayload separates the known keys from the descriptive ones. Keys the
// store owns (id, __v, timestamps) are dropped. A nested "attributes" object
// is accepted as well and merged under the top-level extras.
func splitPayload(data []byte) (map[string]json.RawMessage, types.JsonObject, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	known := make(map[string]json.RawMessage, 2)
	attrs := make(types.JsonObject)
	for k, v := range raw {
		switch k {
		case "name", "no":
			known[k] = v
		case "id", "_id", "__v", "createdAt", "updatedAt":
		case "attributes":
			var nested types.JsonObject
			if err := json.Unmarshal(v, &nested); err != nil {
				return nil, nil, fmt.Errorf("attributes: %w", err)
			}
			for nk, nv := range nested {
				if _, exists := attrs[nk]; !exists {
					attrs[nk] = nv
				}
			}
		default:
			var val interface{}
			if err := json.Unmarshal(v, &val); err != nil {
				return nil, nil, fmt.Errorf("%s: %w", k, err)
			}
			attrs[k] = val
		}
	}
	if len(attrs) == 0 {
		attrs = nil
	}
	return known, attrs, nil
}
