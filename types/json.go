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

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JsonObject is a free-form JSON object stored in a single column.
type JsonObject map[string]interface{}

// Value implements driver.Valuer; an empty object is stored as "{}".
func (j JsonObject) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner. Drivers hand JSON columns over as either
// []byte or string.
func (j *JsonObject) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*j = make(JsonObject)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JsonObject", value)
	}
	if len(raw) == 0 {
		*j = make(JsonObject)
		return nil
	}
	out := make(JsonObject)
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*j = out
	return nil
}

// Merge returns a copy of j with the keys of patch laid over it.
func (j JsonObject) Merge(patch JsonObject) JsonObject {
	out := make(JsonObject, len(j)+len(patch))
	for k, v := range j {
		out[k] = v
	}
	for k, v := range patch {
		out[k] = v
	}
	return out
}
