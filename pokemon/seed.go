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
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedFile is the on-disk layout read by LoadSeedFile:
//
//	pokemon:
//	  - name: bulbasaur
//	    no: 1
//	    attributes:
//	      type: grass
type SeedFile struct {
	Pokemon []CreatePokemonDto `yaml:"pokemon"`
}

// LoadSeedFile reads seed records from a YAML file.
func LoadSeedFile(path string) ([]CreatePokemonDto, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return DecodeSeed(f)
}

// DecodeSeed reads seed records from r. Entries without a name or with a
// non-positive dex number are rejected, as are repeated numbers or names.
func DecodeSeed(r io.Reader) ([]CreatePokemonDto, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	seenNo := make(map[int]int, len(file.Pokemon))
	seenName := make(map[string]int, len(file.Pokemon))
	for i, dto := range file.Pokemon {
		if dto.Name == "" {
			return nil, fmt.Errorf("seed entry %d: name is required", i)
		}
		if dto.No < 1 {
			return nil, fmt.Errorf("seed entry %d (%s): no must be positive", i, dto.Name)
		}
		if j, ok := seenNo[dto.No]; ok {
			return nil, fmt.Errorf("seed entry %d (%s): no %d already used by entry %d", i, dto.Name, dto.No, j)
		}
		name := strings.ToLower(dto.Name)
		if j, ok := seenName[name]; ok {
			return nil, fmt.Errorf("seed entry %d: name %q already used by entry %d", i, dto.Name, j)
		}
		seenNo[dto.No] = i
		seenName[name] = i
	}
	return file.Pokemon, nil
}
