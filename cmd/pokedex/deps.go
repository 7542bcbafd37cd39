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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/tomoncle/pokedex"
)

// withApp loads the configuration, opens the application and closes it once
// fn returns.
func withApp(ctx context.Context, fn func(*pokedex.App) error) error {
	app, err := pokedex.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("starting pokedex: %w", err)
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
