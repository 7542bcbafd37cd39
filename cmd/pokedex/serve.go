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
	"github.com/spf13/cobra"
	"github.com/tomoncle/pokedex"
)

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(app *pokedex.App) error {
				if addr != "" {
					app.Config.HTTP.Addr = addr
				}
				return app.Serve(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides http.addr")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(app *pokedex.App) error {
				if err := app.Migrate(cmd.Context()); err != nil {
					return err
				}
				cmd.Println("Migrations applied.")
				return nil
			})
		},
	}
}

func newSeedCmd() *cobra.Command {
	var upsert bool

	cmd := &cobra.Command{
		Use:   "seed [file]",
		Short: "Load pokemon from a YAML seed file",
		Long:  "Loads pokemon from the given YAML file, or from seed.file in the configuration.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) > 0 {
				path = args[0]
			}
			return withApp(cmd.Context(), func(app *pokedex.App) error {
				if cmd.Flags().Changed("upsert") {
					app.Config.Seed.Upsert = upsert
				}
				n, err := app.SeedFromFile(cmd.Context(), path)
				if err != nil {
					return err
				}
				cmd.Printf("Seeded %d pokemon.\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&upsert, "upsert", false, "Overwrite existing dex numbers instead of clearing the table")
	return cmd
}
