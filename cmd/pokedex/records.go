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
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tomoncle/pokedex"
	"github.com/tomoncle/pokedex/pokemon"
)

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <term>",
		Short: "Show a pokemon by dex number, id or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *pokedex.App) error {
				p, err := app.Service.FindOne(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), p)
			})
		},
	}
}

type listFlags struct {
	limit  int
	offset int
}

func newListCmd() *cobra.Command {
	var flags listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pokemon ordered by dex number",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), func(app *pokedex.App) error {
				dto := pokemon.PaginationDto{Offset: &flags.offset}
				if cmd.Flags().Changed("limit") {
					dto.Limit = &flags.limit
				}
				page, err := app.Service.Browse(cmd.Context(), dto)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, p := range page.Items {
					fmt.Fprintf(out, "%4d  %-20s  %s\n", p.No, p.Name, p.ID)
				}
				fmt.Fprintf(out, "showing %d of %d (offset %d)\n", len(page.Items), page.Total, page.Offset)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&flags.limit, "limit", "l", 0, "Maximum number of results (default from configuration)")
	cmd.Flags().IntVarP(&flags.offset, "offset", "o", 0, "Number of results to skip")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a pokemon by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(app *pokedex.App) error {
				if err := app.Service.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				cmd.Printf("Deleted %s.\n", args[0])
				return nil
			})
		},
	}
}
