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

// Package httpapi exposes the pokemon service over a JSON REST API.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/tomoncle/pokedex/database"
	"github.com/tomoncle/pokedex/pokemon"
	"github.com/tomoncle/pokedex/utils"
)

const maxBodyBytes = 1 << 20

// PokemonService is the part of pokemon.Service the API calls.
type PokemonService interface {
	Create(ctx context.Context, dto pokemon.CreatePokemonDto) (*pokemon.Pokemon, error)
	FindAll(ctx context.Context, dto pokemon.PaginationDto) ([]*pokemon.Pokemon, error)
	FindOne(ctx context.Context, term string) (*pokemon.Pokemon, error)
	Update(ctx context.Context, term string, dto pokemon.UpdatePokemonDto) (*pokemon.Pokemon, error)
	Remove(ctx context.Context, id string) error
}

// Options carries the optional collaborators of the API. Routes whose
// collaborator is nil answer 404.
type Options struct {
	// Seed repopulates the store and reports how many records it wrote.
	Seed func(ctx context.Context) (int, error)
	// Health reports database health for /healthz.
	Health func(ctx context.Context) *database.HealthStatus
}

type Handler struct {
	svc  PokemonService
	opts Options
	log  *utils.Logger
}

func NewHandler(svc PokemonService, opts Options) *Handler {
	return &Handler{
		svc:  svc,
		opts: opts,
		log:  utils.NewLogger("HTTP"),
	}
}

type EndpointFunc func(req *http.Request) Result

// Routes builds the router for every endpoint.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if h.opts.Health != nil {
		r.Get("/healthz", h.endpoint(h.health))
	}

	r.Route("/api/v2", func(r chi.Router) {
		r.Route("/pokemon", func(r chi.Router) {
			r.Post("/", h.endpoint(h.create))
			r.Get("/", h.endpoint(h.list))
			r.Route("/{term}", func(r chi.Router) {
				r.Get("/", h.endpoint(h.get))
				r.Patch("/", h.endpoint(h.update))
				r.Delete("/", h.endpoint(h.remove))
			})
		})
		if h.opts.Seed != nil {
			r.Get("/seed", h.endpoint(h.seed))
		}
	})

	r.NotFound(h.endpoint(func(req *http.Request) Result {
		return Err(http.StatusNotFound, fmt.Sprintf("Cannot %s %s", req.Method, req.URL.Path), "no route")
	}))
	r.MethodNotAllowed(h.endpoint(func(req *http.Request) Result {
		return Err(http.StatusMethodNotAllowed, fmt.Sprintf("Cannot %s %s", req.Method, req.URL.Path), "method not allowed")
	}))
	return r
}

// endpoint runs ep, writes its result and logs the exchange.
func (h *Handler) endpoint(ep EndpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		r := ep(req)
		r.WriteResponse(w)

		entry := h.log.WithFields(map[string]interface{}{
			"method":   req.Method,
			"path":     req.URL.Path,
			"status":   r.Status,
			"duration": time.Since(start).String(),
			"req_id":   middleware.GetReqID(req.Context()),
		})
		switch {
		case r.Status >= http.StatusInternalServerError:
			entry.Error(r.InternalMsg)
		case r.IsErr:
			entry.Info(r.InternalMsg)
		default:
			entry.Debug("handled request")
		}
	}
}

func (h *Handler) create(req *http.Request) Result {
	var dto pokemon.CreatePokemonDto
	if err := decodeBody(req, &dto); err != nil {
		return BadRequest(err.Error())
	}
	p, err := h.svc.Create(req.Context(), dto)
	if err != nil {
		return FromError(err)
	}
	return Created(p)
}

func (h *Handler) list(req *http.Request) Result {
	var dto pokemon.PaginationDto
	q := req.URL.Query()
	for key, dst := range map[string]**int{"limit": &dto.Limit, "offset": &dto.Offset} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return BadRequest(fmt.Sprintf("%s must be an integer", key))
		}
		*dst = &n
	}
	items, err := h.svc.FindAll(req.Context(), dto)
	if err != nil {
		return FromError(err)
	}
	return OK(items)
}

func (h *Handler) get(req *http.Request) Result {
	p, err := h.svc.FindOne(req.Context(), chi.URLParam(req, "term"))
	if err != nil {
		return FromError(err)
	}
	return OK(p)
}

func (h *Handler) update(req *http.Request) Result {
	var dto pokemon.UpdatePokemonDto
	if err := decodeBody(req, &dto); err != nil {
		return BadRequest(err.Error())
	}
	p, err := h.svc.Update(req.Context(), chi.URLParam(req, "term"), dto)
	if err != nil {
		return FromError(err)
	}
	return OK(p)
}

func (h *Handler) remove(req *http.Request) Result {
	raw := chi.URLParam(req, "term")
	id, err := uuid.Parse(raw)
	if err != nil {
		return BadRequest(fmt.Sprintf("%q is not a valid id", raw))
	}
	if err := h.svc.Remove(req.Context(), id.String()); err != nil {
		return FromError(err)
	}
	return NoContent()
}

func (h *Handler) seed(req *http.Request) Result {
	n, err := h.opts.Seed(req.Context())
	if err != nil {
		return FromError(err)
	}
	return OK(map[string]interface{}{"message": "Seed executed", "count": n})
}

func (h *Handler) health(req *http.Request) Result {
	status := h.opts.Health(req.Context())
	if status == nil || !status.Healthy {
		return Result{Status: http.StatusServiceUnavailable, Resp: status, InternalMsg: "database unhealthy", IsErr: true}
	}
	return OK(status)
}

func decodeBody(req *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("could not read request body")
	}
	if len(body) == 0 {
		return fmt.Errorf("request body is empty")
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed JSON in request: %v", err)
	}
	return nil
}
