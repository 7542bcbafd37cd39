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

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/tomoncle/pokedex/pokemon"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

// Result is what an endpoint produced. InternalMsg is logged and never sent.
type Result struct {
	Status      int
	Resp        interface{}
	InternalMsg string
	IsErr       bool
}

func OK(resp interface{}) Result {
	return Result{Status: http.StatusOK, Resp: resp}
}

func Created(resp interface{}) Result {
	return Result{Status: http.StatusCreated, Resp: resp}
}

func NoContent() Result {
	return Result{Status: http.StatusNoContent}
}

// Err builds an error result whose body carries userMsg.
func Err(status int, userMsg string, internalMsg string, v ...interface{}) Result {
	return Result{
		Status: status,
		Resp: ErrorResponse{
			StatusCode: status,
			Message:    userMsg,
			Error:      http.StatusText(status),
		},
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		IsErr:       true,
	}
}

func BadRequest(userMsg string) Result {
	return Err(http.StatusBadRequest, userMsg, "%s", userMsg)
}

// FromError maps a service error onto a response. Only messages of
// pokemon.Error values reach the client.
func FromError(err error) Result {
	var pe *pokemon.Error
	if !errors.As(err, &pe) {
		return Err(http.StatusInternalServerError, "Internal server error", "%v", err)
	}
	switch pe.Kind {
	case pokemon.KindDuplicateKey:
		return Err(http.StatusBadRequest, pe.Message, "%v", err)
	case pokemon.KindNotFound:
		return Err(http.StatusNotFound, pe.Message, "%s", pe.Message)
	default:
		return Err(http.StatusInternalServerError, pe.Message, "%v", pe.Cause)
	}
}

func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	w.Header().Set("X-Content-Type-Options", "nosniff")
	if r.Status == http.StatusNoContent {
		w.WriteHeader(r.Status)
		return
	}

	body, err := json.Marshal(r.Resp)
	if err != nil {
		r = Err(http.StatusInternalServerError, "Internal server error", "could not marshal response: %v", err)
		body, _ = json.Marshal(r.Resp)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Status)
	_, _ = w.Write(body)
}
