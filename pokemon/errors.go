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

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindDuplicateKey
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindDuplicateKey:
		return "duplicate key"
	case KindNotFound:
		return "not found"
	default:
		return "internal"
	}
}

var (
	// ErrDuplicateKey matches any error raised because a unique field collided.
	ErrDuplicateKey = errors.New("pokemon already exists")
	// ErrNotFound matches any error raised because no record matched.
	ErrNotFound = errors.New("pokemon not found")
	// ErrInternal matches any store failure that was logged and hidden.
	ErrInternal = errors.New("pokemon store failure")
)

// Error is returned by Service for the failures callers are expected to map
// onto a response. Message is safe to show to a client; Cause is not.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrDuplicateKey:
		return e.Kind == KindDuplicateKey
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrInternal:
		return e.Kind == KindInternal
	}
	return false
}

// KindOf returns the Kind of a service error. Errors that did not come from
// Service report KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
