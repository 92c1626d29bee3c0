// Copyright (c) 2025 ADBC Drivers Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//         http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package driverbase

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/apache/arrow-adbc/go/adbc"
)

// Shared is a handle that callers take turns using until it is closed.
// The catalog keeps its connection pool in one so that navigation after
// Close fails cleanly instead of reaching a closed *sql.DB.
type Shared[T any] struct {
	mu     sync.Mutex
	name   string
	handle *T
	closer io.Closer
}

// NewShared wraps handle.  name appears in errors; closer releases the
// handle and is called at most once.
func NewShared[T any](name string, handle *T, closer io.Closer) *Shared[T] {
	return &Shared[T]{name: name, handle: handle, closer: closer}
}

// Closed reports whether Close has been called.
func (sh *Shared[T]) Closed() bool {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.handle == nil
}

// Close releases the handle.  Later calls return nil, even when the first
// one failed.
func (sh *Shared[T]) Close() error {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if sh.handle == nil {
		return nil
	}
	closer := sh.closer
	sh.handle, sh.closer = nil, nil
	if err := closer.Close(); err != nil {
		return errors.Join(adbc.Error{
			Code: adbc.StatusIO,
			Msg:  fmt.Sprintf("failed to close %s: %s", sh.name, err),
		}, err)
	}
	return nil
}

// Run calls fn with the handle, holding the lock for the duration.
func (sh *Shared[T]) Run(fn func(*T) error) error {
	_, err := Use(sh, func(h *T) (struct{}, error) {
		return struct{}{}, fn(h)
	})
	return err
}

// Use is Run for closures that produce a value.
func Use[T, R any](sh *Shared[T], fn func(*T) (R, error)) (R, error) {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if sh.handle == nil {
		var zero R
		return zero, adbc.Error{
			Code: adbc.StatusInvalidState,
			Msg:  fmt.Sprintf("%s is already closed", sh.name),
		}
	}
	return fn(sh.handle)
}
