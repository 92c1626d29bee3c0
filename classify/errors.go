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

// Package classify maps failures reported by the driver host onto the
// credential error categories the BI host understands.
package classify

import (
	"errors"
	"fmt"
	"strings"
)

// Native error codes the driver host writes into driver error entries.
const (
	NativeCodeNone          int32 = 0
	NativeCodeSSL           int32 = 6
	NativeCodeCommunication int32 = 7
)

// DriverErrorEntry is one driver-level diagnostic record.
type DriverErrorEntry struct {
	Message    string
	NativeCode int32
}

// DriverError is a driver host failure carrying the driver's diagnostic
// records, most specific first.
type DriverError struct {
	Entries []DriverErrorEntry
	Err     error
}

func (e *DriverError) Error() string {
	if len(e.Entries) == 0 {
		if e.Err == nil {
			return "driver error"
		}
		return e.Err.Error()
	}
	msgs := make([]string, len(e.Entries))
	for i, entry := range e.Entries {
		msgs[i] = entry.Message
	}
	return strings.Join(msgs, "; ")
}

func (e *DriverError) Unwrap() error { return e.Err }

// First returns the first entry, if any.
func (e *DriverError) First() (DriverErrorEntry, bool) {
	if len(e.Entries) == 0 {
		return DriverErrorEntry{}, false
	}
	return e.Entries[0], true
}

// Kind is the closed set of classification outcomes.
type Kind int

const (
	Passthrough Kind = iota
	EncryptionNotSupported
	AccessDenied
)

func (k Kind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case EncryptionNotSupported:
		return "encryption-not-supported"
	case AccessDenied:
		return "access-denied"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	ErrEncryptionNotSupported = errors.New("encryption not supported")
	ErrAccessDenied           = errors.New("access denied")
)

// CredentialError is a classified failure.  errors.Is matches it against
// ErrEncryptionNotSupported or ErrAccessDenied according to Kind.
type CredentialError struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *CredentialError) Error() string {
	if e.Message == "" {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %s", e.sentinel(), e.Message)
}

func (e *CredentialError) Unwrap() error { return e.Err }

func (e *CredentialError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *CredentialError) sentinel() error {
	if e.Kind == AccessDenied {
		return ErrAccessDenied
	}
	return ErrEncryptionNotSupported
}
