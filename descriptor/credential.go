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

package descriptor

import (
	"errors"
	"log/slog"
)

// AuthKind identifies how a stored credential authenticates.
type AuthKind string

const (
	AuthUsernamePassword AuthKind = "UsernamePassword"
	AuthAnonymous        AuthKind = "Anonymous"
	AuthWindows          AuthKind = "Windows"
	AuthKey              AuthKind = "Key"
	AuthOAuth            AuthKind = "OAuth"
)

// ErrUnsupportedAuthentication is joined into the error returned when a
// credential's kind is anything but AuthUsernamePassword.
var ErrUnsupportedAuthentication = errors.New("unimplemented authentication kind")

// Credential is the record selected in the host's credential store.  The
// connector only reads it.
type Credential struct {
	Kind     AuthKind
	Username string
	Password string
	// EncryptConnection is tri-state: nil means the user did not choose.
	EncryptConnection *bool
}

// LogValue keeps the password out of logs.
func (c Credential) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", string(c.Kind)),
		slog.String("username", c.Username),
	}
	if c.EncryptConnection != nil {
		attrs = append(attrs, slog.Bool("encrypt_connection", *c.EncryptConnection))
	}
	return slog.GroupValue(attrs...)
}

// Fragment is the secret-bearing half of a connection: it travels next to,
// never inside, the Descriptor.
type Fragment struct {
	UID string
	PWD string
}

const (
	FragmentKeyUID = "UID"
	FragmentKeyPWD = "PWD"
)

// Map returns the fragment in the UID/PWD key form drivers expect.
func (f Fragment) Map() map[string]string {
	return map[string]string{
		FragmentKeyUID: f.UID,
		FragmentKeyPWD: f.PWD,
	}
}

func (f Fragment) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String(FragmentKeyUID, f.UID),
		slog.String(FragmentKeyPWD, "********"),
	)
}
