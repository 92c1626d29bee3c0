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

package classify

import (
	"errors"
	"strings"

	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
)

// Classifier decides the Kind of a driver host failure from its first
// driver error entry.
type Classifier struct {
	// Marker is the text the driver host writes into every entry that came
	// from the driver's own protocol layer.
	Marker string
	// LegacyParity routes every credential-shaped failure to
	// EncryptionNotSupported, matching older deployed connectors.
	LegacyParity bool
}

var errorHelper = driverbase.ErrorHelper{DriverName: descriptor.DriverName}

// New returns a Classifier using the driver's error prefix as its marker.
func New() *Classifier {
	return &Classifier{Marker: errorHelper.Prefix()}
}

// IsSSL reports whether entry describes a TLS/SSL failure.
func IsSSL(entry DriverErrorEntry) bool {
	return entry.NativeCode == NativeCodeSSL
}

func (c *Classifier) credentialShaped(entry DriverErrorEntry) bool {
	return c.Marker != "" &&
		strings.Contains(entry.Message, c.Marker) &&
		entry.NativeCode != NativeCodeNone &&
		entry.NativeCode != NativeCodeCommunication
}

// Kind classifies err without changing it.
func (c *Classifier) Kind(err error) Kind {
	var driverErr *DriverError
	if !errors.As(err, &driverErr) {
		return Passthrough
	}
	entry, ok := driverErr.First()
	if !ok || !c.credentialShaped(entry) {
		return Passthrough
	}
	if c.LegacyParity || IsSSL(entry) {
		return EncryptionNotSupported
	}
	return AccessDenied
}

// Classify returns err unchanged when it is not credential-shaped or was
// already classified.  Otherwise it returns an unauthenticated adbc.Error
// joined with a *CredentialError wrapping err.  mode is the TLS mode that
// was attempted and only shapes the message.
func (c *Classifier) Classify(err error, mode descriptor.TLSMode) error {
	if err == nil {
		return nil
	}
	var already *CredentialError
	if errors.As(err, &already) {
		return err
	}

	kind := c.Kind(err)
	if kind == Passthrough {
		return err
	}

	var driverErr *DriverError
	errors.As(err, &driverErr)
	entry, _ := driverErr.First()

	credErr := &CredentialError{Kind: kind, Message: entry.Message, Err: err}
	var hint string
	switch {
	case kind == EncryptionNotSupported && mode == descriptor.TLSModeRequire:
		hint = "; clear the encrypt connection option to allow unencrypted connections"
	case kind == AccessDenied:
		hint = "; check the username and password"
	}
	return errors.Join(errorHelper.Unauthenticated("%s%s", credErr.Error(), hint), credErr)
}
