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

package connector

import (
	"context"

	"github.com/adbc-drivers/clickhouse-bi-go/descriptor"
)

// CredentialSource is read-only access to the credential the user selected
// in the host.
type CredentialSource interface {
	Current(ctx context.Context) (descriptor.Credential, error)
}

// StaticCredential is a CredentialSource that always returns itself.
type StaticCredential descriptor.Credential

func (s StaticCredential) Current(context.Context) (descriptor.Credential, error) {
	return descriptor.Credential(s), nil
}

// UsernamePassword is a convenience for the only supported credential kind.
func UsernamePassword(username, password string, encrypt *bool) StaticCredential {
	return StaticCredential{
		Kind:              descriptor.AuthUsernamePassword,
		Username:          username,
		Password:          password,
		EncryptConnection: encrypt,
	}
}
