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

import "errors"

// TLSMode is the encryption policy handed to the driver.
type TLSMode string

const (
	// TLSModeRequire refuses to connect without TLS.
	TLSModeRequire TLSMode = "require"
	// TLSModePrefer tries TLS first and may fall back to plaintext.
	TLSModePrefer TLSMode = "prefer"
)

// ResolveTLSMode maps the credential's tri-state encryption flag to a mode.
// Only an explicit false relaxes the policy.
func ResolveTLSMode(encrypt *bool) TLSMode {
	if encrypt != nil && !*encrypt {
		return TLSModePrefer
	}
	return TLSModeRequire
}

// ResolveCredential checks the credential kind and splits out the secret
// fragment.
func ResolveCredential(cred Credential) (Fragment, error) {
	if cred.Kind != AuthUsernamePassword {
		return Fragment{}, errors.Join(
			errorHelper.NotImplemented("unimplemented authentication kind %q, only %s is supported", cred.Kind, AuthUsernamePassword),
			ErrUnsupportedAuthentication,
		)
	}
	return Fragment{UID: cred.Username, PWD: cred.Password}, nil
}
