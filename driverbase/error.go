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

	"github.com/apache/arrow-adbc/go/adbc"
)

// ErrorInfo is what an ErrorInspector learned from a driver error.
type ErrorInfo struct {
	Status     adbc.Status
	SqlState   string
	VendorCode int32
	Details    []adbc.ErrorDetail
}

// ErrorInspector maps a database driver's own error types to ADBC terms.
// A zero Status in the result means the default status applies.
type ErrorInspector interface {
	InspectError(err error, defaultStatus adbc.Status) ErrorInfo
}

// ErrorHelper builds adbc.Errors whose messages start with the driver name
// in brackets, e.g. `[clickhouse] database "sales" does not exist`.
type ErrorHelper struct {
	DriverName     string
	ErrorInspector ErrorInspector
}

// Prefix is the bracketed driver name that starts every message.
func (helper *ErrorHelper) Prefix() string {
	return "[" + helper.DriverName + "]"
}

func (helper *ErrorHelper) message(format string, args []any) string {
	return helper.Prefix() + " " + fmt.Sprintf(format, args...)
}

func (helper *ErrorHelper) Errorf(code adbc.Status, format string, args ...any) error {
	return adbc.Error{Code: code, Msg: helper.message(format, args)}
}

func (helper *ErrorHelper) InvalidArgument(format string, args ...any) error {
	return helper.Errorf(adbc.StatusInvalidArgument, format, args...)
}

func (helper *ErrorHelper) NotImplemented(format string, args ...any) error {
	return helper.Errorf(adbc.StatusNotImplemented, format, args...)
}

func (helper *ErrorHelper) NotFound(format string, args ...any) error {
	return helper.Errorf(adbc.StatusNotFound, format, args...)
}

func (helper *ErrorHelper) Internal(format string, args ...any) error {
	return helper.Errorf(adbc.StatusInternal, format, args...)
}

func (helper *ErrorHelper) Unauthenticated(format string, args ...any) error {
	return helper.Errorf(adbc.StatusUnauthenticated, format, args...)
}

// Wrap turns a driver error into an adbc.Error, using the inspector for
// status, SQLSTATE and vendor code, and joins it with err so errors.As
// still reaches the driver's types.  nil stays nil, and errors that
// already carry an adbc.Error are returned unchanged.
func (helper *ErrorHelper) Wrap(err error, defaultStatus adbc.Status, format string, args ...any) error {
	if err == nil {
		return nil
	}
	if errors.As(err, new(adbc.Error)) {
		return err
	}

	info := helper.inspect(err, defaultStatus)
	wrapped := adbc.Error{
		Code:       info.Status,
		Msg:        fmt.Sprintf("%s: %v", helper.message(format, args), err),
		VendorCode: info.VendorCode,
		Details:    info.Details,
	}
	if len(info.SqlState) == len(wrapped.SqlState) {
		copy(wrapped.SqlState[:], info.SqlState)
	}
	return errors.Join(wrapped, err)
}

// WrapIO is Wrap with StatusIO as the default.
func (helper *ErrorHelper) WrapIO(err error, format string, args ...any) error {
	return helper.Wrap(err, adbc.StatusIO, format, args...)
}

func (helper *ErrorHelper) inspect(err error, defaultStatus adbc.Status) ErrorInfo {
	if helper.ErrorInspector == nil {
		return ErrorInfo{Status: defaultStatus}
	}
	info := helper.ErrorInspector.InspectError(err, defaultStatus)
	if info.Status == adbc.StatusOK {
		info.Status = defaultStatus
	}
	return info
}
