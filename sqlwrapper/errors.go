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

package sqlwrapper

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/adbc-drivers/clickhouse-bi-go/classify"
	"github.com/adbc-drivers/clickhouse-bi-go/driverbase"
	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/go-sql-driver/mysql"
)

// ClickHouse server error codes.
const (
	chUnknownTable         int32 = 60
	chSyntaxError          int32 = 62
	chUnknownDatabase      int32 = 81
	chTimeoutExceeded      int32 = 159
	chUnknownUser          int32 = 192
	chWrongPassword        int32 = 193
	chRequiredPassword     int32 = 194
	chIPAddressNotAllowed  int32 = 195
	chQueryWasCancelled    int32 = 394
	chAccessDenied         int32 = 497
	chAuthenticationFailed int32 = 516
)

// MySQL server error numbers.
const (
	myDBAccessDenied    uint16 = 1044
	myAccessDenied      uint16 = 1045
	myBadDB             uint16 = 1049
	myParseError        uint16 = 1064
	myTableAccessDenied uint16 = 1142
	myAccessDeniedNoPwd uint16 = 1698
)

// ErrorInspector maps clickhouse-go and MySQL errors to ADBC statuses.
type ErrorInspector struct{}

func (ErrorInspector) InspectError(err error, defaultStatus adbc.Status) driverbase.ErrorInfo {
	info := driverbase.ErrorInfo{Status: defaultStatus}

	var chErr *clickhouse.Exception
	var myErr *mysql.MySQLError
	switch {
	case errors.As(err, &chErr):
		info.VendorCode = chErr.Code
		switch chErr.Code {
		case chUnknownUser, chWrongPassword, chRequiredPassword, chIPAddressNotAllowed, chAuthenticationFailed:
			info.Status = adbc.StatusUnauthenticated
			info.SqlState = "28000"
		case chAccessDenied:
			info.Status = adbc.StatusUnauthorized
			info.SqlState = "42000"
		case chUnknownDatabase, chUnknownTable:
			info.Status = adbc.StatusNotFound
			info.SqlState = "42S02"
		case chSyntaxError:
			info.Status = adbc.StatusInvalidArgument
			info.SqlState = "42000"
		case chTimeoutExceeded:
			info.Status = adbc.StatusTimeout
		case chQueryWasCancelled:
			info.Status = adbc.StatusCancelled
		}
	case errors.As(err, &myErr):
		info.VendorCode = int32(myErr.Number)
		info.SqlState = string(myErr.SQLState[:])
		switch myErr.Number {
		case myAccessDenied, myAccessDeniedNoPwd:
			info.Status = adbc.StatusUnauthenticated
		case myDBAccessDenied, myTableAccessDenied:
			info.Status = adbc.StatusUnauthorized
		case myBadDB:
			info.Status = adbc.StatusNotFound
		case myParseError:
			info.Status = adbc.StatusInvalidArgument
		}
	case isTLSError(err):
		info.Status = adbc.StatusIO
		info.SqlState = "08001"
	case errors.Is(err, context.DeadlineExceeded):
		info.Status = adbc.StatusTimeout
	case errors.Is(err, context.Canceled):
		info.Status = adbc.StatusCancelled
	}
	return info
}

func isTLSError(err error) bool {
	var (
		recordErr  tls.RecordHeaderError
		alertErr   tls.AlertError
		verifyErr  *tls.CertificateVerificationError
		unknownCA  x509.UnknownAuthorityError
		hostErr    x509.HostnameError
		invalidErr x509.CertificateInvalidError
	)
	switch {
	case errors.As(err, &recordErr), errors.As(err, &alertErr), errors.As(err, &verifyErr),
		errors.As(err, &unknownCA), errors.As(err, &hostErr), errors.As(err, &invalidErr):
		return true
	}
	// clickhouse-go flattens some handshake errors into text
	return strings.Contains(err.Error(), "tls: ")
}

func isCommunicationError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET)
}

// nativeCode is the code recorded in a connection-phase driver error
// entry.  Only TLS and credential failures keep a code of their own.
func nativeCode(err error) int32 {
	var chErr *clickhouse.Exception
	var myErr *mysql.MySQLError
	switch {
	case isTLSError(err):
		return classify.NativeCodeSSL
	case errors.As(err, &chErr):
		switch chErr.Code {
		case chUnknownUser, chWrongPassword, chRequiredPassword, chIPAddressNotAllowed, chAuthenticationFailed:
			return chErr.Code
		}
	case errors.As(err, &myErr):
		switch myErr.Number {
		case myAccessDenied, myAccessDeniedNoPwd:
			return int32(myErr.Number)
		}
	case isCommunicationError(err):
		return classify.NativeCodeCommunication
	}
	return classify.NativeCodeNone
}

// connectError wraps a failure to open or verify a connection.  The entry
// message carries the driver prefix so the classifier recognizes it.
func (h *Host) connectError(err error, format string, args ...any) error {
	wrapped := h.errorHelper.WrapIO(err, format, args...)
	return &classify.DriverError{
		Entries: []classify.DriverErrorEntry{{
			Message:    h.errorHelper.Prefix() + " " + err.Error(),
			NativeCode: nativeCode(err),
		}},
		Err: wrapped,
	}
}
