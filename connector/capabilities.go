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

import "maps"

// SQLGetInfo codes the connector overrides.
const (
	InfoConvertFunctions    uint16 = 48
	InfoConvertWChar        uint16 = 122
	InfoConvertWLongVarChar uint16 = 125
	InfoConvertWVarChar     uint16 = 126
)

// SQL_CVT_* bits for the SQL_CONVERT_* info codes.
const (
	CvtChar         uint32 = 0x00000001
	CvtVarChar      uint32 = 0x00000100
	CvtLongVarChar  uint32 = 0x00000200
	CvtWChar        uint32 = 0x00200000
	CvtWLongVarChar uint32 = 0x00400000
	CvtWVarChar     uint32 = 0x00800000
	CvtGUID         uint32 = 0x01000000

	// FnCvtCast is SQL_FN_CVT_CAST.
	FnCvtCast uint32 = 0x00000002
)

const (
	// SQLConformanceSQL92Full is SQL_SC_SQL92_FULL.
	SQLConformanceSQL92Full uint32 = 8
	// GroupByContainsSelect is SQL_GB_GROUP_BY_CONTAINS_SELECT.
	GroupByContainsSelect uint32 = 2
)

// LimitClauseKind is the row-limiting syntax the host should generate.
type LimitClauseKind int

const (
	LimitClauseNone LimitClauseKind = iota
	LimitClauseTop
	LimitClauseLimit
	LimitClauseLimitOffset
	LimitClauseAnsiSQL2008
)

// Capabilities are declared to the host when a data source is opened.  They
// are static; nothing is probed from the server.
type Capabilities struct {
	SQLConformance                uint32
	GroupBy                       uint32
	FractionalSecondsScale        int
	SupportsNumericLiterals       bool
	SupportsStringLiterals        bool
	SupportsOdbcDateLiterals      bool
	SupportsOdbcTimeLiterals      bool
	SupportsOdbcTimestampLiterals bool
	LimitClause                   LimitClauseKind
	GetInfo                       map[uint16]uint32
}

// wideTextConversions is every text type a wide text value converts to.
const wideTextConversions = CvtChar | CvtVarChar | CvtLongVarChar | CvtWChar | CvtWLongVarChar | CvtWVarChar

// DefaultCapabilities returns the declarations for ClickHouse.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		SQLConformance:                SQLConformanceSQL92Full,
		GroupBy:                       GroupByContainsSelect,
		FractionalSecondsScale:        3,
		SupportsNumericLiterals:       true,
		SupportsStringLiterals:        true,
		SupportsOdbcDateLiterals:      true,
		SupportsOdbcTimeLiterals:      true,
		SupportsOdbcTimestampLiterals: true,
		LimitClause:                   LimitClauseLimitOffset,
		GetInfo: map[uint16]uint32{
			InfoConvertFunctions:    FnCvtCast,
			InfoConvertWChar:        wideTextConversions,
			InfoConvertWLongVarChar: wideTextConversions,
			InfoConvertWVarChar:     wideTextConversions | CvtGUID,
		},
	}
}

// Info looks up an SQLGetInfo override.
func (c Capabilities) Info(code uint16) (uint32, bool) {
	v, ok := c.GetInfo[code]
	return v, ok
}

// Clone returns a copy that does not share the GetInfo map.
func (c Capabilities) Clone() Capabilities {
	c.GetInfo = maps.Clone(c.GetInfo)
	return c
}
