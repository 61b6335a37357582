// elevate: a workflow tool for lifting aligned sequencing reads
// from one reference genome to another.
// Copyright (c) 2023-2026 biolift bv.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/biolift/elevate/blob/master/LICENSE.txt>.

package utils

const (
	// ProgramName is "elevate"
	ProgramName = "elevate"

	// ProgramVersion is the version of the elevate binary
	ProgramVersion = "1.0.1"

	// ProgramURL is the repository for the elevate source code
	ProgramURL = "http://github.com/biolift/elevate"
)
