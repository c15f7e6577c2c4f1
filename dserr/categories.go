// This file is part of dsdecomp.
//
// dsdecomp is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// dsdecomp is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with dsdecomp.  If not, see <https://www.gnu.org/licenses/>.

package dserr

// Curated error "heads", one per terminal error condition named in the
// error-handling design. The analysis anomalies below are also returned
// as errors by a single function walk; the find-many driver recovers from
// them locally by recording the error's text as the rejected candidate's
// analysis.Outcome Reason.
const (
	// Input format errors.
	SymbolFileParse     = "failed to parse symbol file: %s"
	RelocationFileParse = "failed to parse relocation file: %s"
	DelinksFileParse    = "failed to parse delinks file: %s"
	ConfigFileParse     = "failed to parse config file: %s"

	// Structural invariant violations.
	SectionsOverlap       = "sections overlap: %s and %s"
	SectionMisaligned     = "section %s start %#08x is not aligned to %d"
	DuplicateSymbolName   = "duplicate symbol name: %s"
	RelocationCollision   = "relocation from %#08x collides with an existing one"
	FunctionOutOfSection  = "function at %#08x extends outside its section"
	SymbolLookupAmbiguous = "more than one symbol matches address %#08x"

	// Analysis anomalies (terminal unless AllowUnknownFunctions is set).
	UnknownLocalCall     = "call at %#08x into local module has no known destination function"
	NoFunctionsFound     = "no functions found in %s where a section was expected"
	WrongModuleBranch    = "branch at %#08x destination is not in the expected module"
	InvalidFunctionStart = "address %#08x is not a valid function start in %s mode"
	WalkOutOfBounds      = "analysis walk at %#08x ran past the end of known code"
	IllegalInstruction   = "illegal instruction encountered at %#08x, function rejected"
	RegisterUseBeforeDef = "instruction at %#08x reads register %s before any definition"

	// Delinking.
	UnknownDelinkSection  = "delink file references unknown section %s"
	DelinkRangeNotCovered = "delink files do not cover the full extent of section %s"
)
