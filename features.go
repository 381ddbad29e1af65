// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package cirjson

// Each feature family is a closed enum; a configuration for that
// family is just a packed bitset, and IsEnabled is a single
// bitwise-and.

// ParserFeature toggles reader behavior.
type ParserFeature uint

const (
	ParserFeatureStrictDuplicateDetection ParserFeature = iota
	ParserFeatureAutoCloseSource
	ParserFeatureAllowScalarAsObjects // accepted but inert for CirJSON input
	ParserFeatureAllowUntypedScalars  // accepted but inert for CirJSON input
	numParserFeatures
)

// WriterFeature toggles writer behavior.
type WriterFeature uint

const (
	WriterFeatureAutoCloseTarget WriterFeature = iota
	WriterFeatureAutoCloseContent
	WriterFeatureStrictDuplicateDetection
	WriterFeatureFlushPassedToStream
	WriterFeatureWriteBigDecimalAsPlain
	WriterFeatureEscapeNonASCII
	numWriterFeatures
)

// FactoryFeature toggles behavior shared by readers and writers built
// from one Factory.
type FactoryFeature uint

const (
	FactoryFeatureCharsetDetection FactoryFeature = iota
	FactoryFeatureCanonicalizePropertyNames
	FactoryFeatureInternPropertyNames
	FactoryFeatureFailOnSymbolHashOverflow
	FactoryFeatureIncludeSourceInLocation
	numFactoryFeatures
)

// FormatFeature toggles CirJSON-format-specific opt-in behavior.
type FormatFeature uint

const (
	FormatFeatureUseFastDoubleParser FormatFeature = iota
	FormatFeatureUseFastDoubleWriter
	numFormatFeatures
)

type featureMask uint64

func maskFor[T ~uint](f T) featureMask { return featureMask(1) << featureMask(f) }

// defaultParserFeatures/defaultWriterFeatures/... are the "by-default
// enabled" masks computed once; a Builder starts from these and the
// per-instance mask drifts independently as Enable/Disable are called.
var (
	defaultParserFeatures = maskFor(ParserFeatureStrictDuplicateDetection) |
		maskFor(ParserFeatureAutoCloseSource)

	defaultWriterFeatures = maskFor(WriterFeatureAutoCloseTarget) |
		maskFor(WriterFeatureAutoCloseContent) |
		maskFor(WriterFeatureFlushPassedToStream)

	defaultFactoryFeatures = maskFor(FactoryFeatureCharsetDetection) |
		maskFor(FactoryFeatureCanonicalizePropertyNames) |
		maskFor(FactoryFeatureIncludeSourceInLocation)

	defaultFormatFeatures = maskFor(FormatFeatureUseFastDoubleParser) |
		maskFor(FormatFeatureUseFastDoubleWriter)
)

// featureSet is a packed bitset for one feature family.
type featureSet struct{ bits featureMask }

func newFeatureSet(defaults featureMask) featureSet { return featureSet{bits: defaults} }

func (fs featureSet) isEnabledMask(m featureMask) bool { return fs.bits&m != 0 }

func (fs *featureSet) enableMask(m featureMask)  { fs.bits |= m }
func (fs *featureSet) disableMask(m featureMask) { fs.bits &^= m }
func (fs *featureSet) configureMask(m featureMask, on bool) {
	if on {
		fs.enableMask(m)
	} else {
		fs.disableMask(m)
	}
}

func (fs featureSet) IsEnabled(f ParserFeature) bool   { return fs.isEnabledMask(maskFor(f)) }
func (fs featureSet) WriterEnabled(f WriterFeature) bool { return fs.isEnabledMask(maskFor(f)) }
func (fs featureSet) FactoryEnabled(f FactoryFeature) bool { return fs.isEnabledMask(maskFor(f)) }
func (fs featureSet) FormatEnabled(f FormatFeature) bool { return fs.isEnabledMask(maskFor(f)) }
