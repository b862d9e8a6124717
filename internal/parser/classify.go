package parser

import "strings"

// State is the builder's position in the document.
type State int

const (
	StateStart State = iota
	StateInDefaults
	StateInHeaderDescription
	StateInBackground
	StateInScenario
	StateInTestData
	StateInExpectedResult
)

var stateNames = [...]string{
	"Start", "InDefaults", "InHeaderDescription", "InBackground",
	"InScenario", "InTestData", "InExpectedResult",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// inScenario reports whether a test case is the active entity.
func (s State) inScenario() bool {
	return s == StateInScenario || s == StateInTestData || s == StateInExpectedResult
}

// Kind is the category a line falls into for a given state.
type Kind int

const (
	KindSkip Kind = iota
	KindDefaultsStart
	KindDefaultsField
	KindFeatureHeader
	KindDescription
	KindBackgroundStart
	KindScenarioStart
	KindTestDataStart
	KindExpectedResultStart
	KindDataContinuation
	KindStep
	KindTag
	// KindBlockEnd closes the current block; the same line is then
	// classified again against the enclosing state.
	KindBlockEnd
	KindUnrecognized
)

const (
	markerDefaults       = "@Feature_Defaults:"
	markerFeature        = "Feature:"
	markerBackground     = "Background:"
	markerScenario       = "Scenario:"
	markerTestData       = "@Test_Data:"
	markerExpectedResult = "@Expected_Result:"
)

var (
	stepPrefixes        = []string{"Given ", "When ", "Then ", "And ", "But "}
	descriptionPrefixes = []string{"As a", "As an", "I want", "So that", "In order"}
)

// Classify categorizes a trimmed line. Rules are checked in priority order;
// several depend on st.
func Classify(line string, st State, fields FieldSet) Kind {
	if line == "" || (strings.HasPrefix(line, "#") && !strings.Contains(line, markerDefaults)) {
		return KindSkip
	}
	if strings.Contains(line, markerDefaults) {
		return KindDefaultsStart
	}

	switch st {
	case StateInDefaults:
		return classifyDefaults(line, fields)
	case StateInHeaderDescription:
		if hasAnyPrefix(line, descriptionPrefixes) {
			return KindDescription
		}
		return KindBlockEnd
	}

	switch {
	case strings.HasPrefix(line, markerFeature):
		return KindFeatureHeader
	case strings.HasPrefix(line, markerBackground):
		return KindBackgroundStart
	case strings.HasPrefix(line, markerScenario):
		return KindScenarioStart
	}

	if st.inScenario() {
		switch {
		case strings.HasPrefix(line, markerTestData):
			return KindTestDataStart
		case strings.HasPrefix(line, markerExpectedResult):
			return KindExpectedResultStart
		}
	}

	if st == StateInTestData || st == StateInExpectedResult {
		if strings.HasPrefix(line, "@") {
			return KindBlockEnd
		}
		return KindDataContinuation
	}

	if hasAnyPrefix(line, stepPrefixes) {
		return KindStep
	}
	if strings.HasPrefix(line, "@") {
		return KindTag
	}
	return KindUnrecognized
}

// classifyDefaults handles lines inside the Feature-Defaults block. The
// block ends at a Feature: header or at a tag that does not name an
// override field.
func classifyDefaults(line string, fields FieldSet) Kind {
	if strings.HasPrefix(line, markerFeature) {
		return KindBlockEnd
	}
	if strings.HasPrefix(line, "@") {
		if strings.Contains(line, ":") && fields.Contains(tagName(line)) {
			return KindDefaultsField
		}
		return KindBlockEnd
	}
	return KindDefaultsField
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
