package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrInputMissing is returned when the feature file cannot be read.
var ErrInputMissing = errors.New("feature file not found")

// Parser turns feature files into Documents. A Parser holds no per-parse
// state and may be reused.
type Parser struct {
	fields FieldSet
	log    logrus.FieldLogger
}

// New returns a Parser that treats fields as override field names. A nil
// log discards diagnostics.
func New(fields FieldSet, log logrus.FieldLogger) *Parser {
	if fields == nil {
		fields = DefaultOverrideFields()
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Parser{fields: fields, log: log}
}

// Parse parses content with the default override fields.
func Parse(path string, content []byte) *Document {
	return New(nil, nil).Parse(path, content)
}

// ParseFile reads and parses path with the default override fields.
func ParseFile(path string) (*Document, error) {
	return New(nil, nil).ParseFile(path)
}

// ParseFile reads path and parses it. A read failure is reported as
// ErrInputMissing and no Document is returned.
func (p *Parser) ParseFile(path string) (*Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputMissing, path, err)
	}
	return p.Parse(path, content), nil
}

// Parse scans content once, top to bottom. Malformed lines are skipped.
func (p *Parser) Parse(path string, content []byte) *Document {
	b := &builder{
		doc: &Document{
			Path:     path,
			Defaults: map[string]string{},
		},
		fields: p.fields,
		log:    p.log.WithField("file", path),
	}

	text := strings.TrimPrefix(string(content), "\ufeff")
	for i, raw := range strings.Split(text, "\n") {
		b.feed(i+1, strings.TrimSpace(raw))
	}
	b.flush()

	b.log.WithFields(logrus.Fields{
		"test_cases": len(b.doc.TestCases),
		"defaults":   len(b.doc.Defaults),
	}).Debug("parsed feature file")
	return b.doc
}

type builder struct {
	doc    *Document
	fields FieldSet
	log    logrus.FieldLogger

	state State
	// section is the state a closed block falls back to: Start,
	// InBackground or InScenario.
	section State
	pending []string
	current *TestCase
}

// feed classifies one line and applies it. A line that closes a block is
// classified again against the enclosing section.
func (b *builder) feed(lineNo int, line string) {
	for {
		kind := Classify(line, b.state, b.fields)
		if kind != KindBlockEnd {
			b.apply(lineNo, line, kind)
			return
		}
		b.log.WithFields(logrus.Fields{
			"line":  lineNo,
			"state": b.state.String(),
		}).Debug("block closed")
		b.state = b.section
	}
}

func (b *builder) apply(lineNo int, line string, kind Kind) {
	switch kind {
	case KindSkip:
	case KindDefaultsStart:
		b.state = StateInDefaults
	case KindDefaultsField:
		b.addDefault(lineNo, line)
	case KindFeatureHeader:
		b.startFeature(line)
	case KindDescription:
		b.doc.Description = appendJoined(b.doc.Description, line, " ")
	case KindBackgroundStart:
		b.section, b.state = StateInBackground, StateInBackground
	case KindScenarioStart:
		b.startScenario(line)
	case KindTestDataStart:
		b.state = StateInTestData
	case KindExpectedResultStart:
		b.state = StateInExpectedResult
	case KindDataContinuation:
		b.addData(line)
	case KindStep:
		b.addStep(lineNo, line)
	case KindTag:
		b.pending = append(b.pending, ExtractTags(line)...)
	default:
		b.log.WithFields(logrus.Fields{
			"line":  lineNo,
			"state": b.state.String(),
		}).Debug("ignoring unrecognized line")
	}
}

func (b *builder) addDefault(lineNo int, line string) {
	var key, value string
	if strings.HasPrefix(line, "@") {
		var ok bool
		if key, value, ok = InterpretOverride(line); !ok {
			return
		}
	} else {
		k, v, found := strings.Cut(line, ":")
		if !found {
			b.log.WithField("line", lineNo).Debug("ignoring defaults line without a colon")
			return
		}
		key, value = Normalize(strings.TrimSpace(k)), Normalize(strings.TrimSpace(v))
	}
	if key == "" {
		return
	}
	b.doc.Defaults[key] = value
}

// startFeature takes every pending token as a document label, Key:Value
// tokens included. Defaults only come from the Feature-Defaults block. A
// repeated header replaces the name, labels and description.
func (b *builder) startFeature(line string) {
	b.doc.Name = strings.TrimSpace(strings.TrimPrefix(line, markerFeature))
	b.doc.Labels = b.pending
	b.doc.Description = ""
	b.pending = nil
	b.state = StateInHeaderDescription
}

func (b *builder) startScenario(line string) {
	b.flush()
	labels, overrides := partitionTags(b.pending)
	b.pending = nil
	b.current = &TestCase{
		Name:      strings.TrimSpace(strings.TrimPrefix(line, markerScenario)),
		Labels:    labels,
		Overrides: overrides,
	}
	b.section, b.state = StateInScenario, StateInScenario
}

func (b *builder) addData(line string) {
	if b.current == nil {
		return
	}
	text := strings.TrimLeft(line, "- ")
	switch b.state {
	case StateInTestData:
		b.current.TestData = appendJoined(b.current.TestData, text, "\n")
	case StateInExpectedResult:
		b.current.ExpectedResult = appendJoined(b.current.ExpectedResult, text, " ")
	}
}

func (b *builder) addStep(lineNo int, line string) {
	switch {
	case b.state == StateInBackground:
		b.doc.BackgroundSteps = append(b.doc.BackgroundSteps, line)
	case b.state == StateInScenario && b.current != nil:
		b.current.Steps = append(b.current.Steps, line)
	default:
		b.log.WithField("line", lineNo).Debug("ignoring step outside Background or Scenario")
	}
}

// flush appends the in-progress test case, if any.
func (b *builder) flush() {
	if b.current == nil {
		return
	}
	b.doc.TestCases = append(b.doc.TestCases, *b.current)
	b.current = nil
}

func appendJoined(existing, next, sep string) string {
	if existing == "" {
		return next
	}
	return existing + sep + next
}
