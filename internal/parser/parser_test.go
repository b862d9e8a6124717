package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pullToRefresh = `@Feature_Defaults:
Priority: High
Apps: Mobile_App
@Platform:iOS

@Smoke
Feature: Pull to refresh
  As a user
  # a comment in the narrative
  I want to refresh the feed
  So that I see new posts

  Background:
    Given the app is open

  Scenario: Refresh shows new posts
    Given the feed has loaded
    When I pull down
    Then new posts appear
    @Test_Data:
    - account: basic
    - posts: 3
    @Expected_Result:
    - spinner shows
    - feed updates

  @Priority:Low @Regression
  Scenario: Refresh while offline
    Given the device is offline
    When I pull down
    Then an error is shown
`

func TestParse_EndToEnd(t *testing.T) {
	doc := Parse("ptr.feature", []byte(pullToRefresh))

	assert.Equal(t, "ptr.feature", doc.Path)
	assert.Equal(t, "Pull to refresh", doc.Name)
	assert.Equal(t, "As a user I want to refresh the feed So that I see new posts", doc.Description)
	assert.Equal(t, []string{"Given the app is open"}, doc.BackgroundSteps)
	assert.Equal(t, []string{"Smoke"}, doc.Labels)
	assert.Equal(t, map[string]string{
		"Priority": "High",
		"Apps":     "Mobile App",
		"Platform": "iOS",
	}, doc.Defaults)

	require.Len(t, doc.TestCases, 2)

	first := doc.TestCases[0]
	assert.Equal(t, "Refresh shows new posts", first.Name)
	assert.Equal(t, []string{"Given the feed has loaded", "When I pull down", "Then new posts appear"}, first.Steps)
	assert.Equal(t, "account: basic\nposts: 3", first.TestData)
	assert.Equal(t, "spinner shows feed updates", first.ExpectedResult)
	assert.Empty(t, first.Overrides)
	assert.Equal(t, "High", doc.FieldsFor(&first).Lookup("Priority", "Medium"))

	second := doc.TestCases[1]
	assert.Equal(t, "Refresh while offline", second.Name)
	assert.Equal(t, []string{"Regression"}, second.Labels)
	assert.Equal(t, map[string]string{"Priority": "Low"}, second.Overrides)
	assert.Equal(t, "Low", doc.FieldsFor(&second).Lookup("Priority", "Medium"))
	assert.Empty(t, second.TestData)
	assert.Empty(t, second.ExpectedResult)
}

func TestParse_ScenarioOrderPreserved(t *testing.T) {
	content := []byte(`Feature: Order
  Scenario: third
  Scenario: first
  Scenario: second
  Scenario: first
`)
	doc := Parse("order.feature", content)
	require.Len(t, doc.TestCases, 4)
	var names []string
	for _, tc := range doc.TestCases {
		names = append(names, tc.Name)
	}
	assert.Equal(t, []string{"third", "first", "second", "first"}, names)
}

func TestParse_BoundaryFlush(t *testing.T) {
	content := []byte(`Feature: Login
  @One
  Scenario: A
    Given a
    @Test_Data:
    - data a

  @Two
  Scenario: B
    Given b
    When  b happens
`)
	doc := Parse("login.feature", content)
	require.Len(t, doc.TestCases, 2)

	assert.Equal(t, []string{"One"}, doc.TestCases[0].Labels)
	assert.Equal(t, []string{"Given a"}, doc.TestCases[0].Steps)
	assert.Equal(t, "data a", doc.TestCases[0].TestData)

	assert.Equal(t, []string{"Two"}, doc.TestCases[1].Labels)
	assert.Equal(t, []string{"Given b", "When  b happens"}, doc.TestCases[1].Steps)
	assert.Empty(t, doc.TestCases[1].TestData)
}

func TestParse_TestDataJoinsWithNewline(t *testing.T) {
	content := []byte(`Feature: F
  Scenario: S
    @Test_Data:
    - a
    - b
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, "a\nb", doc.TestCases[0].TestData)
}

func TestParse_ExpectedResultJoinsWithSpace(t *testing.T) {
	content := []byte(`Feature: F
  Scenario: S
    @Expected_Result:
    - x
    - y
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, "x y", doc.TestCases[0].ExpectedResult)
}

func TestParse_DataLinesWithoutDash(t *testing.T) {
	content := []byte(`Feature: F
  Scenario: S
    @Test_Data:
    user=alice
    Given looks like a step but is data
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, "user=alice\nGiven looks like a step but is data", doc.TestCases[0].TestData)
	assert.Empty(t, doc.TestCases[0].Steps)
}

func TestParse_ExpectedResultMarkerEndsTestData(t *testing.T) {
	content := []byte(`Feature: F
  Scenario: S
    @Test_Data:
    - a
    @Expected_Result:
    - done
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, "a", doc.TestCases[0].TestData)
	assert.Equal(t, "done", doc.TestCases[0].ExpectedResult)
}

func TestParse_TestDataMarkerEndsExpectedResult(t *testing.T) {
	content := []byte(`Feature: F
  Scenario: S
    @Expected_Result:
    - done
    @Test_Data:
    - a
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, "done", doc.TestCases[0].ExpectedResult)
	assert.Equal(t, "a", doc.TestCases[0].TestData)
}

func TestParse_TagEndingExpectedResultGoesToNextScenario(t *testing.T) {
	content := []byte(`Feature: F
  Scenario: S1
    @Expected_Result:
    - done
  @Platform:Android @Nightly
  Scenario: S2
    Given something
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 2)
	assert.Equal(t, "done", doc.TestCases[0].ExpectedResult)
	assert.Empty(t, doc.TestCases[0].Labels)
	assert.Empty(t, doc.TestCases[0].Overrides)
	assert.Equal(t, []string{"Nightly"}, doc.TestCases[1].Labels)
	assert.Equal(t, map[string]string{"Platform": "Android"}, doc.TestCases[1].Overrides)
}

func TestParse_TagEndingTestDataGoesToNextScenario(t *testing.T) {
	content := []byte(`Feature: F
  Scenario: S1
    @Test_Data:
    - a
  @Smoke
  Scenario: S2
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 2)
	assert.Equal(t, "a", doc.TestCases[0].TestData)
	assert.Equal(t, []string{"Smoke"}, doc.TestCases[1].Labels)
}

func TestParse_ScenarioEndsDataBlock(t *testing.T) {
	content := []byte(`Feature: F
  Scenario: S1
    @Expected_Result:
    - done
  Scenario: S2
    Given next
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 2)
	assert.Equal(t, "done", doc.TestCases[0].ExpectedResult)
	assert.Equal(t, []string{"Given next"}, doc.TestCases[1].Steps)
}

func TestParse_BackgroundStepsOnly(t *testing.T) {
	content := []byte(`Feature: F
  Background:
    Given one
    And two
  Scenario: S
    Given three
`)
	doc := Parse("f.feature", content)
	assert.Equal(t, []string{"Given one", "And two"}, doc.BackgroundSteps)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, []string{"Given three"}, doc.TestCases[0].Steps)
}

func TestParse_StepsOutsideSectionsIgnored(t *testing.T) {
	content := []byte(`Given floating step
Feature: F
  Given also floating
  Scenario: S
    Given real
`)
	doc := Parse("f.feature", content)
	assert.Empty(t, doc.BackgroundSteps)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, []string{"Given real"}, doc.TestCases[0].Steps)
}

func TestParse_StepPrefixMustBeExact(t *testing.T) {
	content := []byte(`Feature: F
  Scenario: S
    Givenno space
    given lowercase
    But  spaced
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, []string{"But  spaced"}, doc.TestCases[0].Steps)
}

func TestParse_DefaultsBlockSyntaxes(t *testing.T) {
	content := []byte(`# header comment
@Feature_Defaults:
  Status: Ready_For_Review
  TC_requires_use_of_proxy: No_Proxy
  @Regression_Type:Full_Regression
  # comment inside defaults
  line without colon

  @Component/Feature:Feed
Feature: F
`)
	doc := Parse("f.feature", content)
	assert.Equal(t, map[string]string{
		"Status":                   "Ready For Review",
		"TC requires use of proxy": "No Proxy",
		"Regression Type":          "Full Regression",
		"Component/Feature":        "Feed",
	}, doc.Defaults)
	assert.Equal(t, "F", doc.Name)
}

func TestParse_UnknownTagEndsDefaults(t *testing.T) {
	content := []byte(`@Feature_Defaults:
Priority: High
@Jira:ABC-1 @Smoke
Feature: F
`)
	doc := Parse("f.feature", content)
	assert.Equal(t, map[string]string{"Priority": "High"}, doc.Defaults)
	assert.Equal(t, []string{"Jira:ABC-1", "Smoke"}, doc.Labels)
}

func TestParse_CustomOverrideFields(t *testing.T) {
	content := []byte(`@Feature_Defaults:
@Team:Payments
Feature: F
`)
	doc := New(DefaultOverrideFields().With("Team"), nil).Parse("f.feature", content)
	assert.Equal(t, map[string]string{"Team": "Payments"}, doc.Defaults)
	assert.Empty(t, doc.Labels)

	// without the extension @Team closes the block and becomes a feature
	// label
	doc = Parse("f.feature", content)
	assert.Empty(t, doc.Defaults)
	assert.Equal(t, []string{"Team:Payments"}, doc.Labels)
}

func TestParse_FeatureTagsNeverOverrideDefaults(t *testing.T) {
	content := []byte(`@Feature_Defaults:
Priority: High

@Smoke @Priority:Low
Feature: F
  Scenario: S
    Given x
`)
	doc := Parse("f.feature", content)
	assert.Equal(t, map[string]string{"Priority": "High"}, doc.Defaults)
	assert.Equal(t, []string{"Smoke", "Priority:Low"}, doc.Labels)

	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, "High", doc.FieldsFor(&doc.TestCases[0]).Lookup("Priority", ""))
}

func TestParse_RepeatedFeatureHeaderResetsHeader(t *testing.T) {
	content := []byte(`@First
Feature: One
  As a first user
@Second
Feature: Two
  As a second user
  Scenario: S
    Given x
`)
	doc := Parse("f.feature", content)
	assert.Equal(t, "Two", doc.Name)
	assert.Equal(t, "As a second user", doc.Description)
	assert.Equal(t, []string{"Second"}, doc.Labels)
}

func TestParse_DescriptionStopsAtFirstNonNarrativeLine(t *testing.T) {
	content := []byte(`Feature: F
  In order to ship

  As an engineer
  This is not narrative
  So that this is ignored
  Scenario: S
`)
	doc := Parse("f.feature", content)
	assert.Equal(t, "In order to ship As an engineer", doc.Description)
	require.Len(t, doc.TestCases, 1)
}

func TestParse_DescriptionEndingLineIsReprocessed(t *testing.T) {
	content := []byte(`Feature: F
  As a user
  Background:
    Given setup
`)
	doc := Parse("f.feature", content)
	assert.Equal(t, "As a user", doc.Description)
	assert.Equal(t, []string{"Given setup"}, doc.BackgroundSteps)
}

func TestParse_TagsNeverAttributedTwice(t *testing.T) {
	content := []byte(`@FeatureTag
Feature: F
  @First
  Scenario: A
  Scenario: B
`)
	doc := Parse("f.feature", content)
	assert.Equal(t, []string{"FeatureTag"}, doc.Labels)
	require.Len(t, doc.TestCases, 2)
	assert.Equal(t, []string{"First"}, doc.TestCases[0].Labels)
	assert.Empty(t, doc.TestCases[1].Labels)
}

func TestParse_MultipleTagLinesAccumulate(t *testing.T) {
	content := []byte(`Feature: F
  @A @B
  @Platform:Android
  # comment between tag lines
  @C
  Scenario: S
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, []string{"A", "B", "C"}, doc.TestCases[0].Labels)
	assert.Equal(t, map[string]string{"Platform": "Android"}, doc.TestCases[0].Overrides)
}

func TestParse_UnrecognizedLinesDoNotAbort(t *testing.T) {
	content := []byte(`Feature: F
  | a | b |
  """
  Scenario: S
    Given a
    * star step
    | table |
    Then b
`)
	doc := Parse("f.feature", content)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, []string{"Given a", "Then b"}, doc.TestCases[0].Steps)
}

func TestParse_CRLFAndBOM(t *testing.T) {
	content := []byte("\ufeffFeature: F\r\n  Scenario: S\r\n    Given a\r\n")
	doc := Parse("f.feature", content)
	assert.Equal(t, "F", doc.Name)
	require.Len(t, doc.TestCases, 1)
	assert.Equal(t, []string{"Given a"}, doc.TestCases[0].Steps)
}

func TestParse_Empty(t *testing.T) {
	doc := Parse("empty.feature", nil)
	assert.Empty(t, doc.Name)
	assert.Empty(t, doc.TestCases)
	assert.NotNil(t, doc.Defaults)
}

func TestParse_IndependentInvocations(t *testing.T) {
	p := New(nil, nil)
	first := p.Parse("a.feature", []byte("@Dangling\n"))
	second := p.Parse("b.feature", []byte("Feature: B\n  Scenario: S\n"))
	assert.Empty(t, first.TestCases)
	require.Len(t, second.TestCases, 1)
	assert.Empty(t, second.TestCases[0].Labels)
	assert.Empty(t, second.Labels)
}

func TestParseFile_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ptr.feature")
	require.NoError(t, os.WriteFile(path, []byte(pullToRefresh), 0o644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Len(t, doc.TestCases, 2)
}

func TestParseFile_MissingInput(t *testing.T) {
	doc, err := ParseFile(filepath.Join(t.TempDir(), "missing.feature"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInputMissing)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Nil(t, doc)
}
