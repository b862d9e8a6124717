package qmetry

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// TestCaseInput is the content pushed for one test case.
type TestCaseInput struct {
	Summary        string
	Description    string
	Precondition   string
	Steps          []string
	TestData       string
	ExpectedResult string
	FolderID       int64
	CustomFields   map[string]string
}

// TestCaseRef identifies a test case version on the server.
type TestCaseRef struct {
	ID        ID     `json:"id"`
	Key       string `json:"key"`
	VersionNo int    `json:"-"`
}

// StepsError reports that a test case's metadata was updated but its steps
// could not be replaced.
type StepsError struct {
	Err error
}

func (e *StepsError) Error() string {
	return fmt.Sprintf("test case updated but steps failed: %v", e.Err)
}

func (e *StepsError) Unwrap() error { return e.Err }

type stepPayload struct {
	StepDetails    string `json:"stepDetails"`
	TestData       string `json:"testData"`
	ExpectedResult string `json:"expectedResult"`
}

// stepsPayload folds all steps into a single QMetry step row.
func stepsPayload(in TestCaseInput) []stepPayload {
	return []stepPayload{{
		StepDetails:    strings.Join(in.Steps, "\n"),
		TestData:       in.TestData,
		ExpectedResult: in.ExpectedResult,
	}}
}

// CreateTestCase creates a test case. Priority and status are left to the
// project defaults, and labels are not sent because the API only accepts
// label ids.
func (c *Client) CreateTestCase(ctx context.Context, in TestCaseInput) (TestCaseRef, error) {
	projectID, err := strconv.Atoi(c.project)
	if err != nil {
		return TestCaseRef{}, fmt.Errorf("project %q must be a numeric project id: %w", c.project, err)
	}

	body := map[string]any{
		"projectId": projectID,
		"summary":   in.Summary,
	}
	if in.Description != "" {
		body["description"] = in.Description
	}
	if in.Precondition != "" {
		body["precondition"] = in.Precondition
	}
	if len(in.Steps) > 0 {
		body["steps"] = stepsPayload(in)
	}
	if in.FolderID > 0 {
		body["folderId"] = in.FolderID
	}
	if err := c.addFieldValues(ctx, body, in.CustomFields); err != nil {
		return TestCaseRef{}, err
	}

	var created TestCaseRef
	if err := c.do(ctx, http.MethodPost, "/testcases", nil, body, &created); err != nil {
		return TestCaseRef{}, err
	}
	created.VersionNo = 1
	return created, nil
}

// FindTestCase looks for a test case with the given summary in a folder. A
// nil ref means none exists.
func (c *Client) FindTestCase(ctx context.Context, summary string, folderID int64) (*TestCaseRef, error) {
	body := map[string]any{
		"filter": map[string]any{
			"projectId": c.project,
			"summary":   summary,
			"folderId":  folderID,
		},
	}
	var resp struct {
		Total int `json:"total"`
		Data  []struct {
			ID      ID     `json:"id"`
			Key     string `json:"key"`
			Summary string `json:"summary"`
			Version *struct {
				VersionNo int `json:"versionNo"`
			} `json:"version"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/testcases/search", nil, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}

	match := resp.Data[0]
	for _, d := range resp.Data {
		if d.Summary == summary {
			match = d
			break
		}
	}
	ref := &TestCaseRef{ID: match.ID, Key: match.Key, VersionNo: 1}
	if match.Version != nil && match.Version.VersionNo > 0 {
		ref.VersionNo = match.Version.VersionNo
	}
	return ref, nil
}

// UpdateTestCase replaces the metadata of ref and then its steps. A steps
// failure is returned as *StepsError.
func (c *Client) UpdateTestCase(ctx context.Context, ref TestCaseRef, in TestCaseInput) error {
	body := map[string]any{"summary": in.Summary}
	if in.Description != "" {
		body["description"] = in.Description
	}
	if in.Precondition != "" {
		body["precondition"] = in.Precondition
	}
	if err := c.addFieldValues(ctx, body, in.CustomFields); err != nil {
		return err
	}

	version := versionPath(ref)
	if err := c.do(ctx, http.MethodPut, version, nil, body, nil); err != nil {
		return err
	}
	if len(in.Steps) == 0 {
		return nil
	}

	if err := c.do(ctx, http.MethodDelete, version+"/teststeps", nil, map[string]bool{"deleteAll": true}, nil); err != nil {
		c.log.WithError(err).WithField("key", ref.Key).Warn("deleting existing steps failed")
	}
	if err := c.do(ctx, http.MethodPost, version+"/teststeps", nil, stepsPayload(in), nil); err != nil {
		return &StepsError{Err: err}
	}
	return nil
}

func versionPath(ref TestCaseRef) string {
	return fmt.Sprintf("/testcases/%s/versions/%d", ref.ID, ref.VersionNo)
}

func (c *Client) addFieldValues(ctx context.Context, body map[string]any, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	values, err := c.fieldValues(ctx, fields)
	if err != nil {
		return err
	}
	if len(values) > 0 {
		body["customFields"] = values
	}
	return nil
}
