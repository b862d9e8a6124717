package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/chriserin/qmetry/internal/qmetry"
)

// Remote is the subset of the QMetry client an upload needs.
type Remote interface {
	ResolveFolderPath(ctx context.Context, path string) (int64, error)
	FindTestCase(ctx context.Context, summary string, folderID int64) (*qmetry.TestCaseRef, error)
	CreateTestCase(ctx context.Context, in qmetry.TestCaseInput) (qmetry.TestCaseRef, error)
	UpdateTestCase(ctx context.Context, ref qmetry.TestCaseRef, in qmetry.TestCaseInput) error
}

type Outcome int

const (
	Created Outcome = iota
	Updated
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "failed"
	}
}

// Result is what happened to one record.
type Result struct {
	Name    string
	Key     string
	Outcome Outcome
	// Err is set for failures, and for updates whose steps could not be
	// replaced.
	Err error
}

// Summary totals an upload.
type Summary struct {
	Folder   string
	FolderID int64
	Created  int
	Updated  int
	Failed   int
	Results  []Result
}

func (s *Summary) add(r Result) {
	switch r.Outcome {
	case Created:
		s.Created++
	case Updated:
		s.Updated++
	default:
		s.Failed++
	}
	s.Results = append(s.Results, r)
}

// Uploader pushes plans through a Remote, one record at a time and in
// document order.
type Uploader struct {
	remote Remote
	log    logrus.FieldLogger
	// OnResult, when set, is called after each record.
	OnResult func(Result)
}

func New(remote Remote, log logrus.FieldLogger) *Uploader {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Uploader{remote: remote, log: log.WithField("component", "upload")}
}

// Run resolves the plan's folder and creates or updates each record. A
// failing record does not stop the run; only a folder failure or a
// cancelled context does.
func (u *Uploader) Run(ctx context.Context, plan *Plan) (*Summary, error) {
	folderID, err := u.remote.ResolveFolderPath(ctx, plan.Folder)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrNoFolder, plan.Folder, err)
	}

	summary := &Summary{Folder: plan.Folder, FolderID: folderID}
	for _, rec := range plan.Records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		res := u.push(ctx, rec, folderID)
		summary.add(res)
		if u.OnResult != nil {
			u.OnResult(res)
		}
	}

	u.log.WithFields(logrus.Fields{
		"folder":  plan.Folder,
		"created": summary.Created,
		"updated": summary.Updated,
		"failed":  summary.Failed,
	}).Info("upload finished")
	return summary, nil
}

func (u *Uploader) push(ctx context.Context, rec Record, folderID int64) Result {
	log := u.log.WithField("test_case", rec.Name)
	in := rec.Input
	in.FolderID = folderID

	existing, err := u.remote.FindTestCase(ctx, rec.Name, folderID)
	if err != nil {
		log.WithError(err).Warn("searching for existing test case failed, creating")
		existing = nil
	}

	if existing != nil {
		err := u.remote.UpdateTestCase(ctx, *existing, in)
		var stepsErr *qmetry.StepsError
		switch {
		case err == nil:
			return Result{Name: rec.Name, Key: existing.Key, Outcome: Updated}
		case errors.As(err, &stepsErr):
			log.WithError(err).Warn("steps not replaced")
			return Result{Name: rec.Name, Key: existing.Key, Outcome: Updated, Err: err}
		default:
			log.WithError(err).Error("update failed")
			return Result{Name: rec.Name, Key: existing.Key, Outcome: Failed, Err: err}
		}
	}

	ref, err := u.remote.CreateTestCase(ctx, in)
	if err != nil {
		log.WithError(err).Error("create failed")
		return Result{Name: rec.Name, Outcome: Failed, Err: err}
	}
	return Result{Name: rec.Name, Key: ref.Key, Outcome: Created}
}
