package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/qmetry/internal/qmetry"
)

type stubFolders struct {
	folders []qmetry.Folder
	err     error
}

func (s stubFolders) ListFolders(ctx context.Context) ([]qmetry.Folder, error) {
	return s.folders, s.err
}

func id(v int64) *int64 { return &v }

func TestFolders_NestedTree(t *testing.T) {
	var buf bytes.Buffer
	err := RunFolders(context.Background(), &buf, stubFolders{folders: []qmetry.Folder{
		{ID: 1, Name: "Mobile", Children: []qmetry.Folder{{ID: 2, Name: "PTR", ParentFolderID: id(1)}}},
		{ID: 3, Name: "Web"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Mobile  (1)\n  PTR  (2)\nWeb  (3)\n", buf.String())
}

func TestFolders_FlatListWithParents(t *testing.T) {
	var buf bytes.Buffer
	err := RunFolders(context.Background(), &buf, stubFolders{folders: []qmetry.Folder{
		{ID: 2, Name: "PTR", ParentID: id(1)},
		{ID: 1, Name: "Mobile"},
	}})
	require.NoError(t, err)
	assert.Equal(t, "Mobile  (1)\n  PTR  (2)\n", buf.String())
}

func TestFolders_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunFolders(context.Background(), &buf, stubFolders{}))
	assert.Equal(t, "no folders\n", buf.String())
}

func TestFolders_Error(t *testing.T) {
	var buf bytes.Buffer
	err := RunFolders(context.Background(), &buf, stubFolders{err: errors.New("HTTP 401")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing folders")
}
