package qmetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// ErrInvalidFolderPath is returned for a path with no segments, such as "/".
var ErrInvalidFolderPath = errors.New("invalid folder path")

// Folder is a test case folder.
type Folder struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	ParentID       *int64   `json:"parentId,omitempty"`
	ParentFolderID *int64   `json:"parentFolderId,omitempty"`
	Children       []Folder `json:"children,omitempty"`
}

// Parent returns the parent folder id, or 0 for a root folder. Search
// results use parentId while other endpoints use parentFolderId.
func (f Folder) Parent() int64 {
	switch {
	case f.ParentID != nil && *f.ParentID > 0:
		return *f.ParentID
	case f.ParentFolderID != nil && *f.ParentFolderID > 0:
		return *f.ParentFolderID
	}
	return 0
}

// FolderError reports a folder that could not be created, usually because
// the API key lacks permission.
type FolderError struct {
	Path    string
	Segment string
	Err     error
}

func (e *FolderError) Error() string {
	return fmt.Sprintf("failed to create folder %s: %v", e.Segment, e.Err)
}

func (e *FolderError) Unwrap() error { return e.Err }

// ListFolders returns the folder tree of the project.
func (c *Client) ListFolders(ctx context.Context) ([]Folder, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.projectPath("/testcase-folders"), nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[Folder](raw)
}

// SearchFolder finds folders by name anywhere in the tree.
func (c *Client) SearchFolder(ctx context.Context, name string) ([]Folder, error) {
	var raw json.RawMessage
	params := url.Values{"folderName": {name}}
	if err := c.do(ctx, http.MethodGet, c.projectPath("/testcase-folders/search"), params, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[Folder](raw)
}

// CreateFolder creates name under parentID, or at the root when parentID
// is 0.
func (c *Client) CreateFolder(ctx context.Context, name string, parentID int64) (Folder, error) {
	body := map[string]any{"name": name}
	if parentID > 0 {
		body["parentFolderId"] = parentID
	}
	var created Folder
	if err := c.do(ctx, http.MethodPost, c.projectPath("/testcase-folders"), nil, body, &created); err != nil {
		return Folder{}, err
	}
	return created, nil
}

// ResolveFolderPath returns the id of a path like /Mobile/PTR, creating any
// missing segment. Every resolved prefix is cached.
func (c *Client) ResolveFolderPath(ctx context.Context, path string) (int64, error) {
	if id, ok, err := c.cache.FolderID(path); err != nil {
		return 0, err
	} else if ok {
		return id, nil
	}

	var segments []string
	for _, s := range strings.Split(strings.Trim(path, "/"), "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFolderPath, path)
	}

	var parent int64
	current := ""
	for _, segment := range segments {
		current += "/" + segment

		id, ok, err := c.cache.FolderID(current)
		if err != nil {
			return 0, err
		}
		if !ok {
			if id, err = c.resolveSegment(ctx, path, segment, parent); err != nil {
				return 0, err
			}
			if err := c.cache.SaveFolderID(current, id); err != nil {
				return 0, err
			}
		}
		parent = id
	}
	return parent, nil
}

func (c *Client) resolveSegment(ctx context.Context, path, segment string, parent int64) (int64, error) {
	log := c.log.WithFields(logrus.Fields{"segment": segment, "parent": parent})

	found, err := c.SearchFolder(ctx, segment)
	if err != nil {
		log.WithError(err).Warn("folder search failed, creating instead")
	}
	for _, f := range found {
		if f.Parent() == parent {
			return f.ID, nil
		}
	}

	created, err := c.CreateFolder(ctx, segment, parent)
	if err != nil {
		return 0, &FolderError{Path: path, Segment: segment, Err: err}
	}
	log.WithField("id", created.ID).Info("created folder")
	return created.ID, nil
}
