package qmetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// CustomField is a project-level test case field.
type CustomField struct {
	ID      ID            `json:"id"`
	Name    string        `json:"name"`
	Options []FieldOption `json:"options,omitempty"`
}

// FieldOption is one choice of a dropdown or multi-select field.
type FieldOption struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
}

// FieldValue is a custom field entry in a test case payload.
type FieldValue struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// CustomFields lists the project's test case fields.
func (c *Client) CustomFields(ctx context.Context) ([]CustomField, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, c.projectPath("/testcase-custom-fields"), nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[CustomField](raw)
}

// DiscoverFields caches every field id and its options and returns the
// name to id mapping.
func (c *Client) DiscoverFields(ctx context.Context) (map[string]string, error) {
	fields, err := c.CustomFields(ctx)
	if err != nil {
		return nil, err
	}

	found := map[string]string{}
	for _, f := range fields {
		if f.Name == "" || f.ID == "" {
			continue
		}
		options := map[string]int64{}
		for _, o := range f.Options {
			if o.Value != "" && o.ID != 0 {
				options[o.Value] = o.ID
			}
		}
		if err := c.cache.SaveField(f.Name, string(f.ID), options); err != nil {
			return nil, err
		}
		found[f.Name] = string(f.ID)
	}
	c.log.WithField("fields", len(found)).Debug("discovered custom fields")
	return found, nil
}

// FieldID resolves a field name: configured mapping first, then the cache,
// then discovery if nothing has been discovered yet.
func (c *Client) FieldID(ctx context.Context, name string) (string, bool, error) {
	if id, ok := c.customFields[name]; ok {
		return id, true, nil
	}
	if id, ok, err := c.cache.FieldID(name); err != nil || ok {
		return id, ok, err
	}
	if err := c.ensureDiscovered(ctx); err != nil {
		return "", false, err
	}
	return c.cache.FieldID(name)
}

func (c *Client) ensureDiscovered(ctx context.Context) error {
	has, err := c.cache.HasFieldIDs()
	if err != nil || has {
		return err
	}
	_, err = c.DiscoverFields(ctx)
	return err
}

// OptionIDs converts comma-separated option values into comma-separated
// option ids. Fields without options are free text and pass through.
func (c *Client) OptionIDs(ctx context.Context, name, values string) (string, error) {
	if err := c.ensureDiscovered(ctx); err != nil {
		return "", err
	}
	options, err := c.cache.FieldOptions(name)
	if err != nil {
		return "", err
	}
	if len(options) == 0 {
		return values, nil
	}

	var ids []string
	for _, v := range strings.Split(values, ",") {
		v = strings.TrimSpace(v)
		id, ok := options[v]
		if !ok {
			c.log.WithField("field", name).WithField("option", v).Warn("option not found")
			continue
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	if len(ids) == 0 {
		return values, nil
	}
	return strings.Join(ids, ","), nil
}

// fieldValues builds the customFields payload. Unknown fields are dropped.
func (c *Client) fieldValues(ctx context.Context, fields map[string]string) ([]FieldValue, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []FieldValue
	for _, name := range names {
		id, ok, err := c.FieldID(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			c.log.WithField("field", name).Debug("no custom field with this name")
			continue
		}
		value, err := c.OptionIDs(ctx, name, fields[name])
		if err != nil {
			return nil, err
		}
		out = append(out, FieldValue{ID: id, Value: value})
	}
	return out, nil
}
