package livedocx

import (
	"context"
	"encoding/base64"
	"maps"
	"slices"
	"strings"
)

// CreateDocument submits the staged values, clears them, and asks the service to merge.
// Call RetrieveDocument next
func (c *Client) CreateDocument(ctx context.Context) error {
	if len(c.fieldValues) > 0 {
		if err := c.svc.SetFieldValues(ctx, fieldValuesTable(c.fieldValues)); err != nil {
			return err // staged values kept for a retry
		}
	}
	for _, name := range slices.Sorted(maps.Keys(c.blockValues)) {
		if err := c.svc.SetBlockFieldValues(ctx, name, blockValuesTable(c.blockValues[name])); err != nil {
			return err
		}
	}
	c.logger.Debugw("creating document", "fields", len(c.fieldValues), "blocks", len(c.blockValues))
	c.fieldValues = make(map[string]string)
	c.blockValues = make(map[string][]map[string]string)
	return c.svc.CreateDocument(ctx)
}

// RetrieveDocument returns the merged document in format (see DocumentFormats)
func (c *Client) RetrieveDocument(ctx context.Context, format string) ([]byte, error) {
	if err := DocumentFormats.validate("document", format); err != nil {
		return nil, err
	}
	encoded, err := c.svc.RetrieveDocument(ctx, strings.ToUpper(format))
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// PageRange selects pages From..To inclusive. Both bounds must be set
type PageRange struct {
	From *int
	To   *int
}

// Pages is a shorthand for a fully specified PageRange
func Pages(from int, to int) *PageRange {
	return &PageRange{From: &from, To: &to}
}

// bounds reports (from, to, all). all = nil range or neither bound set
func (r *PageRange) bounds() (int, int, bool, error) {
	if r == nil || (r.From == nil && r.To == nil) {
		return 0, 0, true, nil
	}
	if r.From == nil || r.To == nil {
		return 0, 0, false, newError(ErrValidation, "both values from_page and to_page must be set")
	}
	return *r.From, *r.To, false, nil
}

// GetBitmaps returns page images of the created document.
// Payloads are passed through as received from the service (base64 text), not decoded
func (c *Client) GetBitmaps(ctx context.Context, zoom int, format string, pages *PageRange) ([]string, error) {
	if err := validateZoomFactor(zoom); err != nil {
		return nil, err
	}
	if err := ImageFormats.validate("image", format); err != nil {
		return nil, err
	}
	from, to, all, err := pages.bounds()
	if err != nil {
		return nil, err
	}
	format = strings.ToUpper(format)
	if all {
		return c.svc.GetAllBitmaps(ctx, zoom, format)
	}
	return c.svc.GetBitmaps(ctx, from, to, zoom, format)
}

// GetMetafiles returns the pages of the created document as metafile strings
func (c *Client) GetMetafiles(ctx context.Context, pages *PageRange) ([]string, error) {
	from, to, all, err := pages.bounds()
	if err != nil {
		return nil, err
	}
	if all {
		return c.svc.GetAllMetafiles(ctx)
	}
	return c.svc.GetMetafiles(ctx, from, to)
}

// GetBlockNames returns the merge block names of the active template
func (c *Client) GetBlockNames(ctx context.Context) ([]string, error) {
	return c.svc.GetBlockNames(ctx)
}

// GetFieldNames returns the merge field names of the active template
func (c *Client) GetFieldNames(ctx context.Context) ([]string, error) {
	return c.svc.GetFieldNames(ctx)
}

// GetFontNames returns the fonts available on the server
func (c *Client) GetFontNames(ctx context.Context) ([]string, error) {
	return c.svc.GetFontNames(ctx)
}
