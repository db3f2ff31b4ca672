package livedocx

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// TemplateInfo describes a template stored on the server.
// Values are kept as the service formats them
type TemplateInfo struct {
	Name       string `json:"name"`
	Size       string `json:"size"`
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
}

// TemplateExists asks the server. Nothing is cached locally
func (c *Client) TemplateExists(ctx context.Context, filename string) (bool, error) {
	return c.svc.TemplateExists(ctx, filename)
}

func (c *Client) requireTemplate(ctx context.Context, filename string, msgFormat string) error {
	exists, err := c.svc.TemplateExists(ctx, filename)
	if err != nil {
		return err
	}
	if !exists {
		return newError(ErrNotFound, msgFormat, filename)
	}
	return nil
}

// DeleteTemplate removes a stored template. ErrNotFound if it does not exist
func (c *Client) DeleteTemplate(ctx context.Context, filename string) error {
	if err := c.requireTemplate(ctx, filename, "template %q does not exist and cannot be deleted"); err != nil {
		return err
	}
	return c.svc.DeleteTemplate(ctx, filename)
}

// DownloadTemplate returns the raw bytes of a stored template. ErrNotFound if it does not exist
func (c *Client) DownloadTemplate(ctx context.Context, filename string) ([]byte, error) {
	if err := c.requireTemplate(ctx, filename, "template %q does not exist"); err != nil {
		return nil, err
	}
	encoded, err := c.svc.DownloadTemplate(ctx, filename)
	if err != nil {
		return nil, err
	}
	return base64.StdEncoding.DecodeString(encoded)
}

// UploadTemplate stores the file at localPath on the server as remoteName.
// The extensions of both names must be an allowed template format and identical (case-sensitive)
func (c *Client) UploadTemplate(ctx context.Context, localPath string, remoteName string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	localExt := FileExt(localPath)
	if err = TemplateFormats.validate("template", localExt); err != nil {
		return err
	}
	if remoteExt := FileExt(remoteName); localExt != remoteExt {
		return newError(ErrValidation, "local template extension %q and remote name extension %q must match", localExt, remoteExt)
	}
	return c.svc.UploadTemplate(ctx, base64.StdEncoding.EncodeToString(data), remoteName)
}

// UploadTemplateData stores data on the server as remoteName, whose extension must be a template format
func (c *Client) UploadTemplateData(ctx context.Context, data []byte, remoteName string) error {
	if err := TemplateFormats.validate("template", FileExt(remoteName)); err != nil {
		return err
	}
	return c.svc.UploadTemplate(ctx, base64.StdEncoding.EncodeToString(data), remoteName)
}

// SetLocalTemplate makes the file at localPath the active template.
// It is not stored on the server beyond the session
func (c *Client) SetLocalTemplate(ctx context.Context, localPath string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	return c.SetLocalTemplateData(ctx, data, FileExt(localPath))
}

// SetLocalTemplateData makes data, in the given template format, the active template
func (c *Client) SetLocalTemplateData(ctx context.Context, data []byte, format string) error {
	if err := TemplateFormats.validate("template", format); err != nil {
		return err
	}
	return c.svc.SetLocalTemplate(ctx, base64.StdEncoding.EncodeToString(data), strings.ToUpper(format))
}

// SetRemoteTemplate makes a stored template the active one. ErrNotFound if it does not exist
func (c *Client) SetRemoteTemplate(ctx context.Context, filename string) error {
	if err := c.requireTemplate(ctx, filename, "remote template %q does not exist"); err != nil {
		return err
	}
	return c.svc.SetRemoteTemplate(ctx, filename)
}

// ListTemplates returns the templates stored on the server.
// Row columns are positional: name, size, created, modified
func (c *Client) ListTemplates(ctx context.Context) ([]TemplateInfo, error) {
	rows, err := c.svc.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	templates := make([]TemplateInfo, 0, len(rows))
	for i, row := range rows {
		if len(row) < 4 {
			return nil, fmt.Errorf("livedocx: template row %d has %d columns, want 4", i, len(row))
		}
		templates = append(templates, TemplateInfo{
			Name:       row[0],
			Size:       row[1],
			CreatedAt:  row[2],
			ModifiedAt: row[3],
		})
	}
	return templates, nil
}
