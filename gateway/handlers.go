package gateway

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/archive"
	"github.com/zeptools/gw-livedocx/requests"
	"github.com/zeptools/gw-livedocx/responses"
	"github.com/zeptools/gw-livedocx/routing"
)

// DocumentRequest is the body of POST /v1/documents
type DocumentRequest struct {
	Template           string         `json:"template"`             // stored template name
	Values             map[string]any `json:"values"`               // fields, and blocks as lists of objects
	Format             string         `json:"format"`               // PDF if empty
	IgnoreSubTemplates bool           `json:"ignore_sub_templates"` // leave sub-templates unmerged
	Archive            bool           `json:"archive"`              // keep the result in the document archive
}

// TemplateNames is the body of GET /v1/templates/{name}/names
type TemplateNames struct {
	Fields []string `json:"fields"`
	Blocks []string `json:"blocks"`
}

// TemplateEvent is one entry of GET /v1/templates/{name}/history
type TemplateEvent struct {
	Action string `json:"action"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256,omitempty"`
	At     string `json:"at"`
}

func (g *Gateway) health(w http.ResponseWriter, r *http.Request) {
	responses.EncodeWriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"archive": g.Archive != nil,
		"ledger":  g.Ledger != nil,
	})
}

func (g *Gateway) listTemplates(w http.ResponseWriter, r *http.Request) {
	var templates []livedocx.TemplateInfo
	err := g.Session(r.Context(), func(ctx context.Context, c *livedocx.Client) error {
		var err error
		templates, err = c.ListTemplates(ctx)
		return err
	})
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	responses.EncodeWriteJSON(w, http.StatusOK, templates)
}

func (g *Gateway) downloadTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var data []byte
	err := g.Session(r.Context(), func(ctx context.Context, c *livedocx.Client) error {
		var err error
		data, err = c.DownloadTemplate(ctx, name)
		return err
	})
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	g.record(r.Context(), archive.NewEvent(name, archive.ActionDownload, data))
	responses.WriteDocumentBytes(w, name, livedocx.ContentType(livedocx.FileExt(name)), data)
}

func (g *Gateway) uploadTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, err := requests.ReadBody(w, r, g.MaxBodyBytes)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	if len(data) == 0 {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, "empty template body")
		return
	}
	err = g.Session(r.Context(), func(ctx context.Context, c *livedocx.Client) error {
		return c.UploadTemplateData(ctx, data, name)
	})
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	g.record(r.Context(), archive.NewEvent(name, archive.ActionUpload, data))
	w.WriteHeader(http.StatusCreated)
}

func (g *Gateway) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	err := g.Session(r.Context(), func(ctx context.Context, c *livedocx.Client) error {
		return c.DeleteTemplate(ctx, name)
	})
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	g.record(r.Context(), archive.NewEvent(name, archive.ActionDelete, nil))
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) templateNames(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var names TemplateNames
	err := g.Session(r.Context(), func(ctx context.Context, c *livedocx.Client) error {
		var err error
		if err = c.SetRemoteTemplate(ctx, name); err != nil {
			return err
		}
		if names.Fields, err = c.GetFieldNames(ctx); err != nil {
			return err
		}
		names.Blocks, err = c.GetBlockNames(ctx)
		return err
	})
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	if names.Fields == nil {
		names.Fields = []string{}
	}
	if names.Blocks == nil {
		names.Blocks = []string{}
	}
	responses.EncodeWriteJSON(w, http.StatusOK, names)
}

func (g *Gateway) templateHistory(w http.ResponseWriter, r *http.Request) {
	if g.Ledger == nil {
		responses.WriteSimpleErrorJSON(w, http.StatusNotFound, "template ledger is not configured")
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 1000 {
			responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	events, err := g.Ledger.History(r.Context(), r.PathValue("name"), limit)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	out := make([]TemplateEvent, len(events))
	for i, e := range events {
		out[i] = TemplateEvent{Action: e.Action, Size: e.Size, SHA256: e.SHA256, At: e.At.UTC().Format("2006-01-02T15:04:05Z")}
	}
	responses.EncodeWriteJSON(w, http.StatusOK, out)
}

func (g *Gateway) createDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := requests.DecodeJSONBody(w, r, g.MaxBodyBytes, &req); err != nil {
		g.writeError(w, r, err)
		return
	}
	if req.Template == "" {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, "template is required")
		return
	}
	if req.Format == "" {
		req.Format = "PDF"
	}
	if !livedocx.DocumentFormats.Allows(req.Format) {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation,
			"invalid document format "+strconv.Quote(req.Format)+". valid formats are: "+livedocx.DocumentFormats.String())
		return
	}
	archiveIt := req.Archive || g.ArchiveAll
	if req.Archive && g.Archive == nil {
		responses.WriteErrorJSON(w, http.StatusBadRequest, responses.CodeValidation, "document archive is not configured")
		return
	}

	var data []byte
	err := g.Session(r.Context(), func(ctx context.Context, c *livedocx.Client) error {
		if req.IgnoreSubTemplates {
			if err := c.SetIgnoreSubTemplates(ctx); err != nil {
				return err
			}
		}
		if err := c.SetRemoteTemplate(ctx, req.Template); err != nil {
			return err
		}
		if err := c.Assign(req.Values); err != nil {
			return err
		}
		if err := c.CreateDocument(ctx); err != nil {
			return err
		}
		var err error
		data, err = c.RetrieveDocument(ctx, req.Format)
		return err
	})
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	g.record(r.Context(), archive.NewEvent(req.Template, archive.ActionSelect, nil))

	if archiveIt && g.Archive != nil {
		id, err := g.Archive.Put(r.Context(), req.Format, data)
		if err != nil {
			// the document itself is fine. serve it without an id
			g.Logger.Errorw("document not archived", "template", req.Template, "error", err)
		} else {
			w.Header().Set("X-Document-Id", id)
		}
	}
	sub, _ := routing.SubjectFromContext(r.Context())
	g.Logger.Debugw("document rendered", "template", req.Template, "format", req.Format, "bytes", len(data), "sub", sub)
	responses.WriteDocumentBytes(w, documentFilename(req.Template, req.Format), livedocx.ContentType(req.Format), data)
}

func (g *Gateway) getDocument(w http.ResponseWriter, r *http.Request) {
	if g.Archive == nil {
		responses.WriteErrorJSON(w, http.StatusNotFound, responses.CodeArchiveMissing, "document archive is not configured")
		return
	}
	id := r.PathValue("id")
	doc, found, err := g.Archive.Get(r.Context(), id)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	if !found {
		responses.WriteErrorJSON(w, http.StatusNotFound, responses.CodeArchiveMissing, "document not found or expired")
		return
	}
	// sliding expiry. a document that is still fetched stays archived
	if _, err = g.Archive.Touch(r.Context(), id); err != nil {
		g.Logger.Warnw("document expiry not extended", "id", id, "error", err)
	}
	responses.WriteDocumentBytes(w, id+"."+strings.ToLower(doc.Format), livedocx.ContentType(doc.Format), doc.Data)
}

func (g *Gateway) deleteDocument(w http.ResponseWriter, r *http.Request) {
	if g.Archive == nil {
		responses.WriteErrorJSON(w, http.StatusNotFound, responses.CodeArchiveMissing, "document archive is not configured")
		return
	}
	deleted, err := g.Archive.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	if !deleted {
		responses.WriteErrorJSON(w, http.StatusNotFound, responses.CodeArchiveMissing, "document not found or expired")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) listFonts(w http.ResponseWriter, r *http.Request) {
	var fonts []string
	err := g.Session(r.Context(), func(ctx context.Context, c *livedocx.Client) error {
		var err error
		fonts, err = c.GetFontNames(ctx)
		return err
	})
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	if fonts == nil {
		fonts = []string{}
	}
	responses.EncodeWriteJSON(w, http.StatusOK, fonts)
}

// documentFilename replaces the template extension with the document format
func documentFilename(template string, format string) string {
	base := path.Base(template)
	if ext := livedocx.FileExt(base); ext != "" {
		base = strings.TrimSuffix(base, "."+ext)
	}
	return base + "." + strings.ToLower(format)
}
