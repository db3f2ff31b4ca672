package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zeptools/gw-livedocx/apis/livedocx"
	"github.com/zeptools/gw-livedocx/apis/livedocx/soap"
	"github.com/zeptools/gw-livedocx/archive"
	"github.com/zeptools/gw-livedocx/db/kvdb"
	"github.com/zeptools/gw-livedocx/routing"
	"github.com/zeptools/gw-livedocx/sec"
	"github.com/zeptools/gw-livedocx/throttle"
)

// stubService serves the operations the gateway uses. Others panic via the nil embedded interface
type stubService struct {
	livedocx.Service

	loginErr  error
	loggedIn  bool
	logouts   int
	templates map[string][]byte
	selected  string
	ignoreSub bool
	fields    [][]string
	blocks    map[string][][]string
	created   bool
	document  []byte
	fonts     []string
}

func newStubService() *stubService {
	return &stubService{
		templates: map[string][]byte{"letter.docx": []byte("DOCX-BYTES")},
		blocks:    map[string][][]string{},
		document:  []byte("%PDF-1.4 merged"),
		fonts:     []string{"Arial", "Verdana"},
	}
}

func (s *stubService) LogIn(_ context.Context, username string, password string) error {
	if s.loginErr != nil {
		return s.loginErr
	}
	s.loggedIn = true
	return nil
}

func (s *stubService) LogOut(_ context.Context) error {
	s.logouts++
	s.loggedIn = false
	return nil
}

func (s *stubService) TemplateExists(_ context.Context, filename string) (bool, error) {
	_, ok := s.templates[filename]
	return ok, nil
}

func (s *stubService) DeleteTemplate(_ context.Context, filename string) error {
	delete(s.templates, filename)
	return nil
}

func (s *stubService) DownloadTemplate(_ context.Context, filename string) (string, error) {
	return base64.StdEncoding.EncodeToString(s.templates[filename]), nil
}

func (s *stubService) UploadTemplate(_ context.Context, template string, filename string) error {
	data, err := base64.StdEncoding.DecodeString(template)
	if err != nil {
		return err
	}
	s.templates[filename] = data
	return nil
}

func (s *stubService) ListTemplates(_ context.Context) ([][]string, error) {
	var rows [][]string
	for name, data := range s.templates {
		rows = append(rows, []string{name, fmt.Sprint(len(data)), "2024-01-02", "2024-01-03"})
	}
	return rows, nil
}

func (s *stubService) SetRemoteTemplate(_ context.Context, filename string) error {
	s.selected = filename
	return nil
}

func (s *stubService) SetIgnoreSubTemplates(_ context.Context) error {
	s.ignoreSub = true
	return nil
}

func (s *stubService) SetFieldValues(_ context.Context, fieldValues [][]string) error {
	s.fields = fieldValues
	return nil
}

func (s *stubService) SetBlockFieldValues(_ context.Context, blockName string, blockFieldValues [][]string) error {
	s.blocks[blockName] = blockFieldValues
	return nil
}

func (s *stubService) CreateDocument(_ context.Context) error {
	s.created = true
	return nil
}

func (s *stubService) RetrieveDocument(_ context.Context, format string) (string, error) {
	return base64.StdEncoding.EncodeToString(s.document), nil
}

func (s *stubService) GetFieldNames(_ context.Context) ([]string, error) {
	return []string{"name", "city"}, nil
}

func (s *stubService) GetBlockNames(_ context.Context) ([]string, error) {
	return nil, nil
}

func (s *stubService) GetFontNames(_ context.Context) ([]string, error) {
	return s.fonts, nil
}

// memKV is an in-process kvdb.Client
type memKV struct {
	hashes  map[string]map[string]string
	expires map[string]time.Duration // last Expire per key
}

func (m *memKV) Init() error         { return nil }
func (m *memKV) Close() error        { return nil }
func (m *memKV) GetConf() *kvdb.Conf { return &kvdb.Conf{Type: "mem"} }

func (m *memKV) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.hashes[key]
	return ok, nil
}

func (m *memKV) Delete(_ context.Context, keys ...string) (int64, error) {
	var n int64
	for _, k := range keys {
		if _, ok := m.hashes[k]; ok {
			delete(m.hashes, k)
			n++
		}
	}
	return n, nil
}

func (m *memKV) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	_, ok := m.hashes[key]
	if ok {
		if m.expires == nil {
			m.expires = map[string]time.Duration{}
		}
		m.expires[key] = expiration
	}
	return ok, nil
}

func (m *memKV) SetFieldsWithExpiry(_ context.Context, key string, fields map[string]any, _ time.Duration) error {
	h := map[string]string{}
	for f, v := range fields {
		h[f] = fmt.Sprint(v)
	}
	m.hashes[key] = h
	return nil
}

func (m *memKV) GetAllFields(_ context.Context, key string) (map[string]string, error) {
	out := map[string]string{}
	for f, v := range m.hashes[key] {
		out[f] = v
	}
	return out, nil
}

func newTestGateway(stub *stubService) *Gateway {
	return &Gateway{
		Session: func(ctx context.Context, fn func(ctx context.Context, c *livedocx.Client) error) error {
			return livedocx.NewClient(stub).Session(ctx, "user", "pw", fn)
		},
		Archive: &archive.DocumentArchive{KV: &memKV{hashes: map[string]map[string]string{}}, Prefix: "test_"},
	}
}

func do(t *testing.T, h http.Handler, method string, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListTemplates(t *testing.T) {
	stub := newStubService()
	h := newTestGateway(stub).Handler(nil)

	rec := do(t, h, http.MethodGet, "/v1/templates", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	var templates []livedocx.TemplateInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &templates); err != nil {
		t.Fatal(err)
	}
	if len(templates) != 1 || templates[0].Name != "letter.docx" || templates[0].Size != "10" {
		t.Errorf("templates = %+v", templates)
	}
	if stub.logouts != 1 {
		t.Errorf("logouts = %d", stub.logouts)
	}
}

func TestDeleteTemplate(t *testing.T) {
	stub := newStubService()
	h := newTestGateway(stub).Handler(nil)

	if rec := do(t, h, http.MethodDelete, "/v1/templates/missing.docx", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/v1/templates/letter.docx", ""); rec.Code != http.StatusNoContent {
		t.Errorf("present: status = %d", rec.Code)
	}
	if _, ok := stub.templates["letter.docx"]; ok {
		t.Error("template not deleted")
	}
	if stub.logouts != 2 {
		t.Errorf("logouts = %d", stub.logouts)
	}
}

func TestUploadAndDownloadTemplate(t *testing.T) {
	stub := newStubService()
	h := newTestGateway(stub).Handler(nil)

	if rec := do(t, h, http.MethodPut, "/v1/templates/invoice.pdf", "raw"); rec.Code != http.StatusBadRequest {
		t.Errorf("bad extension: status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPut, "/v1/templates/invoice.rtf", "{\\rtf1}"); rec.Code != http.StatusCreated {
		t.Errorf("upload: status = %d %s", rec.Code, rec.Body.String())
	}
	rec := do(t, h, http.MethodGet, "/v1/templates/invoice.rtf", "")
	if rec.Code != http.StatusOK || rec.Body.String() != "{\\rtf1}" {
		t.Errorf("download: %d %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/rtf" {
		t.Errorf("content type = %s", ct)
	}
}

func TestCreateDocument(t *testing.T) {
	stub := newStubService()
	g := newTestGateway(stub)
	h := g.Handler(nil)

	body := `{
		"template": "letter.docx",
		"values": {"name": "Ada", "zip": 10115, "items": [{"sku": "A1", "qty": 2}, {"sku": "B2"}]},
		"format": "pdf",
		"ignore_sub_templates": true,
		"archive": true
	}`
	rec := do(t, h, http.MethodPost, "/v1/documents", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "%PDF-1.4 merged" || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Errorf("document = %q %s", rec.Body.String(), rec.Header().Get("Content-Type"))
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="letter.pdf"`) {
		t.Errorf("content disposition = %s", cd)
	}
	if stub.selected != "letter.docx" || !stub.ignoreSub || !stub.created {
		t.Errorf("stub = %+v", stub)
	}
	wantFields := [][]string{{"name", "zip"}, {"Ada", "10115"}}
	if fmt.Sprint(stub.fields) != fmt.Sprint(wantFields) {
		t.Errorf("fields = %v", stub.fields)
	}
	wantItems := [][]string{{"qty", "sku"}, {"2", "A1"}, {"", "B2"}}
	if fmt.Sprint(stub.blocks["items"]) != fmt.Sprint(wantItems) {
		t.Errorf("items = %v", stub.blocks["items"])
	}

	id := rec.Header().Get("X-Document-Id")
	if id == "" {
		t.Fatal("no X-Document-Id")
	}
	archived := do(t, h, http.MethodGet, "/v1/documents/"+id, "")
	if archived.Code != http.StatusOK || !bytes.Equal(archived.Body.Bytes(), stub.document) {
		t.Errorf("archived: %d %q", archived.Code, archived.Body.String())
	}
	if rec = do(t, h, http.MethodDelete, "/v1/documents/"+id, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: %d", rec.Code)
	}
	if rec = do(t, h, http.MethodGet, "/v1/documents/"+id, ""); rec.Code != http.StatusNotFound {
		t.Errorf("after delete: %d", rec.Code)
	}
}

func TestGetDocumentExtendsExpiry(t *testing.T) {
	kv := &memKV{hashes: map[string]map[string]string{}}
	g := newTestGateway(newStubService())
	g.Archive = &archive.DocumentArchive{KV: kv, Prefix: "test_", TTL: time.Hour}
	h := g.Handler(nil)

	rec := do(t, h, http.MethodPost, "/v1/documents", `{"template": "letter.docx", "archive": true}`)
	id := rec.Header().Get("X-Document-Id")
	if rec.Code != http.StatusOK || id == "" {
		t.Fatalf("render: %d id=%q", rec.Code, id)
	}
	if len(kv.expires) != 0 {
		t.Fatalf("expiry touched before read: %v", kv.expires)
	}
	if rec = do(t, h, http.MethodGet, "/v1/documents/"+id, ""); rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	if got := kv.expires["test_doc:"+id]; got != time.Hour {
		t.Errorf("expiry after read = %v, want 1h", got)
	}
}

func TestCreateDocumentRejects(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"no template", `{"format": "pdf"}`, http.StatusBadRequest},
		{"bad format", `{"template": "letter.docx", "format": "xls"}`, http.StatusBadRequest},
		{"unknown template", `{"template": "nope.docx"}`, http.StatusNotFound},
		{"broken json", `{"template": `, http.StatusBadRequest},
		{"bad block row", `{"template": "letter.docx", "values": {"items": [1, 2]}}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := newStubService()
			rec := do(t, newTestGateway(stub).Handler(nil), http.MethodPost, "/v1/documents", tc.body)
			if rec.Code != tc.status {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			if stub.created {
				t.Error("document created")
			}
		})
	}
}

func TestBodyLimit(t *testing.T) {
	g := newTestGateway(newStubService())
	g.MaxBodyBytes = 16
	rec := do(t, g.Handler(nil), http.MethodPost, "/v1/documents", `{"template": "letter.docx"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestRenderThrottle(t *testing.T) {
	g := newTestGateway(newStubService())
	g.Throttle = throttle.NewBucketStore[string](nil)
	g.Throttle.SetBucketGroup(RenderThrottleGroup, &throttle.BucketConf{Burst: 2, Increment: 1, Period: time.Hour})
	h := g.Handler(nil)

	body := `{"template": "letter.docx"}`
	for i := range 2 {
		if rec := do(t, h, http.MethodPost, "/v1/documents", body); rec.Code != http.StatusOK {
			t.Fatalf("render %d: %d %s", i, rec.Code, rec.Body.String())
		}
	}
	rec := do(t, h, http.MethodPost, "/v1/documents", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d", rec.Code)
	}
	if ra := rec.Header().Get("Retry-After"); ra == "" || ra == "0" {
		t.Errorf("Retry-After = %q", ra)
	}
	// other routes are not limited
	if rec = do(t, h, http.MethodGet, "/v1/fonts", ""); rec.Code != http.StatusOK {
		t.Errorf("fonts: %d", rec.Code)
	}
}

func TestRemoteErrors(t *testing.T) {
	stub := newStubService()
	stub.loginErr = &soap.Fault{Code: "soap:Server", String: "invalid login"}
	rec := do(t, newTestGateway(stub).Handler(nil), http.MethodGet, "/v1/fonts", "")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("login fault: status = %d", rec.Code)
	}
	if stub.logouts != 0 {
		t.Error("logout after failed login")
	}

	stub = newStubService()
	g := newTestGateway(stub)
	g.Session = func(ctx context.Context, fn func(ctx context.Context, c *livedocx.Client) error) error {
		return &soap.HTTPError{StatusCode: http.StatusServiceUnavailable, Status: "503 Service Unavailable"}
	}
	if rec = do(t, g.Handler(nil), http.MethodGet, "/v1/fonts", ""); rec.Code != http.StatusBadGateway {
		t.Errorf("http error: status = %d", rec.Code)
	}

	g.Session = func(ctx context.Context, fn func(ctx context.Context, c *livedocx.Client) error) error {
		return errors.New("disk on fire")
	}
	if rec = do(t, g.Handler(nil), http.MethodGet, "/v1/fonts", ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("unknown error: status = %d", rec.Code)
	}
}

func TestInvalidDocumentID(t *testing.T) {
	rec := do(t, newTestGateway(newStubService()).Handler(nil), http.MethodGet, "/v1/documents/not-a-uuid", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestTemplateNamesAndFonts(t *testing.T) {
	h := newTestGateway(newStubService()).Handler(nil)

	rec := do(t, h, http.MethodGet, "/v1/templates/letter.docx/names", "")
	var names TemplateNames
	if err := json.Unmarshal(rec.Body.Bytes(), &names); err != nil {
		t.Fatal(err)
	}
	if len(names.Fields) != 2 || names.Blocks == nil {
		t.Errorf("names = %+v", names)
	}

	rec = do(t, h, http.MethodGet, "/v1/fonts", "")
	if strings.TrimSpace(rec.Body.String()) != `["Arial","Verdana"]` {
		t.Errorf("fonts = %s", rec.Body.String())
	}

	if rec = do(t, h, http.MethodGet, "/v1/templates/letter.docx/history", ""); rec.Code != http.StatusNotFound {
		t.Errorf("history without ledger: %d", rec.Code)
	}
}

func TestBearerAuth(t *testing.T) {
	secret := []byte("gateway-secret")
	h := newTestGateway(newStubService()).Handler(&routing.BearerAuthWrapper{Secret: secret})

	if rec := do(t, h, http.MethodGet, "/v1/fonts", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK {
		t.Errorf("healthz: %d", rec.Code)
	}

	token, _ := sec.GenerateHMACSignedToken("", "billing", secret, time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/v1/fonts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("with token: %d", rec.Code)
	}
}

func TestDocumentFilename(t *testing.T) {
	for template, want := range map[string]string{
		"letter.docx":     "letter.pdf",
		"dir/invoice.rtf": "invoice.pdf",
		"noext":           "noext.pdf",
	} {
		if got := documentFilename(template, "PDF"); got != want {
			t.Errorf("documentFilename(%q) = %q, want %q", template, got, want)
		}
	}
}
