package livedocx

import (
	"context"
	"fmt"
	"sync"
)

// call is one recorded Service invocation
type call struct {
	Op   string
	Args []any
}

// fakeService records calls and answers from canned values
type fakeService struct {
	mu    sync.Mutex
	calls []call

	templates   map[string]string // filename -> base64
	document    string
	pages       []string
	metafiles   []string
	names       []string
	listRows    [][]string
	logInErr    error
	logOutErr   error
	failOp      string // op name that returns failErr
	failErr     error
	loggedIn    bool
	fieldTables [][][]string
	blockTables map[string][][]string
}

func newFakeService() *fakeService {
	return &fakeService{
		templates:   make(map[string]string),
		blockTables: make(map[string][][]string),
	}
}

func (f *fakeService) record(op string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Op: op, Args: args})
	if f.failOp == op {
		return f.failErr
	}
	return nil
}

func (f *fakeService) ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.Op
	}
	return ops
}

func (f *fakeService) lastCall(op string) (call, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.calls) - 1; i >= 0; i-- {
		if f.calls[i].Op == op {
			return f.calls[i], true
		}
	}
	return call{}, false
}

func (f *fakeService) LogIn(_ context.Context, username string, password string) error {
	if err := f.record("LogIn", username, password); err != nil {
		return err
	}
	if f.logInErr != nil {
		return f.logInErr
	}
	f.loggedIn = true
	return nil
}

func (f *fakeService) LogOut(_ context.Context) error {
	if err := f.record("LogOut"); err != nil {
		return err
	}
	f.loggedIn = false
	return f.logOutErr
}

func (f *fakeService) CreateDocument(_ context.Context) error {
	return f.record("CreateDocument")
}

func (f *fakeService) SetFieldValues(_ context.Context, fieldValues [][]string) error {
	f.fieldTables = append(f.fieldTables, fieldValues)
	return f.record("SetFieldValues", fieldValues)
}

func (f *fakeService) SetBlockFieldValues(_ context.Context, blockName string, blockFieldValues [][]string) error {
	f.blockTables[blockName] = blockFieldValues
	return f.record("SetBlockFieldValues", blockName, blockFieldValues)
}

func (f *fakeService) SetLocalTemplate(_ context.Context, template string, format string) error {
	return f.record("SetLocalTemplate", template, format)
}

func (f *fakeService) SetRemoteTemplate(_ context.Context, filename string) error {
	return f.record("SetRemoteTemplate", filename)
}

func (f *fakeService) SetIgnoreSubTemplates(_ context.Context) error {
	return f.record("SetIgnoreSubTemplates")
}

func (f *fakeService) TemplateExists(_ context.Context, filename string) (bool, error) {
	if err := f.record("TemplateExists", filename); err != nil {
		return false, err
	}
	_, ok := f.templates[filename]
	return ok, nil
}

func (f *fakeService) DeleteTemplate(_ context.Context, filename string) error {
	if err := f.record("DeleteTemplate", filename); err != nil {
		return err
	}
	delete(f.templates, filename)
	return nil
}

func (f *fakeService) DownloadTemplate(_ context.Context, filename string) (string, error) {
	if err := f.record("DownloadTemplate", filename); err != nil {
		return "", err
	}
	t, ok := f.templates[filename]
	if !ok {
		return "", fmt.Errorf("fake: no template %s", filename)
	}
	return t, nil
}

func (f *fakeService) UploadTemplate(_ context.Context, template string, filename string) error {
	if err := f.record("UploadTemplate", template, filename); err != nil {
		return err
	}
	f.templates[filename] = template
	return nil
}

func (f *fakeService) ListTemplates(_ context.Context) ([][]string, error) {
	if err := f.record("ListTemplates"); err != nil {
		return nil, err
	}
	return f.listRows, nil
}

func (f *fakeService) RetrieveDocument(_ context.Context, format string) (string, error) {
	if err := f.record("RetrieveDocument", format); err != nil {
		return "", err
	}
	return f.document, nil
}

func (f *fakeService) GetAllBitmaps(_ context.Context, zoomFactor int, format string) ([]string, error) {
	if err := f.record("GetAllBitmaps", zoomFactor, format); err != nil {
		return nil, err
	}
	return f.pages, nil
}

func (f *fakeService) GetBitmaps(_ context.Context, fromPage int, toPage int, zoomFactor int, format string) ([]string, error) {
	if err := f.record("GetBitmaps", fromPage, toPage, zoomFactor, format); err != nil {
		return nil, err
	}
	return f.pages, nil
}

func (f *fakeService) GetAllMetafiles(_ context.Context) ([]string, error) {
	if err := f.record("GetAllMetafiles"); err != nil {
		return nil, err
	}
	return f.metafiles, nil
}

func (f *fakeService) GetMetafiles(_ context.Context, fromPage int, toPage int) ([]string, error) {
	if err := f.record("GetMetafiles", fromPage, toPage); err != nil {
		return nil, err
	}
	return f.metafiles, nil
}

func (f *fakeService) GetBlockNames(_ context.Context) ([]string, error) {
	if err := f.record("GetBlockNames"); err != nil {
		return nil, err
	}
	return f.names, nil
}

func (f *fakeService) GetFieldNames(_ context.Context) ([]string, error) {
	if err := f.record("GetFieldNames"); err != nil {
		return nil, err
	}
	return f.names, nil
}

func (f *fakeService) GetFontNames(_ context.Context) ([]string, error) {
	if err := f.record("GetFontNames"); err != nil {
		return nil, err
	}
	return f.names, nil
}

// Ensure fakeService implements Service interface
var _ Service = (*fakeService)(nil)
