package soap

import "context"

// Wire names of the mail-merge operations
const (
	OpLogIn                 = "LogIn"
	OpLogOut                = "LogOut"
	OpCreateDocument        = "CreateDocument"
	OpSetFieldValues        = "SetFieldValues"
	OpSetBlockFieldValues   = "SetBlockFieldValues"
	OpSetLocalTemplate      = "SetLocalTemplate"
	OpSetRemoteTemplate     = "SetRemoteTemplate"
	OpSetIgnoreSubTemplates = "SetIgnoreSubTemplates"
	OpTemplateExists        = "TemplateExists"
	OpDeleteTemplate        = "DeleteTemplate"
	OpDownloadTemplate      = "DownloadTemplate"
	OpUploadTemplate        = "UploadTemplate"
	OpListTemplates         = "ListTemplates"
	OpRetrieveDocument      = "RetrieveDocument"
	OpGetAllBitmaps         = "GetAllBitmaps"
	OpGetBitmaps            = "GetBitmaps"
	OpGetAllMetafiles       = "GetAllMetafiles"
	OpGetMetafiles          = "GetMetafiles"
	OpGetBlockNames         = "GetBlockNames"
	OpGetFieldNames         = "GetFieldNames"
	OpGetFontNames          = "GetFontNames"
)

// ArrayOfString is the service's string[] shape
type ArrayOfString struct {
	Strings []string `xml:"string"`
}

// ArrayOfArrayOfString is the service's string[][] shape
type ArrayOfArrayOfString struct {
	Rows []ArrayOfString `xml:"ArrayOfString"`
}

func NewArrayOfArrayOfString(rows [][]string) ArrayOfArrayOfString {
	arr := ArrayOfArrayOfString{Rows: make([]ArrayOfString, len(rows))}
	for i, row := range rows {
		arr.Rows[i] = ArrayOfString{Strings: row}
	}
	return arr
}

// values: nil when the element was absent, non-nil (maybe empty) when present
func (a *ArrayOfString) values() []string {
	if a == nil {
		return nil
	}
	if a.Strings == nil {
		return []string{}
	}
	return a.Strings
}

func (a *ArrayOfArrayOfString) values() [][]string {
	if a == nil {
		return nil
	}
	rows := make([][]string, len(a.Rows))
	for i := range a.Rows {
		rows[i] = a.Rows[i].values()
	}
	return rows
}

// pageArray accepts page payloads as <string> or <base64Binary> items
type pageArray struct {
	Strings []string `xml:"string"`
	Binary  []string `xml:"base64Binary"`
}

func (a *pageArray) values() []string {
	if a == nil {
		return nil
	}
	pages := make([]string, 0, len(a.Strings)+len(a.Binary))
	pages = append(pages, a.Strings...)
	return append(pages, a.Binary...)
}

//---- Session ----

type logInParams struct {
	Username string `xml:"username"`
	Password string `xml:"password"`
}

func (c *Client) LogIn(ctx context.Context, username string, password string) error {
	return c.Call(ctx, OpLogIn, &logInParams{Username: username, Password: password}, nil)
}

func (c *Client) LogOut(ctx context.Context) error {
	return c.Call(ctx, OpLogOut, nil, nil)
}

func (c *Client) SetIgnoreSubTemplates(ctx context.Context) error {
	return c.Call(ctx, OpSetIgnoreSubTemplates, nil, nil)
}

//---- Merge Data ----

type setFieldValuesParams struct {
	FieldValues ArrayOfArrayOfString `xml:"fieldValues"`
}

func (c *Client) SetFieldValues(ctx context.Context, fieldValues [][]string) error {
	return c.Call(ctx, OpSetFieldValues, &setFieldValuesParams{
		FieldValues: NewArrayOfArrayOfString(fieldValues),
	}, nil)
}

type setBlockFieldValuesParams struct {
	BlockName        string               `xml:"blockName"`
	BlockFieldValues ArrayOfArrayOfString `xml:"blockFieldValues"`
}

func (c *Client) SetBlockFieldValues(ctx context.Context, blockName string, blockFieldValues [][]string) error {
	return c.Call(ctx, OpSetBlockFieldValues, &setBlockFieldValuesParams{
		BlockName:        blockName,
		BlockFieldValues: NewArrayOfArrayOfString(blockFieldValues),
	}, nil)
}

func (c *Client) CreateDocument(ctx context.Context) error {
	return c.Call(ctx, OpCreateDocument, nil, nil)
}

//---- Templates ----

type setLocalTemplateParams struct {
	Template string `xml:"template"` // base64
	Format   string `xml:"format"`
}

func (c *Client) SetLocalTemplate(ctx context.Context, template string, format string) error {
	return c.Call(ctx, OpSetLocalTemplate, &setLocalTemplateParams{Template: template, Format: format}, nil)
}

type filenameParams struct {
	Filename string `xml:"filename"`
}

func (c *Client) SetRemoteTemplate(ctx context.Context, filename string) error {
	return c.Call(ctx, OpSetRemoteTemplate, &filenameParams{Filename: filename}, nil)
}

type templateExistsResult struct {
	Result bool `xml:"TemplateExistsResult"`
}

func (c *Client) TemplateExists(ctx context.Context, filename string) (bool, error) {
	var res templateExistsResult
	if err := c.Call(ctx, OpTemplateExists, &filenameParams{Filename: filename}, &res); err != nil {
		return false, err
	}
	return res.Result, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, filename string) error {
	return c.Call(ctx, OpDeleteTemplate, &filenameParams{Filename: filename}, nil)
}

type downloadTemplateResult struct {
	Result string `xml:"DownloadTemplateResult"`
}

func (c *Client) DownloadTemplate(ctx context.Context, filename string) (string, error) {
	var res downloadTemplateResult
	if err := c.Call(ctx, OpDownloadTemplate, &filenameParams{Filename: filename}, &res); err != nil {
		return "", err
	}
	return res.Result, nil
}

type uploadTemplateParams struct {
	Template string `xml:"template"` // base64
	Filename string `xml:"filename"`
}

func (c *Client) UploadTemplate(ctx context.Context, template string, filename string) error {
	return c.Call(ctx, OpUploadTemplate, &uploadTemplateParams{Template: template, Filename: filename}, nil)
}

type listTemplatesResult struct {
	Result *ArrayOfArrayOfString `xml:"ListTemplatesResult"`
}

func (c *Client) ListTemplates(ctx context.Context) ([][]string, error) {
	var res listTemplatesResult
	if err := c.Call(ctx, OpListTemplates, nil, &res); err != nil {
		return nil, err
	}
	return res.Result.values(), nil
}

//---- Rendering ----

type retrieveDocumentParams struct {
	Format string `xml:"format"`
}

type retrieveDocumentResult struct {
	Result string `xml:"RetrieveDocumentResult"`
}

func (c *Client) RetrieveDocument(ctx context.Context, format string) (string, error) {
	var res retrieveDocumentResult
	if err := c.Call(ctx, OpRetrieveDocument, &retrieveDocumentParams{Format: format}, &res); err != nil {
		return "", err
	}
	return res.Result, nil
}

type getAllBitmapsParams struct {
	ZoomFactor int    `xml:"zoomFactor"`
	Format     string `xml:"format"`
}

type getAllBitmapsResult struct {
	Result *pageArray `xml:"GetAllBitmapsResult"`
}

func (c *Client) GetAllBitmaps(ctx context.Context, zoomFactor int, format string) ([]string, error) {
	var res getAllBitmapsResult
	if err := c.Call(ctx, OpGetAllBitmaps, &getAllBitmapsParams{ZoomFactor: zoomFactor, Format: format}, &res); err != nil {
		return nil, err
	}
	return res.Result.values(), nil
}

type getBitmapsParams struct {
	FromPage   int    `xml:"fromPage"`
	ToPage     int    `xml:"toPage"`
	ZoomFactor int    `xml:"zoomFactor"`
	Format     string `xml:"format"`
}

type getBitmapsResult struct {
	Result *pageArray `xml:"GetBitmapsResult"`
}

func (c *Client) GetBitmaps(ctx context.Context, fromPage int, toPage int, zoomFactor int, format string) ([]string, error) {
	var res getBitmapsResult
	params := &getBitmapsParams{FromPage: fromPage, ToPage: toPage, ZoomFactor: zoomFactor, Format: format}
	if err := c.Call(ctx, OpGetBitmaps, params, &res); err != nil {
		return nil, err
	}
	return res.Result.values(), nil
}

type getAllMetafilesResult struct {
	Result *pageArray `xml:"GetAllMetafilesResult"`
}

func (c *Client) GetAllMetafiles(ctx context.Context) ([]string, error) {
	var res getAllMetafilesResult
	if err := c.Call(ctx, OpGetAllMetafiles, nil, &res); err != nil {
		return nil, err
	}
	return res.Result.values(), nil
}

type pageRangeParams struct {
	FromPage int `xml:"fromPage"`
	ToPage   int `xml:"toPage"`
}

type getMetafilesResult struct {
	Result *pageArray `xml:"GetMetafilesResult"`
}

func (c *Client) GetMetafiles(ctx context.Context, fromPage int, toPage int) ([]string, error) {
	var res getMetafilesResult
	if err := c.Call(ctx, OpGetMetafiles, &pageRangeParams{FromPage: fromPage, ToPage: toPage}, &res); err != nil {
		return nil, err
	}
	return res.Result.values(), nil
}

//---- Introspection ----

type getBlockNamesResult struct {
	Result *ArrayOfString `xml:"GetBlockNamesResult"`
}

func (c *Client) GetBlockNames(ctx context.Context) ([]string, error) {
	var res getBlockNamesResult
	if err := c.Call(ctx, OpGetBlockNames, nil, &res); err != nil {
		return nil, err
	}
	return res.Result.values(), nil
}

type getFieldNamesResult struct {
	Result *ArrayOfString `xml:"GetFieldNamesResult"`
}

func (c *Client) GetFieldNames(ctx context.Context) ([]string, error) {
	var res getFieldNamesResult
	if err := c.Call(ctx, OpGetFieldNames, nil, &res); err != nil {
		return nil, err
	}
	return res.Result.values(), nil
}

type getFontNamesResult struct {
	Result *ArrayOfString `xml:"GetFontNamesResult"`
}

func (c *Client) GetFontNames(ctx context.Context) ([]string, error) {
	var res getFontNamesResult
	if err := c.Call(ctx, OpGetFontNames, nil, &res); err != nil {
		return nil, err
	}
	return res.Result.values(), nil
}
