package livedocx

import (
	"context"

	"github.com/zeptools/gw-livedocx/apis/livedocx/soap"
)

// Service enumerates the remote mail-merge operations.
// Binary payloads (template, document) are base64 text at this level
type Service interface {
	LogIn(ctx context.Context, username string, password string) error
	LogOut(ctx context.Context) error
	CreateDocument(ctx context.Context) error
	SetFieldValues(ctx context.Context, fieldValues [][]string) error
	SetBlockFieldValues(ctx context.Context, blockName string, blockFieldValues [][]string) error
	SetLocalTemplate(ctx context.Context, template string, format string) error
	SetRemoteTemplate(ctx context.Context, filename string) error
	SetIgnoreSubTemplates(ctx context.Context) error
	TemplateExists(ctx context.Context, filename string) (bool, error)
	DeleteTemplate(ctx context.Context, filename string) error
	DownloadTemplate(ctx context.Context, filename string) (string, error)
	UploadTemplate(ctx context.Context, template string, filename string) error
	ListTemplates(ctx context.Context) ([][]string, error)
	RetrieveDocument(ctx context.Context, format string) (string, error)
	GetAllBitmaps(ctx context.Context, zoomFactor int, format string) ([]string, error)
	GetBitmaps(ctx context.Context, fromPage int, toPage int, zoomFactor int, format string) ([]string, error)
	GetAllMetafiles(ctx context.Context) ([]string, error)
	GetMetafiles(ctx context.Context, fromPage int, toPage int) ([]string, error)
	GetBlockNames(ctx context.Context) ([]string, error)
	GetFieldNames(ctx context.Context) ([]string, error)
	GetFontNames(ctx context.Context) ([]string, error)
}

// Ensure soap.Client implements Service interface
var _ Service = (*soap.Client)(nil)
