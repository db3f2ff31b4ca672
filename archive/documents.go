package archive

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/db/kvdb"
)

// Document is a rendered document kept in the archive
type Document struct {
	ID        string
	Format    string
	Data      []byte
	CreatedAt time.Time
}

// DocumentArchive keeps rendered documents in a KV database as hashes
// {format, data(base64), created_at} under "<Prefix>doc:<id>" for TTL
type DocumentArchive struct {
	KV     kvdb.Client
	Prefix string
	TTL    time.Duration // 0 = no expiration
	Logger *zap.SugaredLogger
}

var ErrInvalidID = errors.New("archive: invalid document id")

func (a *DocumentArchive) key(id string) string {
	return a.Prefix + "doc:" + id
}

func (a *DocumentArchive) logger() *zap.SugaredLogger {
	if a.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return a.Logger
}

// Put stores data and returns its new id
func (a *DocumentArchive) Put(ctx context.Context, format string, data []byte) (string, error) {
	id := uuid.NewString()
	fields := map[string]any{
		"format":     strings.ToUpper(format),
		"data":       base64.StdEncoding.EncodeToString(data),
		"created_at": strconv.FormatInt(time.Now().Unix(), 10),
	}
	if err := a.KV.SetFieldsWithExpiry(ctx, a.key(id), fields, a.TTL); err != nil {
		return "", err
	}
	a.logger().Debugw("document archived", "id", id, "format", fields["format"], "bytes", len(data))
	return id, nil
}

// Get returns (doc, found, err). An expired document is not found
func (a *DocumentArchive) Get(ctx context.Context, id string) (*Document, bool, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, false, ErrInvalidID
	}
	fields, err := a.KV.GetAllFields(ctx, a.key(id))
	if err != nil {
		return nil, false, err
	}
	if len(fields) == 0 {
		return nil, false, nil
	}
	data, err := base64.StdEncoding.DecodeString(fields["data"])
	if err != nil {
		return nil, false, fmt.Errorf("archive: document %s: %w", id, err)
	}
	doc := &Document{ID: id, Format: fields["format"], Data: data}
	if sec, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		doc.CreatedAt = time.Unix(sec, 0)
	}
	return doc, true, nil
}

// Delete returns whether the document existed
func (a *DocumentArchive) Delete(ctx context.Context, id string) (bool, error) {
	if err := uuid.Validate(id); err != nil {
		return false, ErrInvalidID
	}
	n, err := a.KV.Delete(ctx, a.key(id))
	return n > 0, err
}

// Touch extends the expiration of a document by TTL
func (a *DocumentArchive) Touch(ctx context.Context, id string) (bool, error) {
	if a.TTL <= 0 {
		return a.KV.Exists(ctx, a.key(id))
	}
	return a.KV.Expire(ctx, a.key(id), a.TTL)
}
