package archive

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zeptools/gw-livedocx/db/sqldb"
	"github.com/zeptools/gw-livedocx/sec"
)

const DefaultLedgerTable = "livedocx_template_events"

// Template actions recorded by the ledger
const (
	ActionUpload   = "upload"
	ActionDelete   = "delete"
	ActionDownload = "download"
	ActionSelect   = "select"
)

// Event is one template operation performed against the remote service
type Event struct {
	Template string
	Action   string
	Size     int64
	SHA256   string // hex digest of the template bytes. empty when no bytes were moved
	At       time.Time
}

// NewEvent fills Size and SHA256 from data
func NewEvent(template string, action string, data []byte) Event {
	e := Event{Template: template, Action: action, At: time.Now().UTC()}
	if data != nil {
		e.Size = int64(len(data))
		e.SHA256 = sec.HashHexSHA256(data)
	}
	return e
}

// TemplateLedger records template operations in a SQL database
type TemplateLedger struct {
	DB     sqldb.Client
	Table  string // DefaultLedgerTable if empty. must be a plain SQL identifier
	Logger *zap.SugaredLogger
}

// table is spliced into every statement, so it must be a plain identifier
func (l *TemplateLedger) table() (string, error) {
	if l.Table == "" {
		return DefaultLedgerTable, nil
	}
	if err := sqldb.CheckIdentifier(l.Table); err != nil {
		return "", fmt.Errorf("ledger: %w", err)
	}
	return l.Table, nil
}

// EnsureSchema creates the ledger table if missing
func (l *TemplateLedger) EnsureSchema(ctx context.Context) error {
	table, err := l.table()
	if err != nil {
		return err
	}
	idCol := "id BIGSERIAL PRIMARY KEY"
	if l.DB.GetConf().Type == "mysql" {
		idCol = "id BIGINT AUTO_INCREMENT PRIMARY KEY"
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s,
	template VARCHAR(255) NOT NULL,
	action VARCHAR(16) NOT NULL,
	size BIGINT NOT NULL,
	sha256 CHAR(64) NOT NULL,
	at TIMESTAMP NOT NULL
)`, table, idCol)
	_, err = l.DB.Exec(ctx, ddl)
	return err
}

func (l *TemplateLedger) Record(ctx context.Context, e Event) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	table, err := l.table()
	if err != nil {
		return err
	}
	query := sqldb.Rebind(l.DB, fmt.Sprintf(
		"INSERT INTO %s (template, action, size, sha256, at) VALUES (?, ?, ?, ?, ?)", table))
	if _, err = l.DB.Exec(ctx, query, e.Template, e.Action, e.Size, e.SHA256, e.At); err != nil {
		return fmt.Errorf("ledger: record %s %s: %w", e.Action, e.Template, err)
	}
	if l.Logger != nil {
		l.Logger.Debugw("template event recorded", "template", e.Template, "action", e.Action, "size", e.Size)
	}
	return nil
}

// History returns up to limit events of template, newest first
func (l *TemplateLedger) History(ctx context.Context, template string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	table, err := l.table()
	if err != nil {
		return nil, err
	}
	query := sqldb.Rebind(l.DB, fmt.Sprintf(
		"SELECT template, action, size, sha256, at FROM %s WHERE template = ? ORDER BY at DESC, id DESC LIMIT %d",
		table, limit))
	rows, err := l.DB.QueryRows(ctx, query, template)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var events []Event
	for rows.Next() {
		var e Event
		if err = rows.Scan(&e.Template, &e.Action, &e.Size, &e.SHA256, &e.At); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
