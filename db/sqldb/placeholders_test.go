package sqldb

import "testing"

func TestReplaceStaticPlaceholders(t *testing.T) {
	tests := []struct {
		sql    string
		prefix byte
		want   string
	}{
		{"SELECT * FROM t WHERE a = ? AND b = ?", '$', "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"SELECT * FROM t WHERE a = ?", '?', "SELECT * FROM t WHERE a = ?"},
		{"SELECT * FROM t WHERE a IN (??) AND b = ?", '$', "SELECT * FROM t WHERE a IN (??) AND b = $1"},
		{"SELECT 1", '$', "SELECT 1"},
		{"a = ?", 0, "a = ?"},
	}
	for _, tt := range tests {
		if got := ReplaceStaticPlaceholders(tt.sql, tt.prefix); got != tt.want {
			t.Errorf("ReplaceStaticPlaceholders(%q, %q) = %q, want %q", tt.sql, tt.prefix, got, tt.want)
		}
	}
}

func TestCheckIdentifier(t *testing.T) {
	for _, name := range []string{"events", "ledger.template_events", "_t1"} {
		if err := CheckIdentifier(name); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	for _, name := range []string{"", "1events", "events;", "a b", "a..b"} {
		if err := CheckIdentifier(name); err == nil {
			t.Errorf("%q accepted", name)
		}
	}
}
