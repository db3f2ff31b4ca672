package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeptools/gw-livedocx/sec"
)

func writeFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValuesMergesInOrder(t *testing.T) {
	dir := t.TempDir()
	jsonFile := writeFile(t, dir, "a.json", `{"name": "Ada", "zip": 10115, "items": [{"sku": "A1"}]}`)
	yamlFile := writeFile(t, dir, "b.yaml", "name: Grace\ncity: Arlington\n")
	tomlFile := writeFile(t, dir, "c.toml", "[[lines]]\ntext = \"first\"\n[[lines]]\ntext = \"second\"\n")

	values, err := loadValues([]string{jsonFile, yamlFile, tomlFile}, []string{"city=Berlin", "note=a=b"})
	if err != nil {
		t.Fatal(err)
	}
	if values["name"] != "Grace" || values["city"] != "Berlin" || values["note"] != "a=b" {
		t.Errorf("values = %v", values)
	}
	if values["zip"] != json.Number("10115") {
		t.Errorf("zip = %#v", values["zip"])
	}
	if _, ok := values["items"].([]any); !ok {
		t.Errorf("items = %T", values["items"])
	}
	if _, ok := values["lines"].([]map[string]any); !ok {
		t.Errorf("lines = %T", values["lines"])
	}

	if _, err = loadValues(nil, []string{"novalue"}); err == nil {
		t.Error("--set without = accepted")
	}
	if _, err = loadValues([]string{filepath.Join(dir, "missing.json")}, nil); err == nil {
		t.Error("missing file accepted")
	}
}

func TestWriteOutputRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pdf")
	if err := writeOutput(path, []byte("one"), false); err != nil {
		t.Fatal(err)
	}
	if err := writeOutput(path, []byte("two"), false); err == nil || !strings.Contains(err.Error(), "--force") {
		t.Errorf("error = %v", err)
	}
	if err := writeOutput(path, []byte("two"), true); err != nil {
		t.Fatal(err)
	}
	if data, _ := os.ReadFile(path); string(data) != "two" {
		t.Errorf("content = %q", data)
	}
}

func TestOutputName(t *testing.T) {
	if got := outputName("./tpl/letter.docx", "PDF"); got != "letter.pdf" {
		t.Errorf("got %q", got)
	}
}

func TestPageRangeFromFlags(t *testing.T) {
	if r := pageRange(metafilesCmd); r != nil {
		t.Errorf("range without flags = %+v", r)
	}
	if err := bitmapsCmd.Flags().Set("from", "2"); err != nil {
		t.Fatal(err)
	}
	r := pageRange(bitmapsCmd)
	if r == nil || r.From == nil || *r.From != 2 || r.To != nil {
		t.Errorf("range = %+v", r)
	}
}

func TestEncryptPasswordCommand(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	t.Setenv(sec.ConfKeyEnv, key)
	var out bytes.Buffer
	rootCmd.SetArgs([]string{"--app-root", t.TempDir(), "encrypt-password"})
	rootCmd.SetIn(strings.NewReader("hunter2\n"))
	rootCmd.SetOut(&out)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		if core != nil {
			core.RootCancel()
		}
	})
	if err := rootCmd.Execute(); err != nil {
		t.Fatal(err)
	}
	cipher, err := sec.NewXChaCha20Poly1305Cipher([]byte(key))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := cipher.DecryptString(strings.TrimSpace(out.String()))
	if err != nil || plain != "hunter2" {
		t.Errorf("decrypted = %q, %v", plain, err)
	}
}
