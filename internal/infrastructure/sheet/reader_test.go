package sheet

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWorkbookFiltersIncompleteRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addresses.xlsx")
	rows := [][]string{
		{"0xA1", "key1", "ignored"},
		{"", "key2"},
		{"0xA3", ""},
		{"0xA4", "key4"},
		{"0xA5"},
		{"0xA6", "key6"},
	}
	if err := WriteWorkbook(path, "Sheet1", []string{"address", "privatekey", "note"}, rows); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	credentials, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"0xA1", "0xA4", "0xA6"}
	if len(credentials) != len(want) {
		t.Fatalf("expected %d credentials, got %d: %+v", len(want), len(credentials), credentials)
	}
	for i, address := range want {
		if credentials[i].Address != address {
			t.Errorf("credential %d: expected %s, got %s", i, address, credentials[i].Address)
		}
	}
	if credentials[1].PrivateKey != "key4" {
		t.Errorf("expected key4, got %q", credentials[1].PrivateKey)
	}
}

func TestLoadMatchesHeaderCaseInsensitively(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addresses.xlsx")
	if err := WriteWorkbook(path, "Accounts", []string{" Address ", "PrivateKey"}, [][]string{{"0xB1", "k1"}}); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	credentials, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(credentials) != 1 || credentials[0].Address != "0xB1" || credentials[0].PrivateKey != "k1" {
		t.Fatalf("unexpected credentials: %+v", credentials)
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	credentials, err := Load(filepath.Join(t.TempDir(), "missing.xlsx"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if credentials == nil || len(credentials) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", credentials)
	}
}

func TestLoadNoValidRowsReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addresses.xlsx")
	if err := WriteWorkbook(path, "Sheet1", []string{"address", "key"}, [][]string{{"0xC1", "k"}}); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	credentials, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(credentials) != 0 {
		t.Fatalf("expected no credentials, got %+v", credentials)
	}
}

func TestLoadCorruptWorkbookReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a zip archive"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	credentials, err := Load(path)
	if err == nil {
		t.Fatal("expected error for corrupt workbook")
	}
	if len(credentials) != 0 {
		t.Fatalf("expected empty credentials, got %+v", credentials)
	}
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addresses.csv")
	content := "\ufeffaddress,privatekey\n0xD1,k1\n0xD2,\n0xD3,k3,extra\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	credentials, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(credentials) != 2 || credentials[0].Address != "0xD1" || credentials[1].Address != "0xD3" {
		t.Fatalf("unexpected credentials: %+v", credentials)
	}
}

func TestWriteSampleRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "addresses_sample.xlsx")
	if err := WriteSample(path); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	credentials, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(credentials) != len(sampleRows) {
		t.Fatalf("expected %d sample credentials, got %d", len(sampleRows), len(credentials))
	}
	if credentials[2].PrivateKey != sampleRows[2][1] {
		t.Errorf("unexpected key %q", credentials[2].PrivateKey)
	}
}
