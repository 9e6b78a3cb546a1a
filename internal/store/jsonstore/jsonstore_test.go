package jsonstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/idilsaglam/mastertasks/internal/model"
)

func TestDecode_Empty(t *testing.T) {
	for _, in := range []string{"", "  ", "null", "[]"} {
		got, err := Decode([]byte(in))
		if err != nil {
			t.Fatalf("Decode(%q) err = %v, want nil", in, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("Decode(%q) = %#v, want empty non-nil slice", in, got)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	if _, err := Decode([]byte(`{"id":"x"}`)); err == nil {
		t.Fatal("Decode() err = nil, want non-nil")
	}
}

func TestEncode_WireFormat(t *testing.T) {
	b, err := Encode([]model.StoredTask{{
		ID:        "abc",
		Title:     "Buy milk",
		Category:  model.CategoryPersonal,
		CreatedAt: "2024-01-02T03:04:05.678Z",
		UpdatedAt: "2024-01-02T03:04:05.678Z",
	}})
	if err != nil {
		t.Fatalf("Encode() err = %v", err)
	}
	want := `[{"id":"abc","title":"Buy milk","completed":false,"category":"personal","createdAt":"2024-01-02T03:04:05.678Z","updatedAt":"2024-01-02T03:04:05.678Z"}]`
	if string(b) != want {
		t.Fatalf("Encode() = %s\nwant %s", b, want)
	}

	nilEnc, err := Encode(nil)
	if err != nil || string(nilEnc) != "[]" {
		t.Fatalf("Encode(nil) = %q, %v; want [] nil", nilEnc, err)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup", "tasks.json")
	in := []model.StoredTask{{ID: "1", Title: "a", Category: model.CategoryWork, CreatedAt: "2024-01-01T00:00:00.000Z"}}

	if err := WriteFile(path, in); err != nil {
		t.Fatalf("WriteFile() err = %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var out []model.StoredTask
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(out) != 1 || out[0].ID != "1" {
		t.Fatalf("read back %+v", out)
	}
}
