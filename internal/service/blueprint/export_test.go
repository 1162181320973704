package blueprint

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"ckryptbit/internal/domain/models"
)

func TestArchiveName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My Shop", "My_Shop.zip"},
		{"shop/v2 (beta)!", "shop_v2_beta.zip"},
		{"", "Projekt_Ckryptbit_Blueprint.zip"},
		{"***", "Projekt_Ckryptbit_Blueprint.zip"},
		{"already_fine", "already_fine.zip"},
	}
	for _, tt := range tests {
		if got := ArchiveName(tt.in); got != tt.want {
			t.Errorf("ArchiveName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteArchive(t *testing.T) {
	files := []models.BlueprintFile{
		{Name: "README.md", Content: "# Shop"},
		{Name: "src/main.go", Content: "package main"},
	}

	var buf bytes.Buffer
	if err := writeArchive(&buf, files); err != nil {
		t.Fatalf("writeArchive: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("archive holds %d entries, want 2", len(zr.File))
	}
	for i, file := range files {
		entry := zr.File[i]
		if entry.Name != file.Name {
			t.Errorf("entry[%d] = %q, want %q", i, entry.Name, file.Name)
		}
		rc, err := entry.Open()
		if err != nil {
			t.Fatalf("open %s: %v", entry.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", entry.Name, err)
		}
		if string(content) != file.Content {
			t.Errorf("%s content = %q, want %q", entry.Name, content, file.Content)
		}
	}
}
