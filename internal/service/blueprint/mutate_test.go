package blueprint

import (
	"reflect"
	"testing"

	"ckryptbit/internal/domain/models"
)

func strptr(s string) *string { return &s }

func TestApplyCreateUpdateDelete(t *testing.T) {
	ops := []models.FileOperation{
		{Action: models.FileActionCreate, FileName: "a.txt", Content: strptr("x")},
		{Action: models.FileActionUpdate, FileName: "a.txt", Content: strptr("y")},
		{Action: models.FileActionDelete, FileName: "b.txt"},
	}
	got := Apply(nil, ops)
	want := []models.BlueprintFile{{Name: "a.txt", Language: "plaintext", Content: "y"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() = %+v, want %+v", got, want)
	}
}

func TestApplyCreateOnExistingMerges(t *testing.T) {
	files := []models.BlueprintFile{
		{Name: "a.go", Language: "go", Content: "package a"},
		{Name: "b.go", Language: "go", Content: "package b"},
	}
	got := Apply(files, []models.FileOperation{
		{Action: models.FileActionCreate, FileName: "a.go", Content: strptr("package a2")},
	})
	if len(got) != 2 {
		t.Fatalf("create on existing duplicated: %+v", got)
	}
	if got[0].Content != "package a2" {
		t.Errorf("content = %q", got[0].Content)
	}
	if got[0].Language != "go" {
		t.Errorf("language = %q, want existing value kept", got[0].Language)
	}
}

func TestApplyUpdateWithoutContentKeepsContent(t *testing.T) {
	files := []models.BlueprintFile{{Name: "a.py", Language: "python", Content: "pass"}}
	got := Apply(files, []models.FileOperation{
		{Action: models.FileActionUpdate, FileName: "a.py", Language: "python3"},
	})
	if got[0].Content != "pass" {
		t.Errorf("content = %q, want unchanged", got[0].Content)
	}
	if got[0].Language != "python3" {
		t.Errorf("language = %q", got[0].Language)
	}
}

func TestApplyUpdateOnMissingCreates(t *testing.T) {
	got := Apply(nil, []models.FileOperation{
		{Action: models.FileActionUpdate, FileName: "new.md", Content: strptr("# hi")},
	})
	if len(got) != 1 || got[0].Name != "new.md" || got[0].Content != "# hi" {
		t.Errorf("Apply() = %+v", got)
	}
}

func TestApplyDeleteMissingIsNoOp(t *testing.T) {
	files := []models.BlueprintFile{{Name: "keep.txt", Language: "plaintext"}}
	got := Apply(files, []models.FileOperation{
		{Action: models.FileActionDelete, FileName: "gone.txt"},
	})
	if !reflect.DeepEqual(got, files) {
		t.Errorf("Apply() = %+v, want unchanged", got)
	}
}

func TestApplyEmptyOpsReturnsEqualSnapshot(t *testing.T) {
	files := []models.BlueprintFile{
		{Name: "a.txt", Language: "plaintext", Content: "a"},
		{Name: "b.txt", Language: "plaintext", Content: "b"},
	}
	got := Apply(files, nil)
	if !reflect.DeepEqual(got, files) {
		t.Errorf("Apply() = %+v, want deep-equal input", got)
	}
	// And it must be a copy, not the same backing array.
	got[0].Content = "mutated"
	if files[0].Content != "a" {
		t.Error("Apply returned a view onto the input")
	}
}

func TestApplyOrdering(t *testing.T) {
	files := []models.BlueprintFile{
		{Name: "1.txt", Language: "plaintext"},
		{Name: "2.txt", Language: "plaintext"},
		{Name: "3.txt", Language: "plaintext"},
	}
	got := Apply(files, []models.FileOperation{
		{Action: models.FileActionDelete, FileName: "2.txt"},
		{Action: models.FileActionCreate, FileName: "4.txt", Content: strptr("")},
		{Action: models.FileActionCreate, FileName: "5.txt", Content: strptr("")},
	})
	names := make([]string, len(got))
	for i, f := range got {
		names[i] = f.Name
	}
	want := []string{"1.txt", "3.txt", "4.txt", "5.txt"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}
}

func TestApplyNamesStayUnique(t *testing.T) {
	got := Apply(nil, []models.FileOperation{
		{Action: models.FileActionCreate, FileName: "a.txt", Content: strptr("1")},
		{Action: models.FileActionCreate, FileName: "a.txt", Content: strptr("2")},
		{Action: models.FileActionUpdate, FileName: "a.txt", Content: strptr("3")},
	})
	if len(got) != 1 {
		t.Fatalf("got %d files, want 1: %+v", len(got), got)
	}
	if got[0].Content != "3" {
		t.Errorf("content = %q", got[0].Content)
	}
}

func TestSetContent(t *testing.T) {
	files := []models.BlueprintFile{{Name: "a.txt", Language: "plaintext", Content: "old"}}
	got := SetContent(files, "a.txt", "new")
	if got[0].Content != "new" {
		t.Errorf("content = %q", got[0].Content)
	}

	// Saving an edit of a file deleted meanwhile recreates it.
	got = SetContent(nil, "ghost.txt", "still here")
	if len(got) != 1 || got[0].Content != "still here" {
		t.Errorf("SetContent on missing file = %+v", got)
	}
}
