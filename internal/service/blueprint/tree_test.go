package blueprint

import (
	"testing"

	"ckryptbit/internal/domain/models"
)

func TestDeriveTree(t *testing.T) {
	files := []models.BlueprintFile{
		{Name: "src/a.ts", Language: "typescript"},
		{Name: "src/b/c.ts", Language: "typescript"},
	}
	roots := DeriveTree(files)

	if len(roots) != 1 {
		t.Fatalf("got %d roots, want 1", len(roots))
	}
	src := roots[0]
	if src.Name != "src" || src.Type != models.TreeNodeFolder {
		t.Fatalf("root = %+v", src)
	}
	if len(src.Children) != 2 {
		t.Fatalf("src has %d children, want 2", len(src.Children))
	}
	if src.Children[0].Name != "a.ts" || src.Children[0].Type != models.TreeNodeFile {
		t.Errorf("first child = %+v", src.Children[0])
	}
	b := src.Children[1]
	if b.Name != "b" || b.Type != models.TreeNodeFolder {
		t.Fatalf("second child = %+v", b)
	}
	if len(b.Children) != 1 || b.Children[0].Name != "c.ts" {
		t.Errorf("b children = %+v", b.Children)
	}
	if b.Children[0].Path != "src/b/c.ts" {
		t.Errorf("leaf path = %q", b.Children[0].Path)
	}
	if b.Children[0].File == nil || b.Children[0].File.Name != "src/b/c.ts" {
		t.Errorf("leaf file = %+v", b.Children[0].File)
	}
}

func TestDeriveTreeRootLevelFiles(t *testing.T) {
	files := []models.BlueprintFile{
		{Name: "README.md"},
		{Name: "src/main.go"},
		{Name: "go.mod"},
	}
	roots := DeriveTree(files)
	if len(roots) != 3 {
		t.Fatalf("got %d roots, want 3", len(roots))
	}
	// Input order decides sibling order.
	wantNames := []string{"README.md", "src", "go.mod"}
	for i, want := range wantNames {
		if roots[i].Name != want {
			t.Errorf("roots[%d] = %q, want %q", i, roots[i].Name, want)
		}
	}
}

func TestDeriveTreeEmpty(t *testing.T) {
	if roots := DeriveTree(nil); len(roots) != 0 {
		t.Errorf("DeriveTree(nil) = %+v", roots)
	}
}

func TestDeriveTreeIsPure(t *testing.T) {
	files := []models.BlueprintFile{{Name: "src/a.ts"}}
	first := DeriveTree(files)
	second := DeriveTree(files)
	if first[0] == second[0] {
		t.Error("calls share nodes; tree must be rebuilt fresh")
	}
}
