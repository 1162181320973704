package blueprint

import (
	"strings"

	"ckryptbit/internal/domain/models"
)

// DeriveTree builds the hierarchical view of a flat file list. It is a
// pure function: each call returns fresh nodes and the input order decides
// sibling order. File names are assumed unique; the function does not
// dedupe.
func DeriveTree(files []models.BlueprintFile) []*models.TreeNode {
	var roots []*models.TreeNode
	// Folder nodes by full path, so shared prefixes merge.
	folders := make(map[string]*models.TreeNode)

	for i := range files {
		file := files[i]
		segments := strings.Split(file.Name, "/")

		var parent *models.TreeNode
		path := ""
		for _, seg := range segments[:len(segments)-1] {
			if path == "" {
				path = seg
			} else {
				path = path + "/" + seg
			}
			node, ok := folders[path]
			if !ok {
				node = &models.TreeNode{Name: seg, Path: path, Type: models.TreeNodeFolder}
				folders[path] = node
				if parent == nil {
					roots = append(roots, node)
				} else {
					parent.Children = append(parent.Children, node)
				}
			}
			parent = node
		}

		leaf := &models.TreeNode{
			Name: segments[len(segments)-1],
			Path: file.Name,
			Type: models.TreeNodeFile,
			File: &file,
		}
		if parent == nil {
			roots = append(roots, leaf)
		} else {
			parent.Children = append(parent.Children, leaf)
		}
	}
	return roots
}
