package blueprint

import "ckryptbit/internal/domain/models"

// defaultLanguage is used when an operation creates a file without naming
// its language.
const defaultLanguage = "plaintext"

// Apply runs a batch of file operations against a snapshot of the file
// list and returns the resulting list; the input is never mutated.
//
// The semantics are deliberately lenient toward model output: create on an
// existing path merges like an update, update on a missing path creates,
// delete on a missing path is a no-op. Surviving files keep their relative
// order and new files are appended in operation order. File names stay
// unique throughout.
func Apply(files []models.BlueprintFile, ops []models.FileOperation) []models.BlueprintFile {
	out := make([]models.BlueprintFile, len(files))
	copy(out, files)

	for _, op := range ops {
		idx := indexOf(out, op.FileName)
		switch op.Action {
		case models.FileActionCreate, models.FileActionUpdate:
			if idx >= 0 {
				f := &out[idx]
				if op.Content != nil {
					f.Content = *op.Content
				}
				if op.Language != "" {
					f.Language = op.Language
				}
				continue
			}
			created := models.BlueprintFile{Name: op.FileName, Language: op.Language}
			if created.Language == "" {
				created.Language = defaultLanguage
			}
			if op.Content != nil {
				created.Content = *op.Content
			}
			out = append(out, created)

		case models.FileActionDelete:
			if idx >= 0 {
				out = append(out[:idx], out[idx+1:]...)
			}
		}
	}
	return out
}

// SetContent overwrites one file's content, committing an editor buffer
// back into the snapshot. It shares Apply's upsert semantics, so saving an
// edit of a file the model deleted meanwhile recreates it.
func SetContent(files []models.BlueprintFile, name, content string) []models.BlueprintFile {
	return Apply(files, []models.FileOperation{{
		Action:   models.FileActionUpdate,
		FileName: name,
		Content:  &content,
	}})
}

func indexOf(files []models.BlueprintFile, name string) int {
	for i := range files {
		if files[i].Name == name {
			return i
		}
	}
	return -1
}
