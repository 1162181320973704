package blueprint

import (
	"archive/zip"
	"fmt"
	"io"
	"regexp"
	"strings"

	"ckryptbit/internal/domain/models"
)

// defaultArchiveName is used when the project has no usable name.
const defaultArchiveName = "Projekt_Ckryptbit_Blueprint"

var nonAlnumRe = regexp.MustCompile(`[^A-Za-z0-9]+`)

// ArchiveName derives the download file name from the project name:
// runs of non-alphanumeric characters collapse to a single underscore.
func ArchiveName(projectName string) string {
	name := nonAlnumRe.ReplaceAllString(projectName, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = defaultArchiveName
	}
	return name + ".zip"
}

// writeArchive streams a zip holding every blueprint file at its relative
// path.
func writeArchive(w io.Writer, files []models.BlueprintFile) error {
	zw := zip.NewWriter(w)
	for _, file := range files {
		f, err := zw.Create(file.Name)
		if err != nil {
			return fmt.Errorf("failed to add %s to archive: %w", file.Name, err)
		}
		if _, err := f.Write([]byte(file.Content)); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}
	return zw.Close()
}
