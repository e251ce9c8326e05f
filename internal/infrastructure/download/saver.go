package download

import (
	"errors"
	"fmt"
	"os"

	"github.com/khanhnv2901/talos-cli/internal/infrastructure/api"
	"github.com/khanhnv2901/talos-cli/internal/security"
	"github.com/khanhnv2901/talos-cli/internal/shared/constants"
)

// FileSaver writes exported documents into a fixed output directory.
type FileSaver struct {
	dir string
}

func NewFileSaver(dir string) *FileSaver {
	if dir == "" {
		dir = "."
	}
	return &FileSaver{dir: dir}
}

// Save writes doc under the output directory and returns the absolute path.
// An existing file with the same name is overwritten.
func (s *FileSaver) Save(doc *api.Document) (string, error) {
	if doc == nil {
		return "", errors.New("document is nil")
	}
	name := doc.Filename
	if name == "" {
		name = constants.ReportFilename
	}
	if err := security.ValidateFilename(name); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.dir, constants.DefaultDirPerm); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path, err := security.ResolveWithin(s.dir, name)
	if err != nil {
		return "", fmt.Errorf("resolve output path: %w", err)
	}

	tmp := path + ".part"
	if err := os.WriteFile(tmp, doc.Data, constants.DefaultFilePerm); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("finalize document: %w", err)
	}
	return path, nil
}
