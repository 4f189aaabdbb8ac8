package telemetry

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput writes every HTTP exchange to "<dir>/<id>.http".
type FilesystemOutput struct {
	directory string
}

// NewFilesystemOutput creates dir when it does not exist and removes the
// dumps of a previous run from it, other files are left alone.
func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}

	previous, err := filepath.Glob(filepath.Join(dir, "*.http"))
	if err != nil {
		return FilesystemOutput{}, err
	}
	for _, path := range previous {
		info, err := os.Lstat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		err = os.Remove(path)
		if err != nil {
			return FilesystemOutput{}, err
		}
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Path(id string) string {
	return filepath.Join(o.directory, id+".http")
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(o.Path(id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to dump http exchange", "id", id, "err", err)
	}
}
