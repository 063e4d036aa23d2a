package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// Unzip extracts every file in the archive into destDir (flattened, no
// nested directories; the extract ships as a flat set of CSVs). Returns
// the extracted paths.
func Unzip(src, destDir string) ([]string, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open zip %s", src)
	}
	defer zr.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "fetcher: create dir %s", destDir)
	}

	var paths []string
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}

		name := filepath.Base(zf.Name)
		if name == "." || strings.HasPrefix(name, "..") {
			continue
		}
		dest := filepath.Join(destDir, name)

		if err := extractOne(zf, dest); err != nil {
			return nil, err
		}
		paths = append(paths, dest)
	}

	return paths, nil
}

func extractOne(zf *zip.File, dest string) error {
	rc, err := zf.Open()
	if err != nil {
		return eris.Wrapf(err, "fetcher: open %s in zip", zf.Name)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return eris.Wrapf(err, "fetcher: create %s", dest)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return eris.Wrapf(err, "fetcher: extract %s", zf.Name)
	}
	return nil
}
