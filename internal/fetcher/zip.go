package fetcher

import (
	"archive/zip"
	"bytes"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/rotisserie/eris"
)

// isZIP reports whether the location's path names a ZIP archive. Query
// strings on URLs are ignored.
func isZIP(location string) bool {
	p := location
	if u, err := url.Parse(location); err == nil && len(u.Scheme) > 1 {
		p = u.Path
	}
	return strings.EqualFold(path.Ext(p), ".zip")
}

// openZIPSingle reads the whole archive from rc and returns the one file it
// contains. Directories are ignored. rc is always closed.
func openZIPSingle(rc io.ReadCloser) (io.ReadCloser, error) {
	data, err := io.ReadAll(rc)
	rc.Close() //nolint:errcheck
	if err != nil {
		return nil, eris.Wrap(err, "zip: read archive")
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, eris.Wrap(err, "zip: open archive")
	}

	// Filter to only files (skip directories)
	var files []*zip.File
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			files = append(files, f)
		}
	}

	if len(files) != 1 {
		return nil, eris.Errorf("zip: expected exactly 1 file, got %d", len(files))
	}

	entry, err := files[0].Open()
	if err != nil {
		return nil, eris.Wrapf(err, "zip: open entry %s", files[0].Name)
	}
	return entry, nil
}
