// Package zip bundles lesson exports.
package zip

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// Asset is one file of an archive.
type Asset struct {
	Filename string
	MIME     string
	Data     []byte
	Modified time.Time
}

// WriteArchive streams assets as a zip archive to w. Duplicate file names get
// a numeric suffix; empty assets are skipped.
func WriteArchive(w io.Writer, assets []Asset) error {
	zw := zip.NewWriter(w)
	seen := make(map[string]int, len(assets))
	for _, asset := range assets {
		if len(asset.Data) == 0 {
			continue
		}
		name := uniqueName(seen, asset.Filename)
		header := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: asset.Modified}
		if header.Modified.IsZero() {
			header.Modified = time.Now()
		}
		if asset.MIME != "" {
			header.Comment = asset.MIME
		}
		fw, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("zip create %s: %w", name, err)
		}
		if _, err := fw.Write(asset.Data); err != nil {
			return fmt.Errorf("zip write %s: %w", name, err)
		}
	}
	return zw.Close()
}

func uniqueName(seen map[string]int, name string) string {
	name = strings.TrimLeft(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
	if name == "" {
		name = "file"
	}
	n := seen[name]
	seen[name] = n + 1
	if n == 0 {
		return name
	}
	ext := path.Ext(name)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(name, ext), n, ext)
}
