package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"futurecustomer/internal/model"
)

// WriteZip encodes the archive entries in order. Headers carry no modification
// time so the output is byte-stable.
func WriteZip(w io.Writer, archive *model.ExportArchive) error {
	zw := zip.NewWriter(w)
	for _, entry := range archive.Entries {
		f, err := zw.CreateHeader(&zip.FileHeader{
			Name:   entry.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			return fmt.Errorf("create %s: %w", entry.Name, err)
		}
		if _, err := f.Write(entry.Content); err != nil {
			return fmt.Errorf("write %s: %w", entry.Name, err)
		}
	}
	return zw.Close()
}

// Download builds the archive and encodes it as zip bytes
func Download(agents []model.Agent, baseline model.Round, future *model.Round) (*model.ExportDownload, error) {
	archive, err := Build(agents, baseline, future)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := WriteZip(&buf, archive); err != nil {
		return nil, err
	}
	return &model.ExportDownload{FileName: archive.FileName, Data: buf.Bytes()}, nil
}

// ReadZip decodes an archive produced by WriteZip
func ReadZip(data []byte) (*model.ExportArchive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	archive := &model.ExportArchive{FileName: model.ArchiveFileName}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		archive.Entries = append(archive.Entries, model.ArchiveEntry{Name: f.Name, Content: content})
	}
	return archive, nil
}
