// Package archive extracts zip archives into named in-memory members.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
)

// Member is one extracted file.
type Member struct {
	Name string
	Data []byte
}

// ErrInvalidArchive indicates the bytes are not a readable zip archive
type ErrInvalidArchive struct {
	Err error
}

func (e *ErrInvalidArchive) Error() string {
	return fmt.Sprintf("invalid archive: %v", e.Err)
}

func (e *ErrInvalidArchive) Unwrap() error {
	return e.Err
}

// Extract reads every regular file of a zip archive, in central directory order.
//
// Directories are skipped. The context is checked between members.
func Extract(ctx context.Context, data []byte) ([]Member, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ErrInvalidArchive{Err: err}
	}

	members := make([]Member, 0, len(reader.File))
	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if file.FileInfo().IsDir() {
			continue
		}

		content, err := readFile(file)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", file.Name, err)
		}
		members = append(members, Member{Name: file.Name, Data: content})
	}
	return members, nil
}

func readFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}
