package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Metadata describes one incoming document. It is created once per upload
// and mutated only to attach the detected language after extraction.
type Metadata struct {
	DocumentID       string
	FileName         string
	FileSize         int64
	Format           Format
	UploaderID       int64
	UploadedAt       time.Time
	UploaderUsername string
	Language         string
	SourceURL        string
	TransportFileID  string
}

func (m *Metadata) Validate() error {
	if strings.TrimSpace(m.FileName) == "" {
		return WrapError(ErrInvalidInput, "validate metadata", errors.New("file name is empty"))
	}
	if m.FileSize < 0 {
		return WrapError(ErrInvalidInput, "validate metadata", errors.New("file size is negative"))
	}
	if _, ok := FormatFromExtension(string(m.Format)); !ok {
		return WrapError(ErrInvalidInput, "validate metadata", fmt.Errorf("unknown format %q", m.Format))
	}
	if m.UploaderID <= 0 {
		return WrapError(ErrInvalidInput, "validate metadata", errors.New("uploader id must be positive"))
	}
	return nil
}
