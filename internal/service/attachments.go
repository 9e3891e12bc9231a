package service

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrAttachmentNotFound indicates an attachment path that does not name a file.
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrAttachmentType indicates an attachment whose content type is not accepted.
	ErrAttachmentType = errors.New("attachment type not allowed")
)

var allowedAttachmentTypes = []string{
	"application/pdf",
	"application/zip",
	"text/plain",
	"image/png",
	"image/jpeg",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// checkAttachments sniffs every attachment and returns the trimmed paths.
func checkAttachments(paths []string) ([]string, error) {
	checked := make([]string, 0, len(paths))
	for _, raw := range paths {
		path := strings.TrimSpace(raw)
		if path == "" {
			continue
		}

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			return nil, fmt.Errorf("%w: %s", ErrAttachmentNotFound, path)
		}

		mime, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to inspect attachment %s: %w", path, err)
		}
		if !attachmentTypeAllowed(mime) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrAttachmentType, path, mime.String())
		}

		checked = append(checked, path)
	}

	return checked, nil
}

func attachmentTypeAllowed(mime *mimetype.MIME) bool {
	for _, allowed := range allowedAttachmentTypes {
		if mime.Is(allowed) {
			return true
		}
	}
	return false
}
