package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/satvikmishra44/taskhub/config"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/satvikmishra44/taskhub/storage"
)

const (
	pdfMIME          = "application/pdf"
	attachmentPrefix = "tasks"

	msgOnlyPDF = "Only PDF files allowed"
)

// FileInput is an uploaded file as received by the transport
type FileInput struct {
	Name string
	Size int64
	// ContentType is the type declared by the client, may be empty
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// Upload is a file that passed validation
type Upload struct {
	FileInput
}

// AttachmentService validates uploads and tracks their stored references.
type AttachmentService struct {
	storage      storage.Interface
	maxFiles     int
	maxSize      int64
	publicPrefix string
	now          func() time.Time
}

// NewAttachmentService creates a new attachment service.
func NewAttachmentService(st storage.Interface, conf *config.Attachment, publicPrefix string) *AttachmentService {
	s := &AttachmentService{
		storage:      st,
		maxFiles:     3,
		maxSize:      10 << 20,
		publicPrefix: "/" + strings.Trim(publicPrefix, "/"),
		now:          time.Now,
	}
	if conf != nil {
		if conf.MaxFiles > 0 {
			s.maxFiles = conf.MaxFiles
		}
		if conf.MaxSize > 0 {
			s.maxSize = conf.MaxSize
		}
	}
	return s
}

// MaxFiles returns the attachment limit per task
func (s *AttachmentService) MaxFiles() int { return s.maxFiles }

// Validate checks file count, size and type. Every file must be a PDF both
// by declared type and by content.
func (s *AttachmentService) Validate(files []FileInput) ([]Upload, error) {
	if len(files) == 0 {
		return nil, ecode.BadRequest("At least one PDF attachment is required")
	}
	if len(files) > s.maxFiles {
		return nil, ecode.BadRequest(fmt.Sprintf("At most %d attachments are allowed", s.maxFiles))
	}

	uploads := make([]Upload, 0, len(files))
	for _, f := range files {
		if f.Size > s.maxSize {
			return nil, ecode.BadRequest(fmt.Sprintf("File '%s' exceeds the maximum size of %d bytes", f.Name, s.maxSize))
		}
		if f.ContentType != "" {
			declared, _, err := mime.ParseMediaType(f.ContentType)
			if err != nil || declared != pdfMIME {
				return nil, ecode.BadRequest(msgOnlyPDF)
			}
		}
		ok, err := sniffPDF(f)
		if err != nil {
			return nil, ecode.Internal("", err)
		}
		if !ok {
			return nil, ecode.BadRequest(msgOnlyPDF)
		}
		uploads = append(uploads, Upload{FileInput: f})
	}
	return uploads, nil
}

func sniffPDF(f FileInput) (bool, error) {
	if f.Open == nil {
		return false, nil
	}
	r, err := f.Open()
	if err != nil {
		return false, fmt.Errorf("open upload %q: %w", f.Name, err)
	}
	defer r.Close()

	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return false, fmt.Errorf("detect upload %q: %w", f.Name, err)
	}
	return mt.Is(pdfMIME), nil
}

// Store writes uploads to storage. On failure files already written are
// removed again.
func (s *AttachmentService) Store(ctx context.Context, uploads []Upload) ([]structs.Attachment, error) {
	stored := make([]structs.Attachment, 0, len(uploads))
	for _, u := range uploads {
		att, err := s.put(u)
		if err != nil {
			logger.Error(ctx, "failed to store attachment", "name", u.Name, "error", err)
			s.Remove(ctx, stored)
			return nil, ecode.Internal("", err)
		}
		stored = append(stored, att)
	}
	return stored, nil
}

func (s *AttachmentService) put(u Upload) (structs.Attachment, error) {
	r, err := u.Open()
	if err != nil {
		return structs.Attachment{}, err
	}
	defer r.Close()

	objectPath := storage.ObjectPath(attachmentPrefix, u.Name, s.now())
	obj, err := s.storage.Put(objectPath, r)
	if err != nil {
		return structs.Attachment{}, err
	}

	size := u.Size
	if obj != nil && obj.Size > 0 {
		size = obj.Size
	}
	return structs.Attachment{
		Path:        objectPath,
		Name:        u.Name,
		Size:        size,
		ContentType: pdfMIME,
	}, nil
}

// Remove deletes stored files. Failures are logged, not returned.
func (s *AttachmentService) Remove(ctx context.Context, atts []structs.Attachment) {
	for _, a := range atts {
		if err := s.storage.Delete(storage.NormalizePath(a.Path)); err != nil {
			logger.Warn(ctx, "failed to remove attachment", "path", a.Path, "error", err)
		}
	}
}

// Open streams a stored file by its reference
func (s *AttachmentService) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	p := storage.NormalizePath(ref)
	if p == "" || p == "." {
		return nil, "", ecode.NotFound("File not found")
	}
	r, err := s.storage.GetStream(p)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ecode.NotFound("File not found")
		}
		logger.Error(ctx, "failed to open attachment", "path", p, "error", err)
		return nil, "", ecode.Internal("", err)
	}
	return r, storage.OriginalName(p), nil
}

// PublicURL maps a stored reference to its download path. Backslash
// separators from legacy references are tolerated.
func (s *AttachmentService) PublicURL(ref string) string {
	p := storage.NormalizePath(ref)
	if s.publicPrefix == "/" {
		return "/" + p
	}
	return s.publicPrefix + "/" + p
}
