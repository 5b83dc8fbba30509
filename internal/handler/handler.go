// Package handler exposes the taskhub services over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/satvikmishra44/taskhub/ecode"
	"github.com/satvikmishra44/taskhub/internal/data"
	"github.com/satvikmishra44/taskhub/internal/middleware"
	"github.com/satvikmishra44/taskhub/internal/service"
	"github.com/satvikmishra44/taskhub/internal/structs"
	"github.com/satvikmishra44/taskhub/logging/logger"
	"github.com/satvikmishra44/taskhub/logging/observes"
	"github.com/satvikmishra44/taskhub/net/resp"
)

// filesField is the multipart field carrying task attachments
const filesField = "files"

// multipartOverhead is allowed on top of the attachment size limits
const multipartOverhead = 1 << 20

// Options tunes the HTTP layer
type Options struct {
	// MaxFileSize is the per-file upload limit
	MaxFileSize int64
	// UploadsPrefix is the public path attachments are served under
	UploadsPrefix string
}

// Handler groups the HTTP endpoints.
type Handler struct {
	svc     *service.Service
	data    *data.Data
	uploads string
	// maxBody bounds multipart request bodies
	maxBody int64
}

// New creates a handler.
func New(svc *service.Service, d *data.Data, opts Options) *Handler {
	uploads := "/" + strings.Trim(opts.UploadsPrefix, "/")
	if uploads == "/" {
		uploads = DefaultUploadsPrefix
	}
	return &Handler{
		svc:     svc,
		data:    d,
		uploads: uploads,
		maxBody: int64(svc.Attachment.MaxFiles())*opts.MaxFileSize + multipartOverhead,
	}
}

// fail writes err as the response. Server errors are logged and reported.
func (h *Handler) fail(c *gin.Context, err error) {
	if ecode.CodeOf(err) == ecode.ServerErr {
		ctx := c.Request.Context()
		logger.Error(ctx, "request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		observes.CaptureError(ctx, err)
		_ = c.Error(err)
	}
	resp.Fail(c.Writer, resp.FromError(err))
}

var errBody = ecode.BadRequest("Invalid request body")

// decodeJSON reads a JSON body into v. Strict decoding rejects unknown fields.
func decodeJSON(c *gin.Context, v any, strict bool) error {
	if c.Request.Body == nil {
		return errBody
	}
	dec := json.NewDecoder(c.Request.Body)
	if strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		if strict && isUnknownField(err) {
			return ecode.BadRequest("Unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field "))
		}
		return errBody
	}
	if dec.More() {
		return errBody
	}
	return nil
}

// isUnknownField matches the error DisallowUnknownFields produces
func isUnknownField(err error) bool {
	return strings.HasPrefix(err.Error(), "json: unknown field ")
}

// recent parses the ?recent=N query parameter, 0 when absent
func recent(c *gin.Context) (int, error) {
	raw := c.Query("recent")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ecode.BadRequest("recent must be a non-negative number")
	}
	return n, nil
}

// limitBody caps the request body for uploads
func (h *Handler) limitBody(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
}

// uploadedFiles returns the attachment files of a multipart request.
// Non multipart requests carry no files.
func uploadedFiles(c *gin.Context) ([]service.FileInput, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, ecode.BadRequest("Request body too large")
		}
		return nil, ecode.BadRequest("Invalid multipart form")
	}
	return fileInputs(form.File[filesField]), nil
}

func fileInputs(headers []*multipart.FileHeader) []service.FileInput {
	files := make([]service.FileInput, 0, len(headers))
	for _, fh := range headers {
		files = append(files, service.FileInput{
			Name:        fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Open:        func() (io.ReadCloser, error) { return fh.Open() },
		})
	}
	return files
}

// actor returns the authenticated actor of the request
func actor(c *gin.Context) structs.Actor {
	return middleware.ActorFrom(c)
}
