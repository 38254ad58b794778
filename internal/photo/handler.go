package photo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"familytree/internal/platform/metrics"
	dErrors "familytree/pkg/domain-errors"
	"familytree/pkg/platform/httputil"
	"familytree/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Uploader stores an uploaded image.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (*Uploaded, error)
	MaxBytes() int64
}

// multipartOverhead leaves room for boundaries and headers around the file.
const multipartOverhead = 64 << 10

type uploadResponse struct {
	Message   string `json:"message"`
	PhotoURL  string `json:"photoUrl"`
	PublicURL string `json:"publicUrl"`
}

// Handler serves POST /upload-photo.
type Handler struct {
	photos  Uploader
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(photos Uploader, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{photos: photos, logger: logger, metrics: m}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/upload-photo", h.handleUpload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.photos.MaxBytes()+multipartOverhead)

	file, header, err := r.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			err = dErrors.New(dErrors.CodeValidation, "photo is too large")
		case errors.Is(err, http.ErrMissingFile):
			err = dErrors.New(dErrors.CodeValidation, "no file uploaded")
		default:
			err = dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid multipart body")
		}
		h.fail(ctx, w, err)
		return
	}
	defer file.Close()

	uploaded, err := h.photos.Upload(ctx, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if _, coded := dErrors.As(err); !coded {
			err = dErrors.Wrap(err, dErrors.CodeInternal, "failed to upload file to storage")
		}
		h.fail(ctx, w, err)
		return
	}

	h.metrics.IncPhotosUploaded()
	h.logger.InfoContext(ctx, "photo uploaded",
		"key", uploaded.Key,
		"user_id", requestcontext.UserID(ctx).String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusOK, uploadResponse{
		Message:   "File uploaded successfully",
		PhotoURL:  uploaded.Key,
		PublicURL: uploaded.PublicURL,
	})
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "photo upload failed", "error", err, "request_id", requestcontext.RequestID(ctx))
	} else {
		h.logger.WarnContext(ctx, "photo upload rejected", "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}
