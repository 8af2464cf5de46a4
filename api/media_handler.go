package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/h2non/filetype"
	"github.com/ridgeline-labs/site-backend/errs"
	"github.com/ridgeline-labs/site-backend/projectstore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// MediaUploader stores an uploaded file and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, body io.Reader, size int64, contentType, extension string) (string, error)
}

type mediaHandler struct {
	responder Responder
	logger    zerolog.Logger
	uploader  MediaUploader
	maxBytes  int64
}

func newMediaHandler(uploader MediaUploader, maxBytes int64) mediaHandler {
	logger := log.With().Str("handlerName", "mediaHandler").Logger()

	return mediaHandler{
		responder: NewResponder(logger),
		logger:    logger,
		uploader:  uploader,
		maxBytes:  maxBytes,
	}
}

// UploadedMedia is a stored file ready to reference from a project media list
type UploadedMedia struct {
	Src  string `json:"src"`
	Type string `json:"type"`
}

var errMissingFile = errors.New("file field is required")

// uploadMedia stores an image or video for use in project media
// @Summary Upload media
// @Description Accepts a multipart "file" field. The content type is detected from the file itself; only images and videos are accepted.
// @Tags Admin
// @Accept multipart/form-data
// @Produce json
// @Security AdminToken
// @Param file formData file true "Image or video"
// @Success 201 {object} UploadedMedia "Stored media"
// @Failure 400 {object} ErrorResponse "Bad Request - Missing or unrecognised file"
// @Failure 401 {object} ErrorResponse "Unauthorized - Missing or invalid admin token"
// @Failure 413 {object} ErrorResponse "Request Entity Too Large"
// @Failure 415 {object} ErrorResponse "Unsupported Media Type"
// @Failure 500 {object} ErrorResponse "Internal Server Error - Storage not configured or upload failed"
// @Router /admin/media [post]
func (h mediaHandler) uploadMedia() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.uploader == nil {
			h.responder.WriteError(w, errs.NewConfigError("S3_BUCKET", nil))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(h.maxBytes))
				return
			}
			h.responder.WriteError(w, errs.NewMalformedPayloadError("multipart", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, header, err := r.FormFile("file")
		if err != nil {
			h.responder.WriteError(w, errs.NewBadRequestErrorWithField(errMissingFile.Error(), "file", ""))
			return
		}
		defer file.Close()

		if header.Size == 0 {
			h.responder.WriteError(w, errs.NewBadRequestErrorWithField("file must not be empty", "file", ""))
			return
		}

		head, err := readHead(file)
		if err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("file", err))
			return
		}

		kind, err := filetype.Match(head)
		if err != nil || kind == filetype.Unknown {
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(header.Header.Get("Content-Type"), allowedMediaKinds))
			return
		}

		var mediaType string
		switch {
		case filetype.IsImage(head):
			mediaType = projectstore.MediaImage
		case filetype.IsVideo(head):
			mediaType = projectstore.MediaVideo
		default:
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(kind.MIME.Value, allowedMediaKinds))
			return
		}

		if _, err := file.Seek(0, io.SeekStart); err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("failed to rewind upload", err))
			return
		}

		src, err := h.uploader.Upload(r.Context(), file, header.Size, kind.MIME.Value, kind.Extension)
		if err != nil {
			h.responder.WriteError(w, errs.NewServiceUnreachableError("media storage", err))
			return
		}

		h.logger.Info().
			Str("src", src).
			Str("type", mediaType).
			Str("mime", kind.MIME.Value).
			Int64("size", header.Size).
			Msg("Media uploaded")
		h.responder.WriteJSONStatus(w, http.StatusCreated, UploadedMedia{Src: src, Type: mediaType})
	}
}

// readHead returns up to the first 512 bytes of r, which covers every
// signature filetype knows. A shorter file is not an error.
func readHead(r io.Reader) ([]byte, error) {
	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return buffer[:n], nil
}

var allowedMediaKinds = []string{"image/*", "video/*"}

func maxUploadBytes(megabytes int) int64 {
	if megabytes <= 0 {
		megabytes = 50
	}
	return int64(megabytes) << 20
}
