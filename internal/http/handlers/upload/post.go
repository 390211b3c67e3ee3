package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"resumeapi/internal/dto"
	"resumeapi/internal/http/middleware"
	"resumeapi/internal/models"
	errutils "resumeapi/internal/utils/http_errors"
	"strings"
)

const (
	formField = "file"

	maxMemory = 32 << 20
	// room for multipart boundaries and headers on top of the file limit
	formOverhead = 1 << 20
)

func Upload(ctx context.Context, log *slog.Logger, w http.ResponseWriter, r *http.Request, up Uploader, pp PolicyProvider) {
	op := pkg + "Upload"

	log = log.With(slog.String("op", op))

	if user, ok := middleware.UserFromContext(ctx); ok {
		log = log.With(slog.String("user", user.Login))
	}

	policy := pp.Policy()
	if policy.MaxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, policy.MaxSize+formOverhead)
	}

	file, err := readFile(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			log.Warn("request body too large", slog.Int64("limit", maxBytesErr.Limit))
			errutils.WriteJSONError(w, http.StatusRequestEntityTooLarge, tooLargeText(policy))
			return
		}
		log.Warn("failed to parse multipart form", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	res, err := up.HandleUpload(ctx, file)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNoFile):
			errutils.WriteJSONError(w, http.StatusBadRequest, models.ErrNoFile.Error())
		case errors.Is(err, models.ErrUnsupportedFileType):
			errutils.WriteJSONError(w, http.StatusBadRequest, fmt.Sprintf("file type not allowed, only %s files are accepted", strings.Join(policy.AllowedExtensions, ", ")))
		case errors.Is(err, models.ErrEmptyFile):
			errutils.WriteJSONError(w, http.StatusBadRequest, models.ErrEmptyFile.Error())
		case errors.Is(err, models.ErrFileTooLarge):
			errutils.WriteJSONError(w, http.StatusRequestEntityTooLarge, tooLargeText(policy))
		default:
			log.Error("upload failed", slog.String("error", err.Error()))
			errutils.WriteJSONError(w, http.StatusInternalServerError, "upload failed: "+models.ErrInternal.Error())
		}
		return
	}

	if err := errutils.WriteJSON(w, http.StatusOK, dto.NewUploadResponse(res)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}

// readFile returns nil without an error when the form has no file part.
func readFile(r *http.Request) (*models.UploadedFile, error) {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile(formField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer part.Close()

	content, err := io.ReadAll(part)
	if err != nil {
		return nil, err
	}

	return &models.UploadedFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     content,
	}, nil
}

func tooLargeText(policy models.UploadPolicy) string {
	return fmt.Sprintf("%s, limit is %d bytes", models.ErrFileTooLarge.Error(), policy.MaxSize)
}
