package files

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"resumeapi/internal/dto"
	"resumeapi/internal/models"
	errutils "resumeapi/internal/utils/http_errors"
)

func GetByID(ctx context.Context, log *slog.Logger, w http.ResponseWriter, fileID string, fp FileProvider) {
	op := pkg + "GetByID"

	log = log.With(slog.String("op", op), slog.String("file_id", fileID))

	ref, err := fp.UploadInfo(ctx, fileID)
	if err != nil {
		if errors.Is(err, models.ErrFileNotFound) {
			errutils.WriteJSONError(w, http.StatusNotFound, models.ErrFileNotFound.Error())
			return
		}
		log.Error("failed to get file info", slog.String("error", err.Error()))
		errutils.WriteJSONError(w, http.StatusInternalServerError, models.ErrInternal.Error())
		return
	}

	if err := errutils.WriteJSON(w, http.StatusOK, dto.NewFileResponse(ref)); err != nil {
		log.Error("failed to write response", slog.String("error", err.Error()))
	}
}
