package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/whopranjalshah/me-api-playground/internal/application/usecase/backup"
	"github.com/whopranjalshah/me-api-playground/pkg/apperror"
)

type BackupHandler struct {
	backupUseCase *backup.BackupUseCase
}

func NewBackupHandler(uc *backup.BackupUseCase) *BackupHandler {
	return &BackupHandler{backupUseCase: uc}
}

func (h *BackupHandler) RunBackup(c *gin.Context) {
	if h.backupUseCase == nil {
		c.Error(apperror.NewAppError(apperror.ErrInternal, "Backups are not configured", "", nil))
		return
	}

	output, err := h.backupUseCase.Execute(c.Request.Context(), actorFromContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, output)
}
