package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/mycloud/internal/common"
	"github.com/dmitrijs2005/mycloud/internal/server/models"
)

type fileResponse struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Size             int64      `json:"size"`
	Hash             string     `json:"hash"`
	Comment          string     `json:"comment"`
	CreatedAt        time.Time  `json:"created_at"`
	LastDownloadedAt *time.Time `json:"last_downloaded_at"`
	DownloadURL      string     `json:"download_url"`
}

func toFileResponse(f *models.File) fileResponse {
	return fileResponse{
		ID:               f.ID,
		Name:             f.DisplayName,
		Size:             f.Size,
		Hash:             f.Hash,
		Comment:          f.Comment,
		CreatedAt:        f.CreatedAt,
		LastDownloadedAt: f.LastDownloadedAt,
		DownloadURL:      "/api/v1/download/" + strconv.FormatInt(f.ID, 10),
	}
}

// fileListResponse carries the caller's admin flag alongside the records, so
// a client can decide whether to show the administrative UI.
type fileListResponse struct {
	IsAdmin bool           `json:"isAdmin"`
	Files   []fileResponse `json:"files"`
}

func (r *Router) listFiles(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	all, err := r.files.ListForOwner(c.Request.Context(), user.ID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := fileListResponse{IsAdmin: user.IsAdmin, Files: make([]fileResponse, 0, len(all))}
	for _, f := range all {
		resp.Files = append(resp.Files, toFileResponse(f))
	}
	c.JSON(http.StatusOK, resp)
}

func (r *Router) uploadFile(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: no file provided", common.ErrorValidation))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: cannot open uploaded file", common.ErrorValidation))
		return
	}
	defer src.Close()

	payload, err := io.ReadAll(src)
	if err != nil {
		abortWithError(c, common.ErrorInternal)
		return
	}

	file, err := r.files.Create(c.Request.Context(), user.ID, fileHeader.Filename, payload, c.PostForm("comment"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toFileResponse(file))
}

type updateCommentRequest struct {
	Comment string `json:"comment"`
}

func (r *Router) updateFileComment(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: invalid file id", common.ErrorValidation))
		return
	}

	var req updateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: invalid request body", common.ErrorValidation))
		return
	}

	file, err := r.files.UpdateComment(c.Request.Context(), id, user.ID, req.Comment)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toFileResponse(file))
}

func (r *Router) deleteFile(c *gin.Context) {
	user, ok := mustCurrentUser(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: invalid file id", common.ErrorValidation))
		return
	}

	if err := r.files.Delete(c.Request.Context(), id, user.ID, user.IsAdmin); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (r *Router) download(c *gin.Context) {
	rc, name, err := r.files.Resolve(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, rc); err != nil {
		// Headers are already out; nothing to do but log.
		r.logger.Warn(c.Request.Context(), "download stream interrupted", "error", err.Error())
	}
}
