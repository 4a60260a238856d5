package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/mycloud/internal/common"
)

type accountResponse struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	FileCount int64     `json:"file_count"`
	TotalSize int64     `json:"total_size"`
}

func (r *Router) listUsers(c *gin.Context) {
	infos, err := r.users.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := make([]accountResponse, 0, len(infos))
	for _, info := range infos {
		resp = append(resp, accountResponse{
			ID:        info.User.ID,
			UserName:  info.User.UserName,
			Email:     info.User.Email,
			FirstName: info.User.FirstName,
			IsAdmin:   info.User.IsAdmin,
			CreatedAt: info.User.CreatedAt,
			FileCount: info.FileCount,
			TotalSize: info.TotalSize,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// listUserFiles returns one account's file records. Unknown accounts are a
// 404, not an empty list.
func (r *Router) listUserFiles(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: invalid user id", common.ErrorValidation))
		return
	}

	if _, err := r.users.GetByID(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	all, err := r.files.ListForOwner(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}

	resp := make([]fileResponse, 0, len(all))
	for _, f := range all {
		resp = append(resp, toFileResponse(f))
	}
	c.JSON(http.StatusOK, resp)
}

type setAdminRequest struct {
	IsAdmin bool `json:"is_admin"`
}

func (r *Router) toggleAdmin(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: invalid user id", common.ErrorValidation))
		return
	}

	var req setAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, fmt.Errorf("%w: invalid request body", common.ErrorValidation))
		return
	}

	if err := r.users.SetAdmin(c.Request.Context(), id, req.IsAdmin); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "is_admin": req.IsAdmin})
}

func (r *Router) deleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		abortWithError(c, fmt.Errorf("%w: invalid user id", common.ErrorValidation))
		return
	}

	// An administrator removing their own account would lock the session
	// out mid-request; require another admin to do it.
	if caller := currentUser(c); caller != nil && caller.ID == id {
		abortWithError(c, fmt.Errorf("%w: cannot delete own account", common.ErrorValidation))
		return
	}

	if err := r.users.Delete(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
