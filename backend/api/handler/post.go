package handler

import (
	"errors"
	"net/http"

	"mediafeed/backend/common"
	mferrors "mediafeed/backend/common/errors"
	"mediafeed/backend/common/i18n"
	"mediafeed/backend/model"
	"mediafeed/backend/service"

	"github.com/gin-gonic/gin"
)

// PostResponse is the JSON shape of a post.
type PostResponse struct {
	ID        string `json:"id"`
	Caption   string `json:"caption"`
	URL       string `json:"url"`
	FileType  string `json:"file_type"`
	FileName  string `json:"file_name"`
	CreatedAt string `json:"created_at"`
}

func toPostResponse(post *model.Post) PostResponse {
	return PostResponse{
		ID:        post.ID.String(),
		Caption:   post.Caption,
		URL:       post.URL,
		FileType:  post.FileType,
		FileName:  post.FileName,
		CreatedAt: common.FormatTime(post.CreatedAt),
	}
}

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hello": "world"})
}

// UploadFile godoc
// @Summary Upload a media file
// @Accept multipart/form-data
// @Param file formData file true "media file"
// @Param caption formData string false "caption"
// @Success 200 {object} PostResponse
// @Router /upload_file [post]
func (h *PostHandler) UploadFile(c *gin.Context) {
	lang := c.GetString("lang")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespDetail(c, http.StatusBadRequest, i18n.Translate(mferrors.ErrFileRequired, lang))
		return
	}
	caption := c.PostForm("caption")

	file, err := fileHeader.Open()
	if err != nil {
		common.RespError(c, http.StatusBadRequest, i18n.Translate(mferrors.ErrUploadFailed, lang), err)
		return
	}
	defer file.Close()

	post, err := h.posts.Upload(c.Request.Context(), file, fileHeader.Filename, caption)
	if err != nil {
		if errors.Is(err, service.ErrEmptyFile) {
			common.RespDetail(c, http.StatusBadRequest, i18n.Translate(mferrors.ErrFileEmpty, lang))
			return
		}
		common.SysError("upload failed", "file_name", fileHeader.Filename, "err", err)
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(mferrors.ErrUploadFailed, lang), err)
		return
	}
	c.JSON(http.StatusOK, toPostResponse(post))
}

func (h *PostHandler) GetFeed(c *gin.Context) {
	posts, err := h.posts.Feed(c.Request.Context())
	if err != nil {
		common.SysError("feed failed", "err", err)
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(mferrors.ErrFeedFailed, c.GetString("lang")), err)
		return
	}
	resp := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		resp = append(resp, toPostResponse(post))
	}
	c.JSON(http.StatusOK, gin.H{"posts": resp})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	lang := c.GetString("lang")

	err := h.posts.Delete(c.Request.Context(), c.Param("post_id"))
	switch {
	case err == nil:
		common.RespDetail(c, http.StatusOK, i18n.Translate(mferrors.ErrPostDeleted, lang))
	case errors.Is(err, service.ErrInvalidIdentifier):
		common.RespDetail(c, http.StatusBadRequest, i18n.Translate(mferrors.ErrInvalidPostID, lang))
	case errors.Is(err, service.ErrPostNotFound):
		common.RespDetail(c, http.StatusNotFound, i18n.Translate(mferrors.ErrPostNotFound, lang))
	default:
		common.SysError("delete failed", "post_id", c.Param("post_id"), "err", err)
		common.RespError(c, http.StatusInternalServerError, i18n.Translate(mferrors.ErrDeleteFailed, lang), err)
	}
}
