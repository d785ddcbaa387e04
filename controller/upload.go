package controller

import (
	"errors"
	"mime/multipart"
	"net/http"

	"teacreek/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// UploadHandler 上传图片或附件
// @Summary 上传文件
// @Description 支持 images（多个）和 file（单个）两个表单字段，返回文件的访问地址
// @Tags 上传
// @Accept multipart/form-data
// @Produce application/json
// @Param images formData file false "图片，可多个"
// @Param file formData file false "单个文件"
// @Success 200 {object} object{success=bool,url=string,urls=[]string}
// @Failure 400 {object} ErrorBody
// @Router /upload [post]
func (h *Handler) UploadHandler(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			ResponseError(c, errorx.ErrInvalidParam.WithMsg("未上传文件"))
			return
		}
		ResponseError(c, errorx.ErrInvalidParam)
		return
	}

	files := make([]*multipart.FileHeader, 0, len(form.File["images"])+len(form.File["file"]))
	files = append(files, form.File["images"]...)
	files = append(files, form.File["file"]...)

	urls, err := h.svc.Upload(c.Request.Context(), files)
	if err != nil {
		HandleError(c, err)
		return
	}
	ResponseSuccess(c, gin.H{"url": urls[0], "urls": urls})
}
