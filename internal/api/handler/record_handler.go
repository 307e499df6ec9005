package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/ceb/internal/service"
	"github.com/d60-Lab/ceb/pkg/response"
)

type table1Request struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
}

// ListRecords 以 JSON 返回列表页数据
// @Summary 全部记录
// @Tags 记录
// @Produce json
// @Success 200 {object} response.Response{data=model.Listing}
// @Failure 500 {object} response.Response
// @Router /api/v1/records [get]
func (h *Handler) ListRecords(c *gin.Context) {
	listing, err := h.listingService.Index(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, listing.Context())
}

// GetTable1 查询单条 Table1
// @Summary 查询 Table1
// @Tags 管理
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} response.Response{data=model.Table1}
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/table1/{id} [get]
func (h *Handler) GetTable1(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.recordService.GetTable1(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rec)
}

// CreateTable1 新建 Table1
// @Summary 新建 Table1
// @Tags 管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body table1Request true "记录内容"
// @Success 201 {object} response.Response{data=model.Table1}
// @Failure 400 {object} response.Response
// @Router /api/v1/admin/table1 [post]
func (h *Handler) CreateTable1(c *gin.Context) {
	var req table1Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rec, err := h.recordService.CreateTable1(c.Request.Context(), service.RecordInput{Title: req.Title, Body: req.Body})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, rec)
}

// UpdateTable1 修改 Table1
// @Summary 修改 Table1
// @Tags 管理
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "记录ID"
// @Param request body table1Request true "记录内容"
// @Success 200 {object} response.Response{data=model.Table1}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/table1/{id} [put]
func (h *Handler) UpdateTable1(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req table1Request
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	rec, err := h.recordService.UpdateTable1(c.Request.Context(), id, service.RecordInput{Title: req.Title, Body: req.Body})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rec)
}

// DeleteTable1 删除 Table1
// @Summary 删除 Table1
// @Tags 管理
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/table1/{id} [delete]
func (h *Handler) DeleteTable1(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.recordService.DeleteTable1(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// GetTable2 查询单条 Table2
// @Summary 查询 Table2
// @Tags 管理
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} response.Response{data=model.Table2}
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/table2/{id} [get]
func (h *Handler) GetTable2(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.recordService.GetTable2(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rec)
}

// CreateTable2 新建 Table2（multipart，image 必填）
// @Summary 新建 Table2
// @Tags 管理
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "标题"
// @Param body formData string true "正文"
// @Param image formData file true "图片"
// @Success 201 {object} response.Response{data=model.Table2}
// @Failure 400 {object} response.Response
// @Router /api/v1/admin/table2 [post]
func (h *Handler) CreateTable2(c *gin.Context) {
	in, img, closeFn, ok := h.bindTable2(c, true)
	if !ok {
		return
	}
	defer closeFn()
	rec, err := h.recordService.CreateTable2(c.Request.Context(), in, img)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, rec)
}

// UpdateTable2 修改 Table2，未上传 image 时保留原图
// @Summary 修改 Table2
// @Tags 管理
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "记录ID"
// @Param title formData string true "标题"
// @Param body formData string true "正文"
// @Param image formData file false "图片"
// @Success 200 {object} response.Response{data=model.Table2}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/table2/{id} [put]
func (h *Handler) UpdateTable2(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	in, img, closeFn, ok := h.bindTable2(c, false)
	if !ok {
		return
	}
	defer closeFn()
	rec, err := h.recordService.UpdateTable2(c.Request.Context(), id, in, img)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, rec)
}

// DeleteTable2 删除 Table2 及其图片
// @Summary 删除 Table2
// @Tags 管理
// @Security BearerAuth
// @Param id path int true "记录ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/admin/table2/{id} [delete]
func (h *Handler) DeleteTable2(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.recordService.DeleteTable2(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *Handler) bindTable2(c *gin.Context, requireImage bool) (service.RecordInput, *service.ImageUpload, func(), bool) {
	noop := func() {}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	in := service.RecordInput{Title: c.PostForm("title"), Body: c.PostForm("body")}
	fh, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		if requireImage {
			response.BadRequest(c, "image is required")
			return in, nil, noop, false
		}
		return in, nil, noop, true
	case err != nil:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, response.Response{Code: http.StatusRequestEntityTooLarge, Message: "upload too large"})
			return in, nil, noop, false
		}
		response.BadRequest(c, err.Error())
		return in, nil, noop, false
	}
	f, err := fh.Open()
	if err != nil {
		response.InternalError(c, err)
		return in, nil, noop, false
	}
	return in, &service.ImageUpload{Filename: fh.Filename, Reader: f}, func() { _ = f.Close() }, true
}
