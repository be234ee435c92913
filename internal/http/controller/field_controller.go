package controller

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/http/dto"
	"github.com/rendis/esigncore/internal/http/middleware"
	"github.com/rendis/esigncore/internal/service/fill"
)

// FieldController handles the /field routes: single and bulk fills.
type FieldController struct {
	fill *fill.Service
}

func NewFieldController(fillSvc *fill.Service) *FieldController {
	return &FieldController{fill: fillSvc}
}

func (c *FieldController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/field/:id/fill", c.FillSignature)
	rg.POST("/field/:id/fill-text", c.FillText)
	rg.POST("/field/bulk-fill", c.BulkFill)
}

// FillSignature implements POST /field/{id}/fill.
// @Summary Fill a signature field with a PNG image
// @Tags Field
// @Accept image/png
// @Param id path string true "Field ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /field/{id}/fill [post]
func (c *FieldController) FillSignature(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	fieldID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		HandleError(ctx, entity.ErrFieldNotFound)
		return
	}
	png, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		HandleError(ctx, entity.ErrInvalidInput)
		return
	}

	if err := c.fill.FillSignature(ctx.Request.Context(), userID, fieldID, png, middleware.GetClientIP(ctx)); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// FillText implements POST /field/{id}/fill-text.
// @Summary Fill a text or date field
// @Tags Field
// @Accept json
// @Param id path string true "Field ID"
// @Param request body dto.FillTextRequest true "Field value"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /field/{id}/fill-text [post]
func (c *FieldController) FillText(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	fieldID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		HandleError(ctx, entity.ErrFieldNotFound)
		return
	}
	var req dto.FillTextRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		HandleError(ctx, entity.ErrInvalidInput)
		return
	}

	if err := c.fill.FillText(ctx.Request.Context(), userID, fieldID, req.Value, middleware.GetClientIP(ctx)); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// BulkFill implements POST /field/bulk-fill: a multipart form carrying one
// documentId plus, per field, either a `text:<fieldId>` value or a
// `png:<fieldId>` file part.
// @Summary Fill many fields on a document in one request
// @Tags Field
// @Accept multipart/form-data
// @Param documentId formData string true "Document ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /field/bulk-fill [post]
func (c *FieldController) BulkFill(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	documentID, err := uuid.Parse(ctx.PostForm("documentId"))
	if err != nil {
		HandleError(ctx, entity.ErrDocumentNotFound)
		return
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		HandleError(ctx, entity.ErrInvalidInput)
		return
	}

	var entries []fill.Entry
	for key, values := range form.Value {
		fieldID, ok := parseFieldKey(key, "text:")
		if !ok || len(values) == 0 {
			continue
		}
		value := values[0]
		entries = append(entries, fill.Entry{FieldID: fieldID, Value: &value})
	}
	for key, files := range form.File {
		fieldID, ok := parseFieldKey(key, "png:")
		if !ok || len(files) == 0 {
			continue
		}
		fh := files[0]
		f, err := fh.Open()
		if err != nil {
			HandleError(ctx, entity.ErrInvalidInput)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			HandleError(ctx, entity.ErrInvalidInput)
			return
		}
		entries = append(entries, fill.Entry{FieldID: fieldID, PNG: data})
	}

	if err := c.fill.BulkFill(ctx.Request.Context(), userID, documentID, entries, middleware.GetClientIP(ctx)); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func parseFieldKey(key, prefix string) (uuid.UUID, bool) {
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(key[len(prefix):])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
