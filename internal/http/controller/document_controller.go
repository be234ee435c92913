package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/http/dto"
	"github.com/rendis/esigncore/internal/http/middleware"
	"github.com/rendis/esigncore/internal/port"
	"github.com/rendis/esigncore/internal/service/audit"
	"github.com/rendis/esigncore/internal/service/document"
	"github.com/rendis/esigncore/internal/service/fill"
	"github.com/rendis/esigncore/internal/service/identity"
)

// DocumentController handles the /document routes: creation, retrieval
// (PDF/PNG, content-negotiated), info, audit log, agree-tos, reminders, and
// owner deletion.
type DocumentController struct {
	documents  *document.Service
	identity   *identity.Service
	audit      *audit.Service
	fill       *fill.Service
	fields     port.FieldRepository
	fileUsages port.FileUsageRepository
	users      port.UserRepository
	docRepo    port.DocumentRepository
	jobs       port.JobEnqueuer
	collector  port.BlobNameCollector
}

func NewDocumentController(
	documents *document.Service,
	identitySvc *identity.Service,
	auditSvc *audit.Service,
	fillSvc *fill.Service,
	fields port.FieldRepository,
	fileUsages port.FileUsageRepository,
	users port.UserRepository,
	docRepo port.DocumentRepository,
	jobs port.JobEnqueuer,
	collector port.BlobNameCollector,
) *DocumentController {
	return &DocumentController{
		documents:  documents,
		identity:   identitySvc,
		audit:      auditSvc,
		fill:       fillSvc,
		fields:     fields,
		fileUsages: fileUsages,
		users:      users,
		docRepo:    docRepo,
		jobs:       jobs,
		collector:  collector,
	}
}

func (c *DocumentController) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/document", c.Create)
	rg.GET("/document/:id", c.Get)
	rg.DELETE("/document/:id", c.Delete)
	rg.GET("/document/:id/info", c.Info)
	rg.GET("/document/:id/audit", c.Audit)
	rg.POST("/document/:id/agree-tos", c.AgreeTOS)
	rg.POST("/document/:id/remind", c.Remind)
}

func (c *DocumentController) loadDoc(ctx *gin.Context) (*entity.Document, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return nil, uuid.Nil, false
	}
	docID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		HandleError(ctx, entity.ErrDocumentNotFound)
		return nil, uuid.Nil, false
	}
	doc, err := c.docRepo.FindByID(ctx.Request.Context(), docID)
	if err != nil {
		HandleError(ctx, err)
		return nil, uuid.Nil, false
	}
	return doc, userID, true
}

// authorize applies the shared permission check (§4.2) and, for tokens
// minted via an access-URI exchange, enforces the scope the token was
// issued for.
func (c *DocumentController) authorize(ctx *gin.Context, doc *entity.Document, userID uuid.UUID, signerAccessible bool) bool {
	if scopedDoc, ok := middleware.GetTokenDocumentID(ctx); ok && scopedDoc != doc.ID {
		HandleError(ctx, entity.ErrTokenScopeMismatch)
		return false
	}
	allowed, err := c.identity.CanAccessDocument(ctx.Request.Context(), doc, userID, signerAccessible)
	if err != nil {
		HandleError(ctx, err)
		return false
	}
	if !allowed {
		HandleError(ctx, entity.ErrUnauthorized)
		return false
	}
	return true
}

// Create implements POST /document.
// @Summary Upload a document and declare its signable fields
// @Tags Document
// @Accept multipart/form-data
// @Produce json
// @Param docName formData string true "Document title"
// @Param signators formData string true "JSON map of field name to signer email"
// @Param file formData file true "PDF to upload"
// @Success 200 {object} dto.CreateDocumentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 413 {object} dto.ErrorResponse
// @Failure 415 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /document [post]
func (c *DocumentController) Create(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}

	docName := ctx.PostForm("docName")
	if docName == "" {
		HandleError(ctx, entity.ErrInvalidInput)
		return
	}

	var signators map[string]*string
	if raw := ctx.PostForm("signators"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &signators); err != nil {
			HandleError(ctx, entity.ErrInvalidSignators)
			return
		}
	}

	fh, err := ctx.FormFile("file")
	if err != nil {
		HandleError(ctx, entity.ErrInvalidInput)
		return
	}
	f, err := fh.Open()
	if err != nil {
		HandleError(ctx, fmt.Errorf("document: opening upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		HandleError(ctx, fmt.Errorf("document: reading upload: %w", err))
		return
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := c.documents.Create(ctx.Request.Context(), document.CreateInput{
		Title:       docName,
		ContentType: contentType,
		Size:        fh.Size,
		PDF:         data,
		Signators:   signators,
		OwnerID:     userID,
		CallerIP:    middleware.GetClientIP(ctx),
	})
	if err != nil {
		HandleError(ctx, err)
		return
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	ctx.JSON(http.StatusOK, dto.CreateDocumentResponse{
		DocID:    result.DocumentID.String(),
		Warnings: warnings,
	})
}

// Get implements GET /document/{id}, content-negotiated between
// application/pdf (default) and image/png (`?page=`).
// @Summary Fetch the document PDF or a rendered page
// @Tags Document
// @Produce application/pdf
// @Produce image/png
// @Param id path string true "Document ID"
// @Param page query int false "Page number, for image/png"
// @Success 200 {file} binary
// @Failure 401 {object} dto.ErrorResponse
// @Failure 406 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Header 503 {string} Retry-After "seconds until the document is ready"
// @Security BearerAuth
// @Router /document/{id} [get]
func (c *DocumentController) Get(ctx *gin.Context) {
	doc, userID, ok := c.loadDoc(ctx)
	if !ok {
		return
	}
	if !c.authorize(ctx, doc, userID, true) {
		return
	}

	accept := ctx.GetHeader("Accept")
	switch negotiatePDFOrPNG(accept) {
	case "image/png":
		page, err := strconv.Atoi(ctx.Query("page"))
		if err != nil {
			HandleError(ctx, entity.ErrInvalidInput)
			return
		}
		data, err := c.documents.GetPage(ctx.Request.Context(), doc.ID, page)
		if err != nil {
			HandleError(ctx, err)
			return
		}
		ctx.Data(http.StatusOK, "image/png", data)
	case "application/pdf":
		c.recordViewed(ctx, doc.ID, userID)
		data, err := c.documents.GetPDF(ctx.Request.Context(), doc.ID)
		if err != nil {
			HandleError(ctx, err)
			return
		}
		ctx.Data(http.StatusOK, "application/pdf", data)
	default:
		HandleError(ctx, entity.ErrNotAcceptable)
	}
}

func (c *DocumentController) recordViewed(ctx *gin.Context, docID, userID uuid.UUID) {
	u, err := c.users.FindByID(ctx.Request.Context(), userID)
	if err != nil {
		return
	}
	usage := entity.NewFileUsage(docID, nil, entity.FileUsageViewed, map[string]any{
		"ip":   middleware.GetClientIP(ctx),
		"user": u.Username,
	})
	_ = c.fileUsages.Create(ctx.Request.Context(), usage)
}

// Delete implements DELETE /document/{id} (owner only).
// @Summary Delete a document and everything it owns
// @Tags Document
// @Param id path string true "Document ID"
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /document/{id} [delete]
func (c *DocumentController) Delete(ctx *gin.Context) {
	doc, userID, ok := c.loadDoc(ctx)
	if !ok {
		return
	}
	if !c.authorize(ctx, doc, userID, false) {
		return
	}
	if _, err := c.documents.Delete(ctx.Request.Context(), c.collector, doc.ID); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Info implements GET /document/{id}/info.
// @Summary Fetch field/page geometry for a document
// @Tags Document
// @Produce json
// @Param id path string true "Document ID"
// @Success 200 {object} dto.InfoResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Header 503 {string} Retry-After "seconds until field info is ready"
// @Security BearerAuth
// @Router /document/{id}/info [get]
func (c *DocumentController) Info(ctx *gin.Context) {
	doc, userID, ok := c.loadDoc(ctx)
	if !ok {
		return
	}
	if !c.authorize(ctx, doc, userID, true) {
		return
	}

	info, err := c.documents.GetInfo(ctx.Request.Context(), doc.ID)
	if err != nil {
		if errors.Is(err, entity.ErrFieldInfoNotReady) {
			ctx.Header("Retry-After", "30")
		}
		HandleError(ctx, err)
		return
	}

	resp := dto.InfoResponse{Title: info.Title, Pages: info.Pages, Fields: info.Fields}
	if resp.Pages == nil {
		resp.Pages = []map[string]any{}
	}
	if resp.Fields == nil {
		resp.Fields = []map[string]any{}
	}
	ctx.JSON(http.StatusOK, resp)
}

// Audit implements GET /document/{id}/audit, content-negotiated between
// application/json (default) and application/pdf.
// @Summary Fetch the merged audit log for a document
// @Tags Document
// @Produce json
// @Produce application/pdf
// @Param id path string true "Document ID"
// @Success 200 {file} binary
// @Failure 401 {object} dto.ErrorResponse
// @Failure 406 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /document/{id}/audit [get]
func (c *DocumentController) Audit(ctx *gin.Context) {
	doc, userID, ok := c.loadDoc(ctx)
	if !ok {
		return
	}
	if !c.authorize(ctx, doc, userID, true) {
		return
	}

	switch negotiateJSONOrPDF(ctx.GetHeader("Accept")) {
	case "application/pdf":
		data, err := c.audit.MaterializePDF(ctx.Request.Context(), doc.ID)
		if err != nil {
			HandleError(ctx, err)
			return
		}
		ctx.Data(http.StatusOK, "application/pdf", data)
	case "application/json":
		data, err := c.audit.MaterializeJSON(ctx.Request.Context(), doc.ID, false)
		if err != nil {
			HandleError(ctx, err)
			return
		}
		ctx.Data(http.StatusOK, "application/json", data)
	default:
		HandleError(ctx, entity.ErrNotAcceptable)
	}
}

// AgreeTOS implements POST /document/{id}/agree-tos.
// @Summary Record the caller's agreement to the document's terms
// @Tags Document
// @Param id path string true "Document ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /document/{id}/agree-tos [post]
func (c *DocumentController) AgreeTOS(ctx *gin.Context) {
	doc, userID, ok := c.loadDoc(ctx)
	if !ok {
		return
	}
	if scopedDoc, hasScope := middleware.GetTokenDocumentID(ctx); hasScope && scopedDoc != doc.ID {
		HandleError(ctx, entity.ErrTokenScopeMismatch)
		return
	}

	if err := c.fill.AgreeTOS(ctx.Request.Context(), userID, doc.ID, middleware.GetClientIP(ctx)); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Remind implements POST /document/{id}/remind (owner only).
// @Summary Send (or re-send) a signing reminder email
// @Tags Document
// @Accept json
// @Param id path string true "Document ID"
// @Param request body dto.RemindRequest false "Target email; every signatory if omitted"
// @Success 202
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /document/{id}/remind [post]
func (c *DocumentController) Remind(ctx *gin.Context) {
	doc, userID, ok := c.loadDoc(ctx)
	if !ok {
		return
	}
	if doc.OwnerUserID != userID {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}

	var req dto.RemindRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			HandleError(ctx, entity.ErrInvalidInput)
			return
		}
	}

	if req.Email != nil {
		onDocument, err := c.emailBelongsToDocument(ctx, doc.ID, *req.Email)
		if err != nil {
			HandleError(ctx, err)
			return
		}
		if !onDocument {
			HandleError(ctx, entity.ErrUserNotOnDocument)
			return
		}
	}

	if err := c.jobs.EnqueueSendEmail(ctx.Request.Context(), doc.ID, req.Email); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusAccepted)
}

// emailBelongsToDocument reports whether email names a User holding at
// least one Field on documentID.
func (c *DocumentController) emailBelongsToDocument(ctx *gin.Context, documentID uuid.UUID, email string) (bool, error) {
	fields, err := c.fields.ListByDocument(ctx.Request.Context(), documentID)
	if err != nil {
		return false, err
	}
	for _, f := range fields {
		if f.UserID == nil {
			continue
		}
		u, err := c.users.FindByID(ctx.Request.Context(), *f.UserID)
		if err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				continue
			}
			return false, err
		}
		if strings.EqualFold(u.Username, email) {
			return true, nil
		}
	}
	return false, nil
}

func negotiatePDFOrPNG(accept string) string {
	if accept == "" || strings.Contains(accept, "*/*") || strings.Contains(accept, "application/pdf") {
		return "application/pdf"
	}
	if strings.Contains(accept, "image/png") {
		return "image/png"
	}
	return ""
}

func negotiateJSONOrPDF(accept string) string {
	if accept == "" || strings.Contains(accept, "*/*") || strings.Contains(accept, "application/json") {
		return "application/json"
	}
	if strings.Contains(accept, "application/pdf") {
		return "application/pdf"
	}
	return ""
}
