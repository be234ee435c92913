package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/http/dto"
	"github.com/rendis/esigncore/internal/http/middleware"
	"github.com/rendis/esigncore/internal/port"
	"github.com/rendis/esigncore/internal/service/identity"
)

// AuthController handles login, access-URI exchange, and the account
// lifecycle endpoints under /account. Username lookups for /auth and
// /account/resurrect are business-agnostic (the caller supplies no business
// id), so they resolve the owning business via FindByUsernameAnyBusiness
// before delegating to identity.Service's business-scoped methods.
type AuthController struct {
	identity *identity.Service
	users    port.UserRepository
	fields   port.FieldUsageRepository
	docs     port.DocumentRepository
}

func NewAuthController(svc *identity.Service, users port.UserRepository, fieldUsages port.FieldUsageRepository, docs port.DocumentRepository) *AuthController {
	return &AuthController{identity: svc, users: users, fields: fieldUsages, docs: docs}
}

// RegisterRoutes wires the public (no-auth) and JWT-gated account routes.
func (c *AuthController) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.POST("/auth", c.Login)
	public.POST("/auth/access-id", c.ExchangeAccessURI)
	public.POST("/account/create", c.CreateAccount)
	public.POST("/account/resurrect", c.ResurrectAccount)

	authed.POST("/account/change-password", c.ChangePassword)
	authed.POST("/account/delete", c.DeleteAccount)
	authed.GET("/account/documents", c.ListDocuments)
	authed.GET("/account/fields", c.ListFields)
}

// Login implements POST /auth.
// @Summary Authenticate with username/password
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, err)
		return
	}

	u, err := c.users.FindByUsernameAnyBusiness(ctx.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			HandleError(ctx, entity.ErrInvalidCredentials)
			return
		}
		HandleError(ctx, err)
		return
	}

	token, err := c.identity.Login(ctx.Request.Context(), u.BusinessID, req.Username, req.Password)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// ExchangeAccessURI implements POST /auth/access-id.
// @Summary Exchange an access-URI for a scoped token
// @Tags Auth
// @Produce json
// @Param accessId header string true "Access URI"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/access-id [post]
func (c *AuthController) ExchangeAccessURI(ctx *gin.Context) {
	uri := ctx.GetHeader("accessId")
	if uri == "" {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	token, err := c.identity.ExchangeAccessURI(ctx.Request.Context(), uri)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			HandleError(ctx, entity.ErrAccessURINotFound)
			return
		}
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// CreateAccount implements POST /account/create.
// @Summary Create a business account
// @Tags Account
// @Accept json
// @Produce json
// @Param request body dto.CreateAccountRequest true "New account"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /account/create [post]
func (c *AuthController) CreateAccount(ctx *gin.Context) {
	var req dto.CreateAccountRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, err)
		return
	}
	businessID, err := uuid.Parse(req.Business)
	if err != nil {
		HandleError(ctx, entity.ErrBusinessNotFound)
		return
	}

	u, err := c.identity.CreateAccount(ctx.Request.Context(), businessID, req.Username, req.Password)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	token, err := c.identity.Login(ctx.Request.Context(), businessID, u.Username, req.Password)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// ChangePassword implements POST /account/change-password.
// @Summary Change the caller's password
// @Tags Account
// @Accept json
// @Success 204
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /account/change-password [post]
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, err)
		return
	}
	if err := c.identity.ChangePassword(ctx.Request.Context(), userID, req.NewPassword); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// DeleteAccount implements POST /account/delete.
// @Summary Soft-delete the caller's account
// @Tags Account
// @Success 202
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /account/delete [post]
func (c *AuthController) DeleteAccount(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	if err := c.identity.SoftDeleteAccount(ctx.Request.Context(), userID); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusAccepted)
}

// ResurrectAccount implements POST /account/resurrect.
// @Summary Reactivate a soft-deleted account
// @Tags Account
// @Accept json
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /account/resurrect [post]
func (c *AuthController) ResurrectAccount(ctx *gin.Context) {
	var req dto.ResurrectRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, err)
		return
	}
	u, err := c.users.FindByUsernameAnyBusiness(ctx.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			HandleError(ctx, entity.ErrUserNotFound)
			return
		}
		HandleError(ctx, err)
		return
	}
	if err := c.identity.ResurrectAccount(ctx.Request.Context(), u.BusinessID, req.Username, req.Password); err != nil {
		HandleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ListDocuments implements GET /account/documents.
// @Summary List documents owned by the caller
// @Tags Account
// @Produce json
// @Success 200 {array} dto.DocumentListItemResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /account/documents [get]
func (c *AuthController) ListDocuments(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	items, err := c.docs.ListByOwner(ctx.Request.Context(), userID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	resp := make([]dto.DocumentListItemResponse, 0, len(items))
	for _, d := range items {
		resp = append(resp, dto.DocumentListItemResponse{ID: d.ID.String(), Title: d.Title})
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListFields implements GET /account/fields.
// @Summary List the caller's fields, newest usage per field
// @Tags Account
// @Produce json
// @Success 200 {array} dto.AccountFieldResponse
// @Failure 401 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /account/fields [get]
func (c *AuthController) ListFields(ctx *gin.Context) {
	userID, ok := middleware.GetUserID(ctx)
	if !ok {
		HandleError(ctx, entity.ErrUnauthorized)
		return
	}
	items, err := c.fields.AccountFields(ctx.Request.Context(), userID)
	if err != nil {
		HandleError(ctx, err)
		return
	}
	resp := make([]dto.AccountFieldResponse, 0, len(items))
	for _, f := range items {
		resp = append(resp, dto.AccountFieldResponse{
			ID:        f.FieldID.String(),
			Status:    f.Status.String(),
			Title:     f.Title,
			Timestamp: f.Timestamp,
		})
	}
	ctx.JSON(http.StatusOK, resp)
}
