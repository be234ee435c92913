// Package middleware holds the gin adapter's cross-cutting concerns: bearer
// token verification, client-IP extraction, request identification, and
// request timeouts.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rendis/esigncore/internal/entity"
	"github.com/rendis/esigncore/internal/service/identity"
)

const (
	userIDKey = "user_id"
	docIDKey  = "token_doc_id"
)

// Auth validates a bearer JWT issued by identity.Service and stores the
// caller's user id (and, for access-URI-exchanged tokens, the scoped
// document id) in the gin context.
func Auth(svc *identity.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWithError(c, http.StatusUnauthorized, entity.ErrUnauthorized)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortWithError(c, http.StatusUnauthorized, entity.ErrUnauthorized)
			return
		}

		claims, err := svc.Verify(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, entity.ErrUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, entity.ErrUnauthorized)
			return
		}
		c.Set(userIDKey, userID)
		if claims.Doc != nil {
			c.Set(docIDKey, *claims.Doc)
		}

		c.Next()
	}
}

// GetUserID retrieves the authenticated caller's id.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetTokenDocumentID retrieves the document id an access-URI-exchanged
// token is scoped to, if any. Used to enforce entity.ErrTokenScopeMismatch
// on document routes reached via a signer's access link.
func GetTokenDocumentID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(docIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
