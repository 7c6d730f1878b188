package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/pkg/httputil"
	"github.com/jwalitptl/vet-admin-api/pkg/validator"
)

// Gin context keys set by the auth middleware
const (
	ContextStaffID = "staffID"
	ContextClaims  = "claims"
)

// ValidationErrorResponse lists the offending fields of a rejected request.
type ValidationErrorResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func respondBindError(c *gin.Context, err error) {
	if fields := validator.FormatValidationErrors(err); fields != nil {
		c.JSON(http.StatusBadRequest, ValidationErrorResponse{
			Status:  "error",
			Message: "validation failed",
			Errors:  fields,
		})
		return
	}
	httputil.RespondBadRequest(c, "invalid request: "+err.Error())
}

// BindJSON binds and validates the body, answering 400 on failure.
func BindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// BindQuery binds and validates query parameters, answering 400 on failure.
func BindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

// ParamID parses a uuid path parameter, answering 400 when it is malformed.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.RespondBadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// StaffID is the authenticated staff member, or uuid.Nil.
func StaffID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextStaffID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

var errNoClaims = errors.New("no token claims on request")

// Claims returns the validated token claims of the request.
func Claims(c *gin.Context) (*model.TokenClaims, error) {
	if v, ok := c.Get(ContextClaims); ok {
		if claims, ok := v.(*model.TokenClaims); ok {
			return claims, nil
		}
	}
	return nil, errNoClaims
}

// QueryID parses an optional uuid query parameter into dst, answering 400 when
// it is malformed.
func QueryID(c *gin.Context, name string, dst *uuid.UUID) bool {
	v := c.Query(name)
	if v == "" {
		return true
	}
	id, err := uuid.Parse(v)
	if err != nil {
		httputil.RespondBadRequest(c, "invalid "+name)
		return false
	}
	*dst = id
	return true
}

// Guard returns h, or a pass-through handler when h is nil.
func Guard(h gin.HandlerFunc) gin.HandlerFunc {
	if h == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return h
}
