package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"busao_api/internal/httperr"
)

// respondError translates a tagged error into the response; the underlying
// cause stays in the server-side log only.
func respondError(c *gin.Context, err error) {
	c.JSON(httperr.Status(err), gin.H{"error": err.Error()})
}

func parseIDParam(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, httperr.New(httperr.Validation, "invalid id")
	}
	return uint(id), nil
}
