package response

import "github.com/gin-gonic/gin"

// The wire contract is the one the original front-end widget expects:
// success bodies are the operation result verbatim, failures carry an
// "error" key. Callers treat presence of "error" as failure regardless
// of the HTTP status code.

func OK(c *gin.Context, payload interface{}) {
	c.JSON(200, payload)
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, gin.H{"error": message})
}
