package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Códigos de error del contrato público. El sufijo decimal distingue la
// causa dentro del mismo status HTTP.
const (
	CodeBadRequest = 400.01
	CodeNotFound   = 404.09
	CodeInternal   = 500.00
)

// ErrorResponse define la estructura estándar para las respuestas de error.
type ErrorResponse struct {
	ErrorCode    float64 `json:"error_code"`
	ErrorType    string  `json:"error_type"`
	Description  string  `json:"description"`
	ErrorMessage string  `json:"error_message"`
}

// SendSuccess envía una respuesta exitosa con un payload de datos.
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// SendError envía una respuesta de error con formato estandarizado.
func SendError(c *gin.Context, statusCode int, errorCode float64, description, message string) {
	c.JSON(statusCode, gin.H{
		"error": ErrorResponse{
			ErrorCode:    errorCode,
			ErrorType:    http.StatusText(statusCode),
			Description:  description,
			ErrorMessage: message,
		},
	})
}

// --- Helpers específicos para errores comunes ---

func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, CodeBadRequest, "Invalid input, please check the input parameters", message)
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, CodeNotFound, "A record with the specified user details does not exist", message)
}

func SendInternalServerError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, CodeInternal, "Unexpected internal error", message)
}
