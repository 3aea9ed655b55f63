package handlers

import (
	"github.com/gin-gonic/gin"
)

// ApiResponse - единый конверт успешного ответа: {code, data, message, success}.
// Ошибки уходят в той же форме через pkg/apperrors.
type ApiResponse struct {
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Message string      `json:"message"`
	Success bool        `json:"success"`
}

// Respond пишет успешный ответ в едином конверте
func Respond(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, ApiResponse{
		Code:    status,
		Data:    data,
		Message: message,
		Success: true,
	})
}
