package transport

import "github.com/labstack/echo/v4"

// Envelope is the uniform response shape every endpoint answers with.
type Envelope struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func Success(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, Envelope{Status: "success", Message: message, Data: data})
}

func Error(c echo.Context, code int, message string, data interface{}) error {
	if code <= 0 {
		code = 400
	}
	return c.JSON(code, Envelope{Status: "error", Message: message, Data: data})
}
