package http

import "github.com/labstack/echo/v4"

// Handler defines HTTP route registration interface.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

// Handlers combines multiple handlers into one.
func Handlers(hs ...Handler) Handler {
	return handlerChain(hs)
}

type handlerChain []Handler

func (c handlerChain) RegisterRoutes(e *echo.Echo) {
	for _, h := range c {
		h.RegisterRoutes(e)
	}
}
