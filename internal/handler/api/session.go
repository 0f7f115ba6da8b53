package api

import (
	"net/http"

	"SignalDesk/internal/domain/models"
	"SignalDesk/internal/service/ratelimit"
	"SignalDesk/internal/usecase"
	"SignalDesk/internal/view"
	xhttp "SignalDesk/pkg/http"
	xlogger "SignalDesk/pkg/logger"

	"github.com/labstack/echo/v4"
)

// SessionHandler exposes the trading session over HTTP. Every mutation
// returns the resulting render state so clients that do not hold the
// websocket open still see the outcome.
type SessionHandler struct {
	logger  *xlogger.Logger
	session *usecase.Session
	limiter *ratelimit.Limiter
}

// Per-IP budget for the signal endpoint; well above honest use, the domain
// cooldown is the real gate.
const (
	signalBurst  = 5
	signalPerSec = 1
)

func NewSessionHandler(logger *xlogger.Logger, session *usecase.Session) *SessionHandler {
	return &SessionHandler{logger: logger, session: session, limiter: ratelimit.New()}
}

func (h *SessionHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/state", h.State)
	g.GET("/config", h.Config)
	g.POST("/language", h.SetLanguage)
	g.POST("/market", h.SwitchMarket)
	g.POST("/pair", h.SetPair)
	g.POST("/expiration", h.SelectExpiration)
	g.POST("/signal", h.RequestSignal)
}

// ensureBooted covers clients that skip the initial state fetch.
func (h *SessionHandler) ensureBooted(c echo.Context) {
	h.session.Bootstrap(c.Request().Context(), "", c.Request().Header.Get("Accept-Language"))
}

func (h *SessionHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// State returns the current render state. The first touch boots the
// session; an optional lang query and the Accept-Language header feed the
// initial language resolution.
func (h *SessionHandler) State(c echo.Context) error {
	h.session.Bootstrap(
		c.Request().Context(),
		c.QueryParam("lang"),
		c.Request().Header.Get("Accept-Language"),
	)
	return xhttp.SuccessResponse(c, h.session.State())
}

// Config returns the snapshot-derived UI configuration.
func (h *SessionHandler) Config(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.session.Config())
}

// SetLanguageRequest selects the interface language.
type SetLanguageRequest struct {
	Language string `json:"language" validate:"required,min=2,max=5"`
}

func (h *SessionHandler) SetLanguage(c echo.Context) error {
	h.ensureBooted(c)

	req := &SetLanguageRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.session.SetLanguage(c.Request().Context(), req.Language) {
		h.logger.Debug("language rejected", xlogger.String("code", req.Language))
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("language %q is not available", req.Language))
	}
	return xhttp.SuccessResponse(c, h.session.State())
}

// SwitchMarketRequest selects the active market.
type SwitchMarketRequest struct {
	Market string `json:"market" validate:"required,oneof=forex otc"`
}

// SwitchMarketResponse reports which market was actually activated; a
// closed market is substituted rather than refused.
type SwitchMarketResponse struct {
	Requested string     `json:"requested"`
	Active    string     `json:"active"`
	State     view.State `json:"state"`
}

func (h *SessionHandler) SwitchMarket(c echo.Context) error {
	h.ensureBooted(c)

	req := &SwitchMarketRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	actual := h.session.SwitchMarket(c.Request().Context(), models.Market(req.Market))
	return xhttp.SuccessResponse(c, SwitchMarketResponse{
		Requested: req.Market,
		Active:    string(actual),
		State:     h.session.State(),
	})
}

// SetPairRequest selects a pair within the active market.
type SetPairRequest struct {
	Pair string `json:"pair" validate:"required,min=3,max=32"`
}

func (h *SessionHandler) SetPair(c echo.Context) error {
	h.ensureBooted(c)

	req := &SetPairRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.session.SetPair(c.Request().Context(), req.Pair) {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("pair %q is not in the active market", req.Pair))
	}
	return xhttp.SuccessResponse(c, h.session.State())
}

// SelectExpirationRequest picks an expiration from the active market's menu.
type SelectExpirationRequest struct {
	Seconds int `json:"seconds" validate:"required,gt=0"`
}

func (h *SessionHandler) SelectExpiration(c echo.Context) error {
	h.ensureBooted(c)

	req := &SelectExpirationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	if !h.session.SelectExpiration(c.Request().Context(), req.Seconds) {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("expiration %ds is not in the active market's menu", req.Seconds))
	}
	return xhttp.SuccessResponse(c, h.session.State())
}

// RequestSignal starts an asynchronous signal request. Rejections are
// silent or surfaced as notices; the response carries the state as it
// stood right after the request was taken.
func (h *SessionHandler) RequestSignal(c echo.Context) error {
	if !h.limiter.Allow(c.RealIP(), signalBurst, signalPerSec) {
		h.logger.Warn("signal request rate limited", xlogger.String("ip", c.RealIP()))
		return xhttp.DataResponse(c, http.StatusTooManyRequests, nil)
	}

	h.ensureBooted(c)
	h.session.RequestSignal(c.Request().Context())
	return xhttp.DataResponse(c, http.StatusAccepted, h.session.State())
}
