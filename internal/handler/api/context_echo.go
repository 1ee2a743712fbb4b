package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"SMCTrader/internal/domain/models"
	domrepo "SMCTrader/internal/domain/repository"
	"SMCTrader/internal/service/metrics"
	"SMCTrader/internal/service/ratelimit"
	"SMCTrader/internal/usecase"
	xhttp "SMCTrader/pkg/http"
	xlogger "SMCTrader/pkg/logger"
	"SMCTrader/pkg/util"

	"github.com/labstack/echo/v4"
)

// ContextEchoHandler serves trading context reads and idea memory controls.
type ContextEchoHandler struct {
	logger  *xlogger.Logger
	eval    *usecase.ContextEvaluator
	candles *usecase.CandlesUseCase
	ideas   *usecase.IdeasUseCase
	rl      *ratelimit.Limiter
}

func NewContextEchoHandler(
	logger *xlogger.Logger,
	eval *usecase.ContextEvaluator,
	candles *usecase.CandlesUseCase,
	ideas *usecase.IdeasUseCase,
	rl *ratelimit.Limiter,
) *ContextEchoHandler {
	metrics.Register(nil)
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &ContextEchoHandler{logger: logger, eval: eval, candles: candles, ideas: ideas, rl: rl}
}

func (h *ContextEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/context", h.wrap("context", h.Context))
	g.POST("/context/evaluate", h.wrap("evaluate", h.Evaluate))
	g.GET("/structure", h.wrap("structure", h.Structure))
	g.GET("/pois", h.wrap("pois", h.POIs))
	g.GET("/zones", h.wrap("zones", h.Zones))
	g.GET("/liquidity", h.wrap("liquidity", h.Liquidity))
	g.GET("/narrative", h.wrap("narrative", h.Narrative))
	g.GET("/chart", h.wrap("chart", h.Chart))
	g.GET("/candles", h.wrap("candles", h.Candles))

	ig := g.Group("/ideas")
	ig.GET("/failed", h.wrap("ideas_failed", h.FailedIdeas))
	ig.POST("/failed", h.wrap("ideas_mark_failed", h.MarkFailed))
	ig.POST("/active", h.wrap("ideas_mark_active", h.MarkActive))
	ig.POST("/reset", h.wrap("ideas_reset", h.ResetIdeas))
}

// wrap applies per-client throttling and records endpoint latency.
func (h *ContextEchoHandler) wrap(endpoint string, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		defer func() { metrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

		if h.rl != nil && !h.rl.Allow(c.RealIP()+":"+endpoint) {
			metrics.APIThrottled.Inc()
			h.logger.Warn("request throttled", xlogger.String("endpoint", endpoint), xlogger.String("remote", c.RealIP()))
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
		}
		c.Set("endpoint", endpoint)
		return next(c)
	}
}

func (h *ContextEchoHandler) badRequest(c echo.Context, verr interface{}) error {
	metrics.APIErrors.WithLabelValues(endpointOf(c), "ERR_BAD_REQUEST").Inc()
	return xhttp.BadRequestResponse(c, verr)
}

func (h *ContextEchoHandler) fail(c echo.Context, err error) error {
	appErr := toAppError(err)
	endpoint := endpointOf(c)
	metrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	if appErr.Status >= 500 {
		h.logger.Error("api request failed", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	} else {
		h.logger.Debug("api request rejected", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

func endpointOf(c echo.Context) string {
	if s, ok := c.Get("endpoint").(string); ok {
		return s
	}
	return "unknown"
}

// toAppError maps domain sentinels onto API error codes.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, domrepo.ErrNotFound):
		return xhttp.NotFoundError("no candles for symbol").WithError(err)
	case errors.Is(err, domrepo.ErrInsufficientCandles):
		return xhttp.BadRequestError("no closed candles supplied").WithError(err)
	case errors.Is(err, domrepo.ErrUnavailable):
		return xhttp.UnavailableError("candle storage unavailable").WithError(err)
	default:
		return xhttp.InternalError("evaluation failed").WithError(err)
	}
}

// respond reads the context of one pair without advancing its narrative and
// projects it through view.
func (h *ContextEchoHandler) respond(c echo.Context, chart bool, view func(*models.TradingContext) interface{}) error {
	req := &models.ContextRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, verr)
	}
	tc, err := h.eval.Project(c.Request().Context(), usecase.EvaluateParams{
		Symbol:       strings.ToUpper(req.Symbol),
		Timeframe:    domrepo.NormalizeTimeframe(req.TF, domrepo.DefaultTimeframe()),
		HTFTimeframe: domrepo.NormalizeTimeframe(req.HTF, domrepo.DefaultHTFTimeframe()),
		N:            req.N,
		Chart:        chart || req.Chart,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, view(tc))
}

func (h *ContextEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]interface{}{
		"status":   "ok",
		"symbols":  h.eval.Sessions().Symbols(),
		"sessions": h.eval.Sessions().Keys(),
	})
}

func (h *ContextEchoHandler) Context(c echo.Context) error {
	return h.respond(c, false, func(tc *models.TradingContext) interface{} { return tc })
}

func (h *ContextEchoHandler) Evaluate(c echo.Context) error {
	req := &models.EvaluateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, verr)
	}
	p := usecase.EvaluateParams{
		Symbol:       strings.ToUpper(req.Symbol),
		Timeframe:    domrepo.NormalizeTimeframe(req.TF, domrepo.DefaultTimeframe()),
		HTFTimeframe: domrepo.NormalizeTimeframe(req.HTF, domrepo.DefaultHTFTimeframe()),
		N:            len(req.Candles),
		Chart:        req.Chart,
	}
	tc, err := h.eval.EvaluateSeries(c.Request().Context(), p, req.Candles, req.HTFCandles, req.Stateless)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, tc)
}

type structureView struct {
	Symbol         string                `json:"symbol"`
	LastClosedTime time.Time             `json:"last_closed_time"`
	Swings         []models.SwingPoint   `json:"swings"`
	Structure      models.StructureState `json:"structure"`
	HTFStructure   models.StructureState `json:"htf_structure"`
	Bias           models.BiasReport     `json:"bias"`
}

func (h *ContextEchoHandler) Structure(c echo.Context) error {
	return h.respond(c, false, func(tc *models.TradingContext) interface{} {
		return structureView{
			Symbol:         tc.Symbol,
			LastClosedTime: tc.LastClosedTime,
			Swings:         tc.Swings,
			Structure:      tc.Structure,
			HTFStructure:   tc.HTFStructure,
			Bias:           tc.Bias,
		}
	})
}

type poisView struct {
	Symbol   string             `json:"symbol"`
	Price    float64            `json:"price"`
	POIs     models.POISet      `json:"pois"`
	HTFPOIs  models.POISet      `json:"htf_pois"`
	EntryPOI *models.OrderBlock `json:"entry_poi,omitempty"`
}

func (h *ContextEchoHandler) POIs(c echo.Context) error {
	return h.respond(c, false, func(tc *models.TradingContext) interface{} {
		return poisView{Symbol: tc.Symbol, Price: tc.Price, POIs: tc.POIs, HTFPOIs: tc.HTFPOIs, EntryPOI: tc.EntryPOI}
	})
}

type zonesView struct {
	Symbol   string             `json:"symbol"`
	Price    float64            `json:"price"`
	Zone     *models.Zone       `json:"zone,omitempty"`
	ZoneName models.ZoneName    `json:"zone_name"`
	Session  models.SessionInfo `json:"session"`
}

func (h *ContextEchoHandler) Zones(c echo.Context) error {
	return h.respond(c, false, func(tc *models.TradingContext) interface{} {
		return zonesView{Symbol: tc.Symbol, Price: tc.Price, Zone: tc.Zone, ZoneName: tc.ZoneName, Session: tc.Session}
	})
}

type liquidityView struct {
	Symbol     string                 `json:"symbol"`
	Price      float64                `json:"price"`
	Liquidity  models.LiquidityMap    `json:"liquidity"`
	Inducement *models.InducementWick `json:"inducement,omitempty"`
}

func (h *ContextEchoHandler) Liquidity(c echo.Context) error {
	return h.respond(c, false, func(tc *models.TradingContext) interface{} {
		return liquidityView{Symbol: tc.Symbol, Price: tc.Price, Liquidity: tc.Liquidity, Inducement: tc.Inducement}
	})
}

type narrativeView struct {
	Symbol      string                   `json:"symbol"`
	Input       models.NarrativeInput    `json:"input"`
	Narrative   models.NarrativeSnapshot `json:"narrative"`
	Direction   models.Polarity          `json:"direction"`
	Alignment   models.Alignment         `json:"alignment"`
	IdeaKey     string                   `json:"idea_key,omitempty"`
	IdeaAllowed bool                     `json:"idea_allowed"`
	EntrySignal bool                     `json:"entry_signal"`
	Reason      models.Reason            `json:"reason_code"`
}

func (h *ContextEchoHandler) Narrative(c echo.Context) error {
	return h.respond(c, false, func(tc *models.TradingContext) interface{} {
		return narrativeView{
			Symbol:      tc.Symbol,
			Input:       tc.NarrativeInput,
			Narrative:   tc.Narrative,
			Direction:   tc.Direction,
			Alignment:   tc.Alignment,
			IdeaKey:     tc.IdeaKey,
			IdeaAllowed: tc.IdeaAllowed,
			EntrySignal: tc.EntrySignal,
			Reason:      tc.Reason,
		}
	})
}

func (h *ContextEchoHandler) Chart(c echo.Context) error {
	return h.respond(c, true, func(tc *models.TradingContext) interface{} { return tc.Chart })
}

func (h *ContextEchoHandler) Candles(c echo.Context) error {
	req := &models.CandlesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, verr)
	}
	symbol := strings.ToUpper(req.Symbol)
	tf := domrepo.NormalizeTimeframe(req.TF, domrepo.DefaultTimeframe())

	var (
		res *usecase.GetCandlesResult
		err error
	)
	if req.From != "" || req.To != "" {
		from, okFrom := util.ParseTime(req.From)
		to := util.ParseTimeDefault(req.To, time.Now().UTC())
		if !okFrom {
			return h.badRequest(c, []xhttp.ValidationError{{Code: "ERR_FORMAT", Field: "from", Message: "from must be RFC3339 or unix seconds"}})
		}
		if from.After(to) {
			return h.badRequest(c, []xhttp.ValidationError{{Code: "ERR_RANGE", Field: "from", Message: "from must not be after to"}})
		}
		res, err = h.candles.GetCandles(c.Request().Context(), usecase.GetCandlesParams{
			Symbol: symbol, Timeframe: tf, From: from.UTC(), To: to.UTC(), Limit: req.N,
		})
	} else {
		res, err = h.candles.GetLatest(c.Request().Context(), symbol, tf, req.N)
	}
	if err != nil {
		return h.fail(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *ContextEchoHandler) FailedIdeas(c echo.Context) error {
	symbol := strings.ToUpper(c.QueryParam("symbol"))
	if symbol == "" {
		return h.badRequest(c, []xhttp.ValidationError{{Code: "ERR_REQUIRED", Field: "symbol", Message: "symbol is required"}})
	}
	out, err := h.ideas.Failed(c.Request().Context(), symbol)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.ListResponse(c, out, int64(len(out)))
}

func (h *ContextEchoHandler) MarkFailed(c echo.Context) error {
	return h.markIdea(c, h.ideas.MarkFailed)
}

func (h *ContextEchoHandler) MarkActive(c echo.Context) error {
	return h.markIdea(c, h.ideas.MarkActive)
}

func (h *ContextEchoHandler) markIdea(c echo.Context, mark func(context.Context, usecase.MarkIdeaParams) (string, error)) error {
	req := &models.IdeaRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, verr)
	}
	session := models.SessionName(req.Session)
	if session == "" {
		session = h.eval.SessionAt(time.Now().UTC()).Name
	}
	key, err := mark(c.Request().Context(), usecase.MarkIdeaParams{
		Symbol:    strings.ToUpper(req.Symbol),
		Direction: models.Polarity(req.Direction),
		Zone:      models.ZoneName(req.Zone),
		Price:     req.Price,
		Session:   session,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, map[string]string{"key": key})
}

func (h *ContextEchoHandler) ResetIdeas(c echo.Context) error {
	req := &models.IdeaResetRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return h.badRequest(c, verr)
	}
	snap, err := h.ideas.Reset(c.Request().Context(), strings.ToUpper(req.Symbol), req.Reason)
	if err != nil {
		return h.fail(c, err)
	}
	return xhttp.SuccessResponse(c, snap)
}

var _ xhttp.Handler = (*ContextEchoHandler)(nil)
