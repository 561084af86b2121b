// Package api exposes backtests over HTTP for charting frontends.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rahulsunilkumar/backtestsim/internal/config"
	"github.com/rahulsunilkumar/backtestsim/internal/engine"
	"github.com/rahulsunilkumar/backtestsim/internal/marketdata"
	"github.com/rahulsunilkumar/backtestsim/internal/report"
	"github.com/rahulsunilkumar/backtestsim/internal/series"
)

// Server wires the HTTP surface around the backtest engine.
type Server struct {
	Router   *gin.Engine
	data     *marketdata.Service
	tickers  []string
	cfg      config.Server
	recorder *report.JSONLRecorder
	log      zerolog.Logger
}

// NewServer builds the router. recorder may be nil when runs are not being
// persisted.
func NewServer(data *marketdata.Service, tickers []string, cfg config.Server, recorder *report.JSONLRecorder, log zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{
		Router:   r,
		data:     data,
		tickers:  tickers,
		cfg:      cfg,
		recorder: recorder,
		log:      log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.stream)

	api := s.Router.Group("/api")
	{
		api.GET("/tickers", s.getTickers)
		api.POST("/backtest", s.postBacktest)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) getTickers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tickers": s.tickers})
}

func (s *Server) postBacktest(c *gin.Context) {
	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, status, err := s.runBacktest(c.Request.Context(), req)
	if err != nil {
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toResponse(res))
}

// runBacktest resolves the price series, applies the boundary validation the
// engine deliberately leaves to callers, and runs the engine.
func (s *Server) runBacktest(ctx context.Context, req BacktestRequest) (*engine.Result, int, error) {
	if err := s.checkBounds(req); err != nil {
		return nil, http.StatusBadRequest, err
	}

	prices, status, err := s.resolveSeries(ctx, req)
	if err != nil {
		return nil, status, err
	}

	params := engine.Params{
		ShortWindow:    req.ShortWindow,
		LongWindow:     req.LongWindow,
		InitialCapital: req.InitialCapital,
		LotSize:        req.LotSize,
	}
	if params.InitialCapital <= 0 {
		params.InitialCapital = engine.DefaultParams().InitialCapital
	}
	if params.Degenerate() {
		s.log.Warn().Int("short", params.ShortWindow).Int("long", params.LongWindow).Msg("degenerate window ordering")
	}

	res, err := engine.Run(prices, params)
	if err != nil {
		if errors.Is(err, series.ErrInsufficientData) || errors.Is(err, series.ErrInvalidWindow) {
			return nil, http.StatusUnprocessableEntity, err
		}
		return nil, http.StatusInternalServerError, err
	}

	if s.recorder != nil {
		if err := s.recorder.Record(report.NewRunRecord(res)); err != nil {
			s.log.Warn().Err(err).Msg("record run")
		}
	}
	return res, http.StatusOK, nil
}

// checkBounds enforces the UI-level window ranges when they are configured.
// Inline price arrays are a programmatic surface and skip them.
func (s *Server) checkBounds(req BacktestRequest) error {
	if len(req.Prices) > 0 {
		return nil
	}
	if s.cfg.ShortWindowMin > 0 && req.ShortWindow < s.cfg.ShortWindowMin {
		return fmt.Errorf("short_window must be at least %d", s.cfg.ShortWindowMin)
	}
	if s.cfg.ShortWindowMax > 0 && req.ShortWindow > s.cfg.ShortWindowMax {
		return fmt.Errorf("short_window must be at most %d", s.cfg.ShortWindowMax)
	}
	if s.cfg.LongWindowMin > 0 && req.LongWindow < s.cfg.LongWindowMin {
		return fmt.Errorf("long_window must be at least %d", s.cfg.LongWindowMin)
	}
	if s.cfg.LongWindowMax > 0 && req.LongWindow > s.cfg.LongWindowMax {
		return fmt.Errorf("long_window must be at most %d", s.cfg.LongWindowMax)
	}
	return nil
}

func (s *Server) resolveSeries(ctx context.Context, req BacktestRequest) (series.PriceSeries, int, error) {
	if len(req.Prices) > 0 {
		return inlineSeries(req), http.StatusOK, nil
	}
	if req.Ticker == "" {
		return series.PriceSeries{}, http.StatusBadRequest, errors.New("ticker or prices required")
	}

	from, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		return series.PriceSeries{}, http.StatusBadRequest, fmt.Errorf("parse start: %w", err)
	}
	to, err := time.Parse("2006-01-02", req.End)
	if err != nil {
		return series.PriceSeries{}, http.StatusBadRequest, fmt.Errorf("parse end: %w", err)
	}

	prices, err := s.data.History(ctx, req.Ticker, from, to)
	if err != nil {
		return series.PriceSeries{}, http.StatusBadGateway, err
	}
	return prices, http.StatusOK, nil
}

// inlineSeries synthesizes consecutive daily dates for a raw price array so
// callers can backtest without a data source.
func inlineSeries(req BacktestRequest) series.PriceSeries {
	start, err := time.Parse("2006-01-02", req.Start)
	if err != nil {
		start = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	points := make([]series.Point, len(req.Prices))
	for i, p := range req.Prices {
		points[i] = series.Point{Date: start.AddDate(0, 0, i), Price: p}
	}
	ticker := req.Ticker
	if ticker == "" {
		ticker = "INLINE"
	}
	return series.PriceSeries{Ticker: ticker, Points: points}
}

// Start serves the API until the listener fails.
func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
