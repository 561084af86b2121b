package api

import (
	"math"
	"time"

	"github.com/samber/lo"

	"github.com/rahulsunilkumar/backtestsim/internal/engine"
	"github.com/rahulsunilkumar/backtestsim/internal/strategy"
)

// BacktestRequest selects the price series (either a ticker plus date range
// to fetch, or an inline price array) and the run parameters.
type BacktestRequest struct {
	Ticker         string    `json:"ticker"`
	Start          string    `json:"start"`
	End            string    `json:"end"`
	Prices         []float64 `json:"prices"`
	ShortWindow    int       `json:"short_window" binding:"required,min=1"`
	LongWindow     int       `json:"long_window" binding:"required,min=1"`
	InitialCapital float64   `json:"initial_capital"`
	LotSize        int       `json:"lot_size"`
}

// SignalPoint is one dated row of the signal series. Position is omitted at
// the first index, where the diff is undefined.
type SignalPoint struct {
	Date     string   `json:"date"`
	Price    float64  `json:"price"`
	ShortMA  float64  `json:"short_ma"`
	LongMA   float64  `json:"long_ma"`
	Signal   float64  `json:"signal"`
	Position *float64 `json:"position,omitempty"`
}

// EquityPoint is one dated row of the portfolio series. Return is omitted at
// the first index.
type EquityPoint struct {
	Date       string   `json:"date"`
	StockUnits float64  `json:"stock_units"`
	Holdings   float64  `json:"holdings"`
	Cash       float64  `json:"cash"`
	Total      float64  `json:"total"`
	Return     *float64 `json:"return,omitempty"`
}

// BacktestResponse is the full run payload consumed by charting frontends.
// The summary metrics are pointers for the same reason the per-point fields
// are: a non-finite value is omitted rather than breaking the JSON render.
type BacktestResponse struct {
	RunID       string           `json:"run_id"`
	Ticker      string           `json:"ticker"`
	Params      engine.Params    `json:"params"`
	Degenerate  bool             `json:"degenerate"`
	TotalReturn *float64         `json:"total_return,omitempty"`
	FinalValue  *float64         `json:"final_value,omitempty"`
	Events      []strategy.Event `json:"events"`
	Signals     []SignalPoint    `json:"signals"`
	Equity      []EquityPoint    `json:"equity"`
}

// finite returns a pointer for JSON marshaling, nil for the NaN and Inf
// values that JSON cannot encode. Period returns reach Inf when equity
// passes through zero and the strategy re-enters, which the engine accepts
// as valid arithmetic.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func toResponse(res *engine.Result) BacktestResponse {
	sig := res.Signals
	port := res.Portfolio

	signals := lo.Map(sig.Dates, func(d time.Time, i int) SignalPoint {
		return SignalPoint{
			Date:     d.Format("2006-01-02"),
			Price:    sig.Price[i],
			ShortMA:  sig.ShortMA[i],
			LongMA:   sig.LongMA[i],
			Signal:   sig.Signal[i],
			Position: finite(sig.Position[i]),
		}
	})
	equity := lo.Map(port.Dates, func(d time.Time, i int) EquityPoint {
		return EquityPoint{
			Date:       d.Format("2006-01-02"),
			StockUnits: port.StockUnits[i],
			Holdings:   port.Holdings[i],
			Cash:       port.Cash[i],
			Total:      port.Total[i],
			Return:     finite(port.Returns[i]),
		}
	})

	return BacktestResponse{
		RunID:       res.RunID,
		Ticker:      res.Ticker,
		Params:      res.Params,
		Degenerate:  res.Degenerate,
		TotalReturn: finite(res.TotalReturn),
		FinalValue:  finite(res.FinalValue),
		Events:      res.Events,
		Signals:     signals,
		Equity:      equity,
	}
}
