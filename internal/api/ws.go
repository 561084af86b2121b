package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(*http.Request) bool { return true },
}

// frame is one message in the streamed rendering of a run.
type frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// stream runs one backtest per connection and pushes the computed series to
// the client in chart-sized frames: signals, then equity, then the summary.
func (s *Server) stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var req BacktestRequest
	if err := conn.ReadJSON(&req); err != nil {
		_ = conn.WriteJSON(frame{Type: "error", Data: err.Error()})
		return
	}

	res, _, err := s.runBacktest(c.Request.Context(), req)
	if err != nil {
		_ = conn.WriteJSON(frame{Type: "error", Data: err.Error()})
		return
	}

	resp := toResponse(res)
	msgs := []frame{
		{Type: "signals", Data: resp.Signals},
		{Type: "equity", Data: resp.Equity},
		{Type: "summary", Data: gin.H{
			"run_id":       resp.RunID,
			"ticker":       resp.Ticker,
			"degenerate":   resp.Degenerate,
			"total_return": resp.TotalReturn,
			"final_value":  resp.FinalValue,
			"events":       resp.Events,
		}},
	}
	for _, msg := range msgs {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			s.log.Warn().Err(err).Msg("websocket write failed")
			return
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}
