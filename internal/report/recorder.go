package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rahulsunilkumar/backtestsim/internal/engine"
)

// RunRecord is the flat per-run summary appended to the runs file.
type RunRecord struct {
	RunID          string    `json:"run_id"`
	Ticker         string    `json:"ticker"`
	ShortWindow    int       `json:"short_window"`
	LongWindow     int       `json:"long_window"`
	InitialCapital float64   `json:"initial_capital"`
	LotSize        int       `json:"lot_size"`
	TotalReturn    float64   `json:"total_return"`
	FinalValue     float64   `json:"final_value"`
	Trades         int       `json:"trades"`
	RecordedAt     time.Time `json:"recorded_at"`
}

// NewRunRecord flattens a result into its stored form.
func NewRunRecord(res *engine.Result) RunRecord {
	return RunRecord{
		RunID:          res.RunID,
		Ticker:         res.Ticker,
		ShortWindow:    res.Params.ShortWindow,
		LongWindow:     res.Params.LongWindow,
		InitialCapital: res.Params.InitialCapital,
		LotSize:        res.Params.LotSize,
		TotalReturn:    res.TotalReturn,
		FinalValue:     res.FinalValue,
		Trades:         len(res.Events),
		RecordedAt:     time.Now().UTC(),
	}
}

// JSONLRecorder appends run records as JSON lines for later analysis.
type JSONLRecorder struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJSONLRecorder creates/opens the target file and returns a recorder.
func NewJSONLRecorder(path string) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLRecorder{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record writes a single run record to the underlying JSONL file.
func (r *JSONLRecorder) Record(rec RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return os.ErrClosed
	}
	return r.enc.Encode(rec)
}

// Close flushes and closes the file handle.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
