package model

import (
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/bytedance/sonic"
)

// LaunchConfig carries the bootstrap parameters of one backtest session.
// Field tags follow the server's wire layout exactly.
type LaunchConfig struct {
	Exchanges []enum.Exchange `json:"exchanges"`
	Symbol    string          `json:"symbol"`
	StartTime int64           `json:"start_time"`
	EndTime   int64           `json:"end_time"`
	Balance   Balance         `json:"balance"`
	Source    DataSource      `json:"source"`
	FeeRate   FeeRate         `json:"fee_rate"`
}

func (c LaunchConfig) Validate() error {
	if len(c.Exchanges) == 0 || c.Symbol == "" {
		return exception.ErrInvalidArgument
	}
	for _, ex := range c.Exchanges {
		if !ex.IsAvailable() {
			return exception.ErrInvalidArgument
		}
	}
	if c.EndTime < c.StartTime {
		return exception.ErrInvalidArgument
	}
	return nil
}

// Balance is the server's total/available/freezed triple. The "freezed"
// spelling is the server's.
type Balance struct {
	Total     float64 `json:"total"`
	Available float64 `json:"available"`
	Freezed   float64 `json:"freezed"`
}

// FeeRate holds maker/taker rates.
type FeeRate struct {
	MakerFee float64 `json:"maker_fee"`
	TakerFee float64 `json:"taker_fee"`
}

// DataSource selects where the server replays from. It serializes as the
// bare string "Database" or as {"FilePath": "..."} when a file path is set,
// matching the server's externally tagged encoding.
type DataSource struct {
	FilePath string
}

const sourceDatabase = `"Database"`

func (s DataSource) MarshalJSON() ([]byte, error) {
	if s.FilePath == "" {
		return []byte(sourceDatabase), nil
	}
	return sonic.ConfigFastest.Marshal(map[string]string{"FilePath": s.FilePath})
}

func (s *DataSource) UnmarshalJSON(data []byte) error {
	if string(data) == sourceDatabase {
		s.FilePath = ""
		return nil
	}

	var tagged struct {
		FilePath string `json:"FilePath"`
	}
	if err := sonic.ConfigFastest.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if tagged.FilePath == "" {
		return exception.ErrInvalidArgument
	}
	s.FilePath = tagged.FilePath
	return nil
}
