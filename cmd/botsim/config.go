package main

import (
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/minefield"
	"github.com/Vernacular-FR/Bot-1000mines-sub001/internal/solver"
)

type Duration struct{ time.Duration }

// [Duration] implements [json.Marshaler]
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		var err error
		d.Duration, err = time.ParseDuration(value)
		return err
	default:
		return errors.New("invalid duration")
	}
}

type Config struct {
	Mode      string           `json:"mode"`
	Games     int              `json:"games"`
	Parallel  int              `json:"parallel"`
	Seed      uint64           `json:"seed"`
	MaxCycles int              `json:"max_cycles"`
	Board     minefield.Params `json:"board"`
	Solver    solver.Options   `json:"solver"`
	LogFile   string           `json:"log_file"`
	DebugAddr string           `json:"debug_addr"`
	StepDelay Duration         `json:"step_delay"`
}

func DefaultConfig() Config {
	return Config{
		Mode:      "development",
		Games:     100,
		Parallel:  4,
		Seed:      1,
		Board:     minefield.Params{Width: 16, Height: 16, Mines: 40},
		Solver:    solver.DefaultOptions(),
		StepDelay: Duration{500 * time.Millisecond},
	}
}

func (c Config) Fields() logrus.Fields {
	return map[string]any{
		"mode":       c.Mode,
		"games":      c.Games,
		"parallel":   c.Parallel,
		"seed":       c.Seed,
		"board":      c.Board.String(),
		"guess":      c.Solver.Guess,
		"vars_bound": c.Solver.MaxComponentVars,
		"log_file":   c.LogFile,
		"debug_addr": c.DebugAddr,
	}
}

func (c Config) Development() bool {
	return c.Mode != "production"
}

func ReadConfig(path string, config *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, config)
}
