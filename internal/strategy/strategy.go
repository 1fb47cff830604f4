package strategy

import (
	goValidator "github.com/go-playground/validator/v10"

	"golang-backtest/internal/dto"
	"golang-backtest/internal/indicator"
	"golang-backtest/internal/model"
)

// Strategy maps indicator state at a bar to a trading signal. Implementations
// are prepared once against a bar range and then consulted per index; Signal
// at index i only ever reads indicator values derived from bars <= i.
// A Strategy instance is bound to a single simulation run and is not safe for
// concurrent use.
type Strategy interface {
	// Name returns the variant identifier.
	Name() dto.Variant
	// Label returns a human-readable parameter combination, e.g. "MA(10/20)".
	Label() string
	// Prepare computes the indicator series the strategy needs.
	Prepare(bars []model.Bar, ind *indicator.Cache) error
	// Signal returns the decision for bar i. Undefined indicator inputs
	// always yield HOLD.
	Signal(i int) dto.Signal
}

var validate = goValidator.New()
