package indicators

import (
	"finterm/internal/models"
)

// OBV calculates On-Balance Volume.
type OBV struct{}

// NewOBV creates a new OBV indicator.
func NewOBV() *OBV {
	return &OBV{}
}

func (o *OBV) Name() string {
	return "OBV"
}

func (o *OBV) Period() int {
	return 1
}

func (o *OBV) Calculate(candles []models.Candle) ([]float64, error) {
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)
	result[0] = float64(candles[0].Volume)

	for i := 1; i < n; i++ {
		if candles[i].Close > candles[i-1].Close {
			result[i] = result[i-1] + float64(candles[i].Volume)
		} else if candles[i].Close < candles[i-1].Close {
			result[i] = result[i-1] - float64(candles[i].Volume)
		} else {
			result[i] = result[i-1]
		}
	}

	return result, nil
}

// ADLine calculates Accumulation/Distribution Line.
type ADLine struct{}

// NewADLine creates a new A/D Line indicator.
func NewADLine() *ADLine {
	return &ADLine{}
}

func (a *ADLine) Name() string {
	return "ADLine"
}

func (a *ADLine) Period() int {
	return 1
}

func (a *ADLine) Calculate(candles []models.Candle) ([]float64, error) {
	if len(candles) == 0 {
		return nil, ErrInsufficientData
	}

	n := len(candles)
	result := make([]float64, n)

	var cumAD float64
	for i := 0; i < n; i++ {
		hl := candles[i].High - candles[i].Low
		if hl != 0 {
			mfm := ((candles[i].Close - candles[i].Low) - (candles[i].High - candles[i].Close)) / hl
			adv := mfm * float64(candles[i].Volume)
			cumAD += adv
		}
		result[i] = cumAD
	}

	return result, nil
}
