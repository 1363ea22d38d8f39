package signal

import (
	"time"

	"github.com/minhtran24/meanrev-bot/internal/config"
	"github.com/minhtran24/meanrev-bot/internal/indicators"
	"github.com/minhtran24/meanrev-bot/internal/logger"
	"github.com/minhtran24/meanrev-bot/pkg/types"
)

// whipsawLookback bounds how far back the processor searches for a
// recent opposite signal.
const whipsawLookback = 5

// minVolumeRatio is the participation floor below which any signal is
// downgraded to Hold.
const minVolumeRatio = 0.5

// Snapshot holds the indicator values computed for one candle series.
type Snapshot struct {
	RSI         float64
	BBUpper     float64
	BBMiddle    float64
	BBLower     float64
	BBPosition  float64
	Close       float64
	Volume      float64
	VolumeRatio float64
}

// Record is one entry in the signal history.
type Record struct {
	Timestamp time.Time
	Signal    Signal
	Snapshot  Snapshot
}

// Processor turns candle series into trading signals using RSI and
// Bollinger Bands with vetoes for weak volume and whipsaw reversals.
type Processor struct {
	cfg *config.Config
	log *logger.Logger

	rsi *indicators.RSI
	bb  *indicators.BollingerBands

	history []Record
}

// NewProcessor creates a signal processor for the configured strategy
// parameters.
func NewProcessor(cfg *config.Config, log *logger.Logger) *Processor {
	return &Processor{
		cfg: cfg,
		log: log,
		rsi: indicators.NewRSI(cfg.RSIPeriod),
		bb:  indicators.NewBollingerBands(cfg.BollingerPeriod, cfg.BollingerStdDev),
	}
}

// Process computes indicators for the candle series and derives a
// signal. Series shorter than the longest indicator window produce
// Hold with a nil snapshot; that is a defined no-op, not an error.
// Every call with sufficient data appends to the signal history,
// including Hold outcomes.
func (p *Processor) Process(candles []types.Candle) (Signal, *Snapshot) {
	if len(candles) < p.cfg.MinCandles() {
		p.log.Warning("insufficient data for analysis: %d candles, %d required",
			len(candles), p.cfg.MinCandles())
		return Hold, nil
	}

	snapshot := p.calculateIndicators(candles)
	sig := p.Evaluate(snapshot)

	p.log.Info("signal generated: %s rsi=%.2f close=%.2f bb=[%.2f, %.2f] vol_ratio=%.2f",
		sig, snapshot.RSI, snapshot.Close, snapshot.BBLower, snapshot.BBUpper, snapshot.VolumeRatio)

	p.history = append(p.history, Record{
		Timestamp: candles[len(candles)-1].Timestamp,
		Signal:    sig,
		Snapshot:  *snapshot,
	})

	return sig, snapshot
}

func (p *Processor) calculateIndicators(candles []types.Candle) *Snapshot {
	closes := make([]float64, len(candles))
	volumes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
		volumes[i] = c.Volume
	}

	// Process guarantees MinCandles. RSI wants one extra close for its
	// first delta; when the windows are exactly equal fall back to a
	// neutral reading rather than failing the whole snapshot.
	rsi, err := p.rsi.Calculate(closes)
	if err != nil {
		rsi = 50
	}
	bands, err := p.bb.Calculate(closes)
	if err != nil {
		bands = indicators.Bands{Position: 0.5}
	}

	last := candles[len(candles)-1]
	return &Snapshot{
		RSI:         rsi,
		BBUpper:     bands.Upper,
		BBMiddle:    bands.Middle,
		BBLower:     bands.Lower,
		BBPosition:  bands.Position,
		Close:       last.Close,
		Volume:      last.Volume,
		VolumeRatio: indicators.VolumeRatio(volumes),
	}
}

// Evaluate applies the signal rules to an indicator snapshot. Exposed
// separately from Process so the rule table can be exercised directly.
func (p *Processor) Evaluate(s *Snapshot) Signal {
	sig := p.rawSignal(s)

	if sig != Hold && s.VolumeRatio < minVolumeRatio {
		p.log.Info("signal %s downgraded: volume ratio %.2f below %.2f", sig, s.VolumeRatio, minVolumeRatio)
		sig = Hold
	}

	if p.isWhipsaw(sig) {
		p.log.Info("signal %s filtered to prevent whipsaw", sig)
		sig = Hold
	}

	return sig
}

// rawSignal is the rule table, first match wins.
func (p *Processor) rawSignal(s *Snapshot) Signal {
	rsiBuy := s.RSI < p.cfg.RSIOversold
	rsiSell := s.RSI > p.cfg.RSIOverbought
	bbBuy := s.Close <= s.BBLower
	bbSell := s.Close >= s.BBUpper

	switch {
	case rsiBuy && bbBuy:
		return Buy // strong: oversold at the lower band
	case rsiBuy && s.BBPosition < 0.3:
		return Buy
	case bbBuy && s.RSI < 40:
		return Buy
	case rsiSell && bbSell:
		return Sell // strong: overbought at the upper band
	case rsiSell && s.BBPosition > 0.7:
		return Sell
	case bbSell && s.RSI > 60:
		return Sell
	default:
		return Hold
	}
}

// isWhipsaw reports whether the signal immediately reverses the most
// recent non-Hold entry in the trailing history window.
func (p *Processor) isWhipsaw(sig Signal) bool {
	if sig == Hold || len(p.history) == 0 {
		return false
	}

	start := len(p.history) - whipsawLookback
	if start < 0 {
		start = 0
	}

	last := Hold
	for _, record := range p.history[start:] {
		if record.Signal != Hold {
			last = record.Signal
		}
	}

	return last != Hold && last == sig.Opposite()
}

// Strength scores a snapshot in [0,1] by how far RSI and band position
// sit past their extremes. Neutral snapshots score 0.
func (p *Processor) Strength(s *Snapshot) float64 {
	var rsiStrength float64
	switch {
	case s.RSI <= p.cfg.RSIOversold:
		rsiStrength = (p.cfg.RSIOversold - s.RSI) / p.cfg.RSIOversold
	case s.RSI >= p.cfg.RSIOverbought:
		rsiStrength = (s.RSI - p.cfg.RSIOverbought) / (100 - p.cfg.RSIOverbought)
	}

	var bbStrength float64
	switch {
	case s.BBPosition <= 0.1:
		bbStrength = (0.1 - s.BBPosition) / 0.1
	case s.BBPosition >= 0.9:
		bbStrength = (s.BBPosition - 0.9) / 0.1
	}

	strength := (rsiStrength + bbStrength) / 2
	if strength > 1.0 {
		strength = 1.0
	}
	return strength
}

// History returns the recorded signals, oldest first.
func (p *Processor) History() []Record {
	return p.history
}
