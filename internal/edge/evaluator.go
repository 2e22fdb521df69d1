package edge

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wheels195/cfb-market-edge-sub002/internal/config"
	"github.com/wheels195/cfb-market-edge-sub002/internal/logger"
	"github.com/wheels195/cfb-market-edge-sub002/internal/metrics"
	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

// Evaluator compares projections against market snapshots and decides
// bet qualification. Only the empirically validated middle band of
// edge magnitudes qualifies: small edges do not clear the vig, and
// very large edges usually indicate a model error rather than a real
// opportunity.
type Evaluator struct {
	cfg         config.EdgeConfig
	calibration *Calibration
	logger      *logrus.Logger
	audit       *logger.AuditLogger
}

// NewEvaluator creates an evaluator bound to a validated calibration version
func NewEvaluator(cfg config.EdgeConfig, log *logrus.Logger) (*Evaluator, error) {
	cal, err := LoadCalibration(cfg.CalibrationVersion)
	if err != nil {
		return nil, fmt.Errorf("loading calibration: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &Evaluator{
		cfg:         cfg,
		calibration: cal,
		logger:      log,
		audit:       logger.NewAuditLogger(log),
	}, nil
}

// CalibrationVersion returns the version string the evaluator was built with
func (e *Evaluator) CalibrationVersion() string {
	return e.calibration.Version
}

// Evaluate computes the edge record for one (projection, market line)
// pair. Sign convention is edge = market line minus model line; the
// recommended side then depends on the market type, since spreads and
// totals invert.
func (e *Evaluator) Evaluate(proj *models.Projection, line *models.MarketLine) (*models.Edge, error) {
	start := time.Now()
	defer func() {
		metrics.EdgeEvaluationDuration.Observe(time.Since(start).Seconds())
	}()

	if proj == nil {
		return nil, fmt.Errorf("projection is required")
	}

	edge := &models.Edge{
		ID:          uuid.New(),
		EventID:     proj.EventID,
		ModelLine:   proj.Spread,
		Warnings:    append([]string(nil), proj.Warnings...),
		EvaluatedAt: time.Now().UTC(),
	}

	metrics.EdgesEvaluatedTotal.Inc()

	if line == nil {
		edge.Qualifies = false
		edge.ReasonCode = models.ReasonMissingLine
		edge.ConfidenceTier = models.TierSkip
		metrics.RecordMissingInput("market_line")
		return edge, nil
	}
	if line.EventID != proj.EventID {
		return nil, fmt.Errorf("market line event %s does not match projection event %s", line.EventID, proj.EventID)
	}

	edge.Book = line.Book
	edge.MarketType = line.MarketType
	edge.MarketLine = line.Points
	edge.RawEdge = line.Points - proj.Spread
	edge.CappedEdge = capMagnitude(edge.RawEdge, e.cfg.MaxEdge)
	edge.Side = recommendedSide(line.MarketType, edge.RawEdge)

	absEdge := math.Abs(edge.RawEdge)

	switch {
	case proj.SanityGated:
		edge.ReasonCode = models.ReasonSanityGate
		edge.ConfidenceTier = models.TierSkip
	case e.cfg.DisagreementGate > 0 && proj.Disagreement > e.cfg.DisagreementGate:
		edge.ReasonCode = models.ReasonDisagreementGate
		edge.ConfidenceTier = models.TierSkip
	case absEdge < e.cfg.MinEdge:
		edge.ReasonCode = models.ReasonEdgeTooSmall
		edge.ConfidenceTier = models.TierSkip
	case absEdge >= e.cfg.MaxEdge:
		edge.ReasonCode = models.ReasonEdgeTooLarge
		edge.ConfidenceTier = models.TierSkip
	default:
		bucket, ok := e.calibration.Lookup(absEdge)
		if !ok {
			// Qualification band and bucket coverage are kept in
			// sync; a gap here means a misconfigured band.
			return nil, fmt.Errorf("no calibration bucket covers edge %.2f under version %s", absEdge, e.calibration.Version)
		}
		edge.Qualifies = true
		edge.ReasonCode = models.ReasonQualified
		edge.ConfidenceTier = bucket.Tier
		edge.WinProbability = bucket.WinProbability
		edge.ExpectedValue = bucket.ExpectedValue
		metrics.EdgesQualifiedTotal.Inc()
	}

	e.audit.LogEdgeDecision(edge.EventID, edge.Book, string(edge.MarketType), edge.RawEdge, edge.Qualifies, string(edge.ReasonCode), edge.EvaluatedAt)
	return edge, nil
}

// recommendedSide picks the side the edge favors. A positive edge
// means the market number is higher than the model number: for a
// home-perspective spread that undervalues the home team, for a total
// it overstates scoring.
func recommendedSide(marketType models.MarketType, rawEdge float64) models.Side {
	if marketType == models.MarketTypeTotal {
		if rawEdge > 0 {
			return models.SideUnder
		}
		return models.SideOver
	}
	if rawEdge > 0 {
		return models.SideHome
	}
	return models.SideAway
}

func capMagnitude(v, limit float64) float64 {
	if limit <= 0 {
		return v
	}
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
