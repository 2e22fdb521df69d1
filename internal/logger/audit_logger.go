// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for edge decisions and
// backtest runs. Every skipped or gated record goes through here so the
// exclusion accounting can be reconstructed from logs alone.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogEdgeDecision logs the qualification outcome for one edge record.
func (al *AuditLogger) LogEdgeDecision(eventID, book, marketType string, rawEdge float64, qualifies bool, reason string, evaluatedAt time.Time) {
	al.WithFields(logrus.Fields{
		"event_id":     eventID,
		"book":         book,
		"market_type":  marketType,
		"raw_edge":     rawEdge,
		"qualifies":    qualifies,
		"reason":       reason,
		"evaluated_at": evaluatedAt.Unix(),
	}).Info("Edge decision recorded")
}

// LogGameExclusion logs a game skipped during a backtest replay.
func (al *AuditLogger) LogGameExclusion(eventID string, season int, reason string) {
	al.WithFields(logrus.Fields{
		"event_id": eventID,
		"season":   season,
		"reason":   reason,
	}).Warn("Backtest game excluded")
}

// LogSanityGate logs a projection whose adjustment exceeded the
// plausibility ceiling. Raw numbers are retained for review.
func (al *AuditLogger) LogSanityGate(eventID string, rawAdjust, ceiling float64) {
	al.WithFields(logrus.Fields{
		"event_id":   eventID,
		"raw_adjust": rawAdjust,
		"ceiling":    ceiling,
	}).Warn("Sanity gate triggered")
}

// LogPromotionDecision logs the outcome of a model promotion gate.
func (al *AuditLogger) LogPromotionDecision(candidate, baseline string, decision string, criteriaMet int, consistent bool) {
	al.WithFields(logrus.Fields{
		"candidate":    candidate,
		"baseline":     baseline,
		"decision":     decision,
		"criteria_met": criteriaMet,
		"consistent":   consistent,
	}).Info("Promotion decision recorded")
}
