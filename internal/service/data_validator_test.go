package service

import (
	"strings"
	"testing"
	"time"

	"github.com/wheels195/cfb-market-edge-sub002/internal/models"
)

func validGame() *models.Game {
	return &models.Game{
		EventID:    "2024-wk5-uga-bama",
		Season:     2024,
		Week:       5,
		HomeTeamID: "bama",
		AwayTeamID: "uga",
		HomeScore:  27,
		AwayScore:  24,
		StartTime:  time.Date(2024, 9, 28, 19, 30, 0, 0, time.UTC),
		Status:     models.GameStatusCompleted,
	}
}

func validLine() *models.MarketLine {
	return &models.MarketLine{
		EventID:    "2024-wk5-uga-bama",
		Book:       "consensus",
		MarketType: models.MarketTypeSpread,
		Points:     -2.5,
		Price:      -110,
		CapturedAt: time.Date(2024, 9, 28, 12, 0, 0, 0, time.UTC),
	}
}

func assertHasError(t *testing.T, errs []string, fragment string) {
	t.Helper()
	for _, e := range errs {
		if strings.Contains(e, fragment) {
			return
		}
	}
	t.Errorf("expected an error containing %q, got %v", fragment, errs)
}

func TestValidateGameAcceptsValid(t *testing.T) {
	v := NewDataValidator(nil)
	if errs := v.ValidateGame(validGame()); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateGameRejectsSelfPlay(t *testing.T) {
	v := NewDataValidator(nil)
	g := validGame()
	g.AwayTeamID = g.HomeTeamID
	assertHasError(t, v.ValidateGame(g), "cannot play itself")
}

func TestValidateGameRejectsBadSeasonAndWeek(t *testing.T) {
	v := NewDataValidator(nil)
	g := validGame()
	g.Season = 1850
	g.Week = 25
	errs := v.ValidateGame(g)
	assertHasError(t, errs, "season out of range")
	assertHasError(t, errs, "week out of range")
}

func TestValidateGameRejectsScorelessCompleted(t *testing.T) {
	v := NewDataValidator(nil)
	g := validGame()
	g.HomeScore = 0
	g.AwayScore = 0
	assertHasError(t, v.ValidateGame(g), "no score")

	g.Status = models.GameStatusScheduled
	if errs := v.ValidateGame(g); len(errs) != 0 {
		t.Errorf("scheduled game with no score should pass, got %v", errs)
	}
}

func TestValidateGameRequiresIdentity(t *testing.T) {
	v := NewDataValidator(nil)
	g := validGame()
	g.EventID = ""
	g.HomeTeamID = ""
	errs := v.ValidateGame(g)
	assertHasError(t, errs, "event_id is required")
	assertHasError(t, errs, "both team ids")
}

func TestValidateLineAcceptsValid(t *testing.T) {
	v := NewDataValidator(nil)
	if errs := v.ValidateLine(validLine()); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateLineRejectsUnknownMarket(t *testing.T) {
	v := NewDataValidator(nil)
	l := validLine()
	l.MarketType = "moneyline"
	assertHasError(t, v.ValidateLine(l), "unknown market type")
}

func TestValidateLineRejectsFutureCapture(t *testing.T) {
	v := NewDataValidator(nil)
	l := validLine()
	l.CapturedAt = time.Now().Add(time.Hour)
	assertHasError(t, v.ValidateLine(l), "in the future")
}

func TestValidateLineRejectsNonPositiveTotal(t *testing.T) {
	v := NewDataValidator(nil)
	l := validLine()
	l.MarketType = models.MarketTypeTotal
	l.Points = 0
	assertHasError(t, v.ValidateLine(l), "total must be positive")

	l.Points = 54.5
	if errs := v.ValidateLine(l); len(errs) != 0 {
		t.Errorf("positive total should pass, got %v", errs)
	}
}
