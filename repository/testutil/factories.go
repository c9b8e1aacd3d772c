package testutil

import (
	"betbot/models"
)

// CreateTestBet creates a pending straight bet with default values
func CreateTestBet(guildID, userID int64) *models.Bet {
	return &models.Bet{
		GuildID:  guildID,
		UserID:   userID,
		League:   "NBA",
		BetType:  models.BetTypeStraight,
		Units:    2,
		Odds:     -110,
		Team:     "Celtics",
		Opponent: "Lakers",
		Line:     "-3.5",
		Legs:     1,
		Status:   models.BetStatusPending,
		Details: models.BetDetails{
			Legs: []models.BetLeg{{
				Odds: -110, Team: "Celtics", Opponent: "Lakers", Line: "-3.5", League: "NBA",
			}},
		},
	}
}

// CreateTestParlay creates a pending two-leg parlay with default values
func CreateTestParlay(guildID, userID int64) *models.Bet {
	legs := []models.BetLeg{
		{Odds: 150, Team: "Celtics"},
		{Odds: -200, Team: "Bucks"},
	}
	return &models.Bet{
		GuildID: guildID,
		UserID:  userID,
		League:  "NBA",
		BetType: models.BetTypeParlay,
		Units:   1,
		Odds:    275,
		Legs:    len(legs),
		Status:  models.BetStatusPending,
		Details: models.BetDetails{
			Legs:         legs,
			CombinedOdds: 275,
		},
	}
}

// CreateTestGame creates a game row for an external reference
func CreateTestGame(externalRef string) *models.Game {
	return &models.Game{
		ExternalRef: externalRef,
		League:      "NBA",
		HomeTeam:    "Celtics",
		AwayTeam:    "Lakers",
	}
}
