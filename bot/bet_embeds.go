package bot

import (
	"fmt"
	"strings"

	"betbot/models"

	"github.com/bwmarrin/discordgo"
)

const (
	colorPending = 0x3498db
	colorWon     = 0x2ecc71
	colorLost    = 0xe74c3c
	colorPush    = 0xf1c40f
)

func statusColor(status models.BetStatus) int {
	switch status {
	case models.BetStatusWon:
		return colorWon
	case models.BetStatusLost:
		return colorLost
	case models.BetStatusPush:
		return colorPush
	default:
		return colorPending
	}
}

// buildSlipEmbed renders a bet as its slip message. The slip is the message
// users react to in order to settle the bet.
func buildSlipEmbed(bet *models.Bet, displayName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color: statusColor(bet.Status),
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Bet #%d", bet.BetSerial),
		},
	}

	if bet.BetType == models.BetTypeParlay {
		embed.Title = fmt.Sprintf("🎟️ %d-Leg Parlay — %s", bet.Legs, FormatOdds(bet.Odds))
		var legs strings.Builder
		for n, leg := range bet.Details.Legs {
			legs.WriteString(fmt.Sprintf("**%d.** %s", n+1, leg.Team))
			if leg.Opponent != "" {
				legs.WriteString(" vs " + leg.Opponent)
			}
			if leg.Line != "" {
				legs.WriteString(" " + leg.Line)
			}
			legs.WriteString(fmt.Sprintf(" (%s)\n", FormatOdds(leg.Odds)))
		}
		embed.Description = legs.String()
	} else {
		matchup := bet.Team
		if bet.Opponent != "" {
			matchup += " vs " + bet.Opponent
		}
		embed.Title = fmt.Sprintf("🎫 %s — %s", matchup, FormatOdds(bet.Odds))
		if bet.Line != "" {
			embed.Description = fmt.Sprintf("Line: **%s**", bet.Line)
		}
	}

	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Capper", Value: displayName, Inline: true},
		{Name: "League", Value: bet.League, Inline: true},
		{Name: "Units", Value: FormatUnits(bet.Units), Inline: true},
	}

	if bet.ScheduledStart != nil {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Start",
			Value:  FormatDiscordTimestamp(*bet.ScheduledStart, "f"),
			Inline: true,
		})
	}

	return embed
}

// buildPendingBetsEmbed renders a user's open bets for /mybets
func buildPendingBetsEmbed(bets []*models.Bet, displayName string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📋 Open Bets — %s", displayName),
		Color: colorPending,
	}

	if len(bets) == 0 {
		embed.Description = "No open bets."
		return embed
	}

	var body strings.Builder
	for _, bet := range bets {
		label := bet.Team
		if bet.BetType == models.BetTypeParlay {
			label = fmt.Sprintf("%d-leg parlay", bet.Legs)
		}
		body.WriteString(fmt.Sprintf("`#%d` **%s** %s · %su @ %s · placed %s\n",
			bet.BetSerial, bet.League, label, FormatUnits(bet.Units),
			FormatOdds(bet.Odds), FormatDiscordTimestamp(bet.CreatedAt, "R")))
	}
	embed.Description = body.String()

	return embed
}
