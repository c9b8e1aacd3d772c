package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleMyBets lists the caller's open bets
func (b *Bot) handleMyBets(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "This command only works inside a server.")
		return
	}
	userID, err := parseSnowflake(i.Member.User.ID)
	if err != nil {
		log.Printf("Error parsing Discord ID %s: %v", i.Member.User.ID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	bets, err := b.betService.ListPendingBets(ctx, guildID, userID, 25)
	if err != nil {
		log.Printf("Error listing pending bets for user %d: %v", userID, err)
		b.respondWithError(s, i, "Unable to retrieve your bets. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	embed := buildPendingBetsEmbed(bets, displayName)

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error responding to mybets command: %v", err)
	}
}

// handleLeaderboard displays the monthly net-unit standings
func (b *Bot) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "This command only works inside a server.")
		return
	}

	now := time.Now()
	year, month := now.Year(), int(now.Month())
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "month":
			if v := int(opt.IntValue()); v >= 1 && v <= 12 {
				month = v
			}
		case "year":
			if v := int(opt.IntValue()); v > 0 {
				year = v
			}
		}
	}

	entries, err := b.statsService.MonthlyLeaderboard(ctx, guildID, year, month, 10)
	if err != nil {
		log.Printf("Error getting leaderboard for guild %d: %v", guildID, err)
		b.respondWithError(s, i, "Unable to retrieve leaderboard. Please try again.")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🏆 Unit Leaderboard — %d/%02d", year, month),
		Color: 0x00ff00,
	}

	if len(entries) == 0 {
		embed.Description = "No settled bets this month."
	} else {
		var table strings.Builder
		table.WriteString("```\n")
		table.WriteString(fmt.Sprintf("%-4s %-20s %-10s %s\n", "Rank", "Capper", "Net", "Bets"))
		table.WriteString(strings.Repeat("-", 44) + "\n")

		for _, entry := range entries {
			rankStr := fmt.Sprintf("#%d", entry.Rank)
			switch entry.Rank {
			case 1:
				rankStr = "🥇"
			case 2:
				rankStr = "🥈"
			case 3:
				rankStr = "🥉"
			}

			displayName := GetDisplayName(s, i.GuildID, fmt.Sprintf("%d", entry.UserID))
			if len(displayName) > 18 {
				displayName = displayName[:15] + "..."
			}

			table.WriteString(fmt.Sprintf("%-4s %-20s %-10s %d\n",
				rankStr, displayName, fmt.Sprintf("%+.2f", entry.NetUnits), entry.BetCount))
		}
		table.WriteString("```")
		embed.Description = table.String()
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
		},
	})
	if err != nil {
		log.Printf("Error responding to leaderboard command: %v", err)
	}
}

// handleRecord displays a capper's win/loss/push record
func (b *Bot) handleRecord(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	guildID, err := parseSnowflake(i.GuildID)
	if err != nil {
		b.respondWithError(s, i, "This command only works inside a server.")
		return
	}

	targetUserID := i.Member.User.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			if u := opt.UserValue(s); u != nil {
				targetUserID = u.ID
			}
		}
	}
	userID, err := parseSnowflake(targetUserID)
	if err != nil {
		log.Printf("Error parsing Discord ID %s: %v", targetUserID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	record, err := b.statsService.CapperRecord(ctx, guildID, userID)
	if err != nil {
		log.Printf("Error getting capper record for user %d: %v", userID, err)
		b.respondWithError(s, i, "Unable to retrieve record. Please try again.")
		return
	}

	displayName := GetDisplayName(s, i.GuildID, targetUserID)

	var message string
	if record == nil || record.Settled() == 0 {
		message = fmt.Sprintf("**%s** has no settled bets yet.", displayName)
	} else {
		message = fmt.Sprintf("**%s**: %d-%d-%d (%.1f%% win rate)",
			displayName, record.Wins, record.Losses, record.Pushes, record.WinRate())
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
		},
	})
	if err != nil {
		log.Printf("Error responding to record command: %v", err)
	}
}
