package bot

import (
	"context"
	"errors"

	"betbot/models"
	"betbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleBetCommand places a straight bet, posts its slip and seeds the
// resolution marker reactions
func (b *Bot) handleBetCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
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
	channelID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		log.Printf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	input := service.StraightBetInput{
		GuildID:     guildID,
		UserID:      userID,
		ChannelID:   channelID,
		ExternalRef: models.ManualGameRef,
	}
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "league":
			input.League = opt.StringValue()
		case "units":
			input.Units = opt.FloatValue()
		case "odds":
			input.Odds = float64(opt.IntValue())
		case "team":
			input.Team = opt.StringValue()
		case "opponent":
			input.Opponent = opt.StringValue()
		case "line":
			input.Line = opt.StringValue()
		case "game":
			input.ExternalRef = opt.StringValue()
		}
	}

	// Defer: materializing the game may hit the schedule source
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Printf("Error deferring bet response: %v", err)
		return
	}

	bet, err := b.betService.CreateStraightBet(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameNotFound):
			b.followUpWithError(s, i, "That game reference is not on the schedule. Leave it empty for a manual bet.")
		case errors.Is(err, service.ErrInvalidStake):
			b.followUpWithError(s, i, "Units must be greater than zero.")
		case errors.Is(err, service.ErrInvalidOdds):
			b.followUpWithError(s, i, "Odds cannot be zero.")
		default:
			log.Printf("Error creating straight bet for user %d: %v", userID, err)
			b.followUpWithError(s, i, "Unable to place bet. Please try again.")
		}
		return
	}
	b.metrics.BetsCreated.WithLabelValues(string(bet.BetType)).Inc()

	b.postSlip(ctx, s, i, bet)
}

// postSlip publishes the slip embed as the deferred follow-up, confirms the
// bet with the resulting message identity and seeds the marker reactions
func (b *Bot) postSlip(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, bet *models.Bet) {
	displayName := GetDisplayName(s, i.GuildID, i.Member.User.ID)
	embed := buildSlipEmbed(bet, displayName)

	msg, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
	if err != nil {
		log.Printf("Error posting slip for bet %d: %v", bet.BetSerial, err)
		return
	}

	messageID, err := parseSnowflake(msg.ID)
	if err != nil {
		log.Printf("Error parsing slip message ID %s: %v", msg.ID, err)
		return
	}
	channelID, err := parseSnowflake(msg.ChannelID)
	if err != nil {
		log.Printf("Error parsing slip channel ID %s: %v", msg.ChannelID, err)
		return
	}

	if err := b.betService.ConfirmBet(ctx, bet.BetSerial, messageID, channelID); err != nil {
		log.Printf("Error confirming bet %d: %v", bet.BetSerial, err)
		b.followUpWithError(s, i, "The slip was posted but could not be confirmed. It will be swept shortly; please place it again.")
		return
	}

	for _, emoji := range []string{b.config.EmojiWon, b.config.EmojiLost, b.config.EmojiPush} {
		if err := s.MessageReactionAdd(msg.ChannelID, msg.ID, emoji); err != nil {
			log.Printf("Error seeding %s reaction on bet %d: %v", emoji, bet.BetSerial, err)
		}
	}
}

// followUpWithError sends an error message as a follow-up to a deferred
// interaction
func (b *Bot) followUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: "❌ " + message,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Printf("Error sending follow-up error message: %v", err)
	}
}
