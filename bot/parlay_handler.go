package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"betbot/models"
	"betbot/service"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// parlaySession accumulates legs between /parlay start and /parlay place.
// Sessions live in memory only; a restart simply means starting the slip over.
type parlaySession struct {
	ID        uuid.UUID
	GuildID   int64
	UserID    int64
	ChannelID int64
	League    string
	Units     float64
	Legs      []models.BetLeg
	CreatedAt time.Time
}

var (
	parlaySessionsMu sync.Mutex
	parlaySessions   = make(map[string]*parlaySession)
)

const parlaySessionTTL = 30 * time.Minute

func parlaySessionKey(guildID, userID int64) string {
	return fmt.Sprintf("%d:%d", guildID, userID)
}

// cleanupParlaySessions drops sessions that were started but never placed
func cleanupParlaySessions() {
	parlaySessionsMu.Lock()
	defer parlaySessionsMu.Unlock()

	cutoff := time.Now().Add(-parlaySessionTTL)
	for key, session := range parlaySessions {
		if session.CreatedAt.Before(cutoff) {
			delete(parlaySessions, key)
		}
	}
}

// handleParlayCommand routes the /parlay subcommands
func (b *Bot) handleParlayCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		b.respondWithError(s, i, "Please specify a subcommand: start, leg, place or cancel")
		return
	}

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

	switch options[0].Name {
	case "start":
		b.handleParlayStart(s, i, guildID, userID, options[0].Options)
	case "leg":
		b.handleParlayLeg(s, i, guildID, userID, options[0].Options)
	case "place":
		b.handleParlayPlace(s, i, guildID, userID)
	case "cancel":
		b.handleParlayCancel(s, i, guildID, userID)
	default:
		b.respondWithError(s, i, "Unknown subcommand")
	}
}

func (b *Bot) handleParlayStart(s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64, options []*discordgo.ApplicationCommandInteractionDataOption) {
	channelID, err := parseSnowflake(i.ChannelID)
	if err != nil {
		log.Printf("Error parsing channel ID %s: %v", i.ChannelID, err)
		b.respondWithError(s, i, "Unable to process request. Please try again.")
		return
	}

	session := &parlaySession{
		ID:        uuid.New(),
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
		CreatedAt: time.Now(),
	}
	for _, opt := range options {
		switch opt.Name {
		case "league":
			session.League = opt.StringValue()
		case "units":
			session.Units = opt.FloatValue()
		}
	}
	if session.Units <= 0 {
		b.respondWithError(s, i, "Units must be greater than zero.")
		return
	}

	parlaySessionsMu.Lock()
	parlaySessions[parlaySessionKey(guildID, userID)] = session
	parlaySessionsMu.Unlock()

	b.respondEphemeral(s, i, fmt.Sprintf("Parlay slip `%s` opened for **%s units**. Add legs with `/parlay leg`, then `/parlay place`.",
		session.ID.String()[:8], FormatUnits(session.Units)))
}

func (b *Bot) handleParlayLeg(s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64, options []*discordgo.ApplicationCommandInteractionDataOption) {
	leg := models.BetLeg{}
	for _, opt := range options {
		switch opt.Name {
		case "odds":
			leg.Odds = float64(opt.IntValue())
		case "team":
			leg.Team = opt.StringValue()
		case "opponent":
			leg.Opponent = opt.StringValue()
		case "line":
			leg.Line = opt.StringValue()
		}
	}
	if leg.Odds == 0 {
		b.respondWithError(s, i, "Leg odds cannot be zero.")
		return
	}

	parlaySessionsMu.Lock()
	session, ok := parlaySessions[parlaySessionKey(guildID, userID)]
	legCount := 0
	if ok {
		session.Legs = append(session.Legs, leg)
		legCount = len(session.Legs)
	}
	parlaySessionsMu.Unlock()

	if !ok {
		b.respondWithError(s, i, "No open parlay slip. Start one with `/parlay start`.")
		return
	}

	b.respondEphemeral(s, i, fmt.Sprintf("Leg %d added: **%s** %s. Place with `/parlay place`.",
		legCount, leg.Team, FormatOdds(leg.Odds)))
}

// snapshotParlaySession copies a session's fields while holding the lock so
// a concurrent leg append cannot race the placement read.
func snapshotParlaySession(guildID, userID int64) (service.ParlayBetInput, bool) {
	parlaySessionsMu.Lock()
	defer parlaySessionsMu.Unlock()

	session, ok := parlaySessions[parlaySessionKey(guildID, userID)]
	if !ok {
		return service.ParlayBetInput{}, false
	}
	return service.ParlayBetInput{
		GuildID:   session.GuildID,
		UserID:    session.UserID,
		ChannelID: session.ChannelID,
		League:    session.League,
		Units:     session.Units,
		Legs:      append([]models.BetLeg(nil), session.Legs...),
	}, true
}

func (b *Bot) handleParlayPlace(s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64) {
	ctx := context.Background()

	input, ok := snapshotParlaySession(guildID, userID)
	if !ok {
		b.respondWithError(s, i, "No open parlay slip. Start one with `/parlay start`.")
		return
	}
	if len(input.Legs) == 0 {
		b.respondWithError(s, i, "Your slip has no legs yet. Add them with `/parlay leg`.")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
	if err != nil {
		log.Printf("Error deferring parlay response: %v", err)
		return
	}

	bet, err := b.betService.CreateParlayBet(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidOdds):
			b.followUpWithError(s, i, "One of your legs has invalid odds.")
		case errors.Is(err, service.ErrNoLegs):
			b.followUpWithError(s, i, "Your slip has no legs yet. Add them with `/parlay leg`.")
		default:
			log.Printf("Error creating parlay for user %d: %v", userID, err)
			b.followUpWithError(s, i, "Unable to place parlay. Please try again.")
		}
		return
	}
	b.metrics.BetsCreated.WithLabelValues(string(bet.BetType)).Inc()

	parlaySessionsMu.Lock()
	delete(parlaySessions, parlaySessionKey(guildID, userID))
	parlaySessionsMu.Unlock()

	b.postSlip(ctx, s, i, bet)
}

func (b *Bot) handleParlayCancel(s *discordgo.Session, i *discordgo.InteractionCreate, guildID, userID int64) {
	parlaySessionsMu.Lock()
	_, ok := parlaySessions[parlaySessionKey(guildID, userID)]
	delete(parlaySessions, parlaySessionKey(guildID, userID))
	parlaySessionsMu.Unlock()

	if !ok {
		b.respondWithError(s, i, "No open parlay slip to cancel.")
		return
	}
	b.respondEphemeral(s, i, "Parlay slip discarded.")
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending ephemeral response: %v", err)
	}
}
