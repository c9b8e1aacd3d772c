package bot

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"betbot/events"
	"betbot/metrics"
	"betbot/service"

	"github.com/bwmarrin/discordgo"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string

	// Resolution marker emojis seeded on each confirmed slip
	EmojiWon  string
	EmojiLost string
	EmojiPush string

	// Optional channel for milestone announcements
	AnnounceChannelID string
}

type Bot struct {
	config            Config
	session           *discordgo.Session
	betService        service.BetService
	resolutionService service.ResolutionService
	statsService      service.StatsService
	cleanupService    service.CleanupService
	eventBus          *events.Bus
	metrics           *metrics.Metrics
}

func New(config Config, betService service.BetService, resolutionService service.ResolutionService, statsService service.StatsService, cleanupService service.CleanupService, eventBus *events.Bus, m *metrics.Metrics) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsGuildMembers

	bot := &Bot{
		config:            config,
		session:           dg,
		betService:        betService,
		resolutionService: resolutionService,
		statsService:      statsService,
		cleanupService:    cleanupService,
		eventBus:          eventBus,
		metrics:           m,
	}

	// Register slash command handlers
	dg.AddHandler(bot.handleCommands)

	// Register reaction handlers driving the resolution state machine
	dg.AddHandler(bot.handleReactionAdd)
	dg.AddHandler(bot.handleReactionRemove)

	// Open websocket connection
	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	// Register slash commands with Discord
	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	// Start periodic cleanup of stale parlay builder sessions
	go bot.startSessionCleanup()

	// Announce milestone achievements as they are earned
	eventBus.Subscribe(events.EventTypeAchievementEarned, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.AchievementEarnedEvent); ok {
			bot.announceMilestone(e)
		}
	})

	eventBus.Subscribe(events.EventTypeBetResolved, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.BetResolvedEvent); ok {
			m.BetsResolved.WithLabelValues(string(e.Status)).Inc()
		}
	})

	// Refresh and announce the guild total after every settlement
	eventBus.Subscribe(events.EventTypeUnitTotalsChanged, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.UnitTotalsChangedEvent); ok {
			total, err := bot.statsService.GuildNetUnits(ctx, e.GuildID)
			if err != nil {
				log.Errorf("Failed to refresh guild net units for %d: %v", e.GuildID, err)
				return
			}
			log.WithFields(log.Fields{
				"guildID":  e.GuildID,
				"netUnits": total,
			}).Info("Guild unit totals changed")
			bot.announceNetUnits(e.GuildID, total)
		}
	})

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

// announceMilestone posts a congratulations message when a capper crosses a
// win milestone, if an announcement channel is configured
func (b *Bot) announceMilestone(e events.AchievementEarnedEvent) {
	if b.config.AnnounceChannelID == "" {
		return
	}
	if _, err := b.session.ChannelMessageSend(b.config.AnnounceChannelID, milestoneMessage(e.UserID, e.Milestone)); err != nil {
		log.Errorf("Failed to announce milestone for user %d: %v", e.UserID, err)
	}
}

// announceNetUnits posts the guild's running total to the announcement
// channel after a settlement changes the ledger
func (b *Bot) announceNetUnits(guildID int64, total float64) {
	if b.config.AnnounceChannelID == "" {
		return
	}
	if _, err := b.session.ChannelMessageSend(b.config.AnnounceChannelID, netUnitsMessage(total)); err != nil {
		log.Errorf("Failed to announce unit totals for guild %d: %v", guildID, err)
	}
}

func milestoneMessage(userID int64, milestone int) string {
	return fmt.Sprintf("🏅 <@%d> just hit **%d career wins**!", userID, milestone)
}

func netUnitsMessage(total float64) string {
	return fmt.Sprintf("📊 The guild is now **%s units** on the books.", FormatUnits(total))
}

// startSessionCleanup runs periodic cleanup of abandoned parlay sessions
func (b *Bot) startSessionCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cleanupParlaySessions()
	}
}

func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "bet",
			Description: "Place a straight bet",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "league",
					Description: "League the game belongs to (e.g. NBA, NFL)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionNumber,
					Name:        "units",
					Description: "Units to risk",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "odds",
					Description: "American odds (e.g. -110, +150)",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "team",
					Description: "Team or side you are backing",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "opponent",
					Description: "Opposing team",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "line",
					Description: "Line or market (e.g. -3.5, ML, o218.5)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "game",
					Description: "Game reference from the schedule (leave empty for manual entry)",
					Required:    false,
				},
			},
		},
		{
			Name:        "parlay",
			Description: "Build and place a multi-leg parlay",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start a new parlay slip",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "league",
							Description: "League label for the parlay",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "units",
							Description: "Units to risk",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "leg",
					Description: "Add a leg to your open parlay slip",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "odds",
							Description: "American odds for this leg",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "team",
							Description: "Team or side for this leg",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "opponent",
							Description: "Opposing team",
							Required:    false,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "line",
							Description: "Line or market for this leg",
							Required:    false,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "place",
					Description: "Place the parlay you have been building",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "cancel",
					Description: "Discard your open parlay slip",
				},
			},
		},
		{
			Name:        "mybets",
			Description: "List your open bets",
		},
		{
			Name:        "leaderboard",
			Description: "Show the monthly unit leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "month",
					Description: "Month to show (1-12, defaults to current)",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "year",
					Description: "Year to show (defaults to current)",
					Required:    false,
				},
			},
		},
		{
			Name:        "record",
			Description: "Show a capper's win/loss record",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Capper to look up (defaults to you)",
					Required:    false,
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "bet":
		b.handleBetCommand(s, i)
	case "parlay":
		b.handleParlayCommand(s, i)
	case "mybets":
		b.handleMyBets(s, i)
	case "leaderboard":
		b.handleLeaderboard(s, i)
	case "record":
		b.handleRecord(s, i)
	}
}

func (b *Bot) respondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: message,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("Error sending error response: %v", err)
	}
}
