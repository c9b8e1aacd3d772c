package bot

import (
	"context"

	"betbot/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// handleReactionAdd feeds reaction-add deliveries into the resolution state
// machine. Every add on a slip is audited; marker emojis from an authorized
// user settle the bet.
func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	// Ignore the bot's own seeded markers
	if r.UserID == s.State.User.ID {
		return
	}
	if r.GuildID == "" {
		return
	}

	event, ok := b.reactionEvent(s, r.MessageReaction)
	if !ok {
		return
	}
	b.metrics.ReactionEvents.WithLabelValues("add").Inc()

	if err := b.resolutionService.HandleReactionAdd(context.Background(), event); err != nil {
		log.WithFields(log.Fields{
			"guildID":   event.GuildID,
			"messageID": event.MessageID,
			"userID":    event.UserID,
			"emoji":     event.Emoji,
		}).Errorf("Failed to handle reaction add: %v", err)
	}
}

// handleReactionRemove drops the matching audit row. Removing a marker never
// unresolves a settled bet.
func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.UserID == s.State.User.ID {
		return
	}
	if r.GuildID == "" {
		return
	}

	event, ok := b.reactionEvent(s, r.MessageReaction)
	if !ok {
		return
	}
	b.metrics.ReactionEvents.WithLabelValues("remove").Inc()

	if err := b.resolutionService.HandleReactionRemove(context.Background(), event); err != nil {
		log.WithFields(log.Fields{
			"guildID":   event.GuildID,
			"messageID": event.MessageID,
			"userID":    event.UserID,
			"emoji":     event.Emoji,
		}).Errorf("Failed to handle reaction remove: %v", err)
	}
}

// reactionEvent converts a raw gateway reaction into the service-level event,
// resolving whether the reacting user holds moderator permissions
func (b *Bot) reactionEvent(s *discordgo.Session, r *discordgo.MessageReaction) (service.ReactionEvent, bool) {
	guildID, err := parseSnowflake(r.GuildID)
	if err != nil {
		return service.ReactionEvent{}, false
	}
	channelID, err := parseSnowflake(r.ChannelID)
	if err != nil {
		return service.ReactionEvent{}, false
	}
	messageID, err := parseSnowflake(r.MessageID)
	if err != nil {
		return service.ReactionEvent{}, false
	}
	userID, err := parseSnowflake(r.UserID)
	if err != nil {
		return service.ReactionEvent{}, false
	}

	privileged := false
	perms, err := s.UserChannelPermissions(r.UserID, r.ChannelID)
	if err != nil {
		log.Printf("Error resolving permissions for user %s: %v", r.UserID, err)
	} else {
		privileged = perms&(discordgo.PermissionManageMessages|discordgo.PermissionAdministrator) != 0
	}

	return service.ReactionEvent{
		GuildID:    guildID,
		ChannelID:  channelID,
		MessageID:  messageID,
		UserID:     userID,
		Emoji:      r.Emoji.Name,
		Privileged: privileged,
	}, true
}
