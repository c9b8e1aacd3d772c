package bot

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/discordgo"
)

// parseSnowflake converts a Discord string ID to int64
func parseSnowflake(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatOdds renders American odds with their sign
func FormatOdds(odds float64) string {
	if odds > 0 {
		return fmt.Sprintf("+%d", int64(odds))
	}
	return fmt.Sprintf("%d", int64(odds))
}

// FormatUnits renders a unit amount without trailing zeros
func FormatUnits(units float64) string {
	return strconv.FormatFloat(units, 'f', -1, 64)
}

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays
// in the user's local timezone. Format types: "t" = short time, "f" = short
// date/time, "R" = relative time.
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// GetDisplayName resolves a user's guild nickname, falling back to their
// username when the member lookup fails
func GetDisplayName(s *discordgo.Session, guildID, userID string) string {
	member, err := s.GuildMember(guildID, userID)
	if err == nil && member != nil {
		if member.Nick != "" {
			return member.Nick
		}
		if member.User != nil {
			return member.User.Username
		}
	}
	user, err := s.User(userID)
	if err == nil && user != nil {
		return user.Username
	}
	return userID
}
