package common

import (
	"strconv"

	"github.com/bwmarrin/discordgo"
)

// ParseID converts a Discord snowflake string to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatID converts an int64 snowflake back to its string form
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Mention returns a Discord mention string for a user
func Mention(userID int64) string {
	return "<@" + FormatID(userID) + ">"
}

// InteractionUser returns the user behind an interaction, guild or DM
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// MemberDisplayName prefers the server nickname, then the global name, then the username
func MemberDisplayName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil && member != nil {
		user = member.User
	}
	if user == nil {
		return "Unknown"
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}
