package models

import "time"

// BotConfig holds per-guild settings for the chat bot.
type BotConfig struct {
	ID             string    `bson:"id" json:"id"`
	GuildID        string    `bson:"guild_id" json:"guild_id"`
	AIChannelID    string    `bson:"ai_channel_id" json:"ai_channel_id"`
	ShopChannelID  string    `bson:"shop_channel_id" json:"shop_channel_id"`
	WelcomeMessage string    `bson:"welcome_message" json:"welcome_message"`
	AIEnabled      bool      `bson:"ai_enabled" json:"ai_enabled"`
	ShopEnabled    bool      `bson:"shop_enabled" json:"shop_enabled"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// BotConfigUpdateRequest carries partial config updates; nil fields are
// left untouched on upsert.
type BotConfigUpdateRequest struct {
	AIChannelID    *string `json:"ai_channel_id"`
	ShopChannelID  *string `json:"shop_channel_id"`
	WelcomeMessage *string `json:"welcome_message"`
	AIEnabled      *bool   `json:"ai_enabled"`
	ShopEnabled    *bool   `json:"shop_enabled"`
}
