package notify

import (
	"fmt"
	"log"
	"strings"
	"time"

	tele "gopkg.in/telebot.v3"

	"anime-watchlist/internal/models"
	"anime-watchlist/internal/service"
)

// TelegramBot serves the watchlist commands over Telegram
type TelegramBot struct {
	bot      *tele.Bot
	commands *Commands
	activity *service.ActivityLogger
}

// NewTelegramBot creates the bot and registers every command handler
func NewTelegramBot(token string, commands *Commands, activity *service.ActivityLogger) (*TelegramBot, error) {
	bot, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			log.Printf("Telegram handler error: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	b := &TelegramBot{
		bot:      bot,
		commands: commands,
		activity: activity,
	}
	b.registerHandlers()

	if err := bot.SetCommands(botCommands()); err != nil {
		log.Printf("Warning: failed to register bot commands: %v", err)
	}
	activity.Record(actorOf(bot.Me), "Bot Started", "Commands registered", nil)

	return b, nil
}

func (b *TelegramBot) registerHandlers() {
	b.bot.Handle("/start", b.noPayload(func(models.Actor) string { return b.commands.Help() }))
	b.bot.Handle("/help", b.noPayload(func(models.Actor) string { return b.commands.Help() }))
	b.bot.Handle("/list", b.noPayload(b.commands.List))
	b.bot.Handle("/favorites", b.noPayload(b.commands.Favorites))
	b.bot.Handle("/random", b.noPayload(b.commands.Random))

	b.bot.Handle("/add", b.withPayload(b.commands.Add))
	b.bot.Handle("/progress", b.withPayload(b.commands.Progress))
	b.bot.Handle("/status", b.withPayload(b.commands.Status))
	b.bot.Handle("/fav", b.withPayload(b.commands.Favorite))
	b.bot.Handle("/delete", b.withPayload(b.commands.Delete))
	b.bot.Handle("/details", b.withPayload(b.commands.Details))
	b.bot.Handle("/search", b.withPayload(b.commands.Search))
	b.bot.Handle("/logs", b.withPayload(b.commands.Logs))
}

func (b *TelegramBot) noPayload(fn func(models.Actor) string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send(fn(actorOf(c.Sender())), tele.ModeHTML)
	}
}

func (b *TelegramBot) withPayload(fn func(models.Actor, string) string) tele.HandlerFunc {
	return func(c tele.Context) error {
		payload := ""
		if msg := c.Message(); msg != nil {
			payload = msg.Payload
		}
		return c.Send(fn(actorOf(c.Sender()), payload), tele.ModeHTML)
	}
}

// Start starts long polling, blocking until Stop is called
func (b *TelegramBot) Start() {
	b.bot.Start()
}

// Stop stops the bot
func (b *TelegramBot) Stop() {
	b.bot.Stop()
}

func botCommands() []tele.Command {
	cmds := make([]tele.Command, 0, len(commandHelp))
	for _, doc := range commandHelp {
		cmds = append(cmds, tele.Command{Text: doc.name, Description: doc.description})
	}
	return cmds
}

// actorOf maps a Telegram user onto an Actor
func actorOf(u *tele.User) models.Actor {
	if u == nil {
		return models.Actor{}
	}
	name := u.Username
	if name == "" {
		name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return models.Actor{ID: u.ID, Name: name}
}
