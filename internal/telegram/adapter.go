// Package telegram bridges Telegram chats to the conversation engine.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/cartable/internal/chatbot"
	"github.com/user/cartable/internal/gateway"
	"github.com/user/cartable/internal/types"
)

const maxTelegramMessage = 4096

// Adapter bridges Telegram to the gateway and the bot's command surface.
type Adapter struct {
	bot     *tgbotapi.BotAPI
	gateway *gateway.Gateway
	engine  *chatbot.Bot
}

// New creates a Telegram adapter.
func New(token string, gw *gateway.Gateway, engine *chatbot.Bot) (*Adapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Adapter{
		bot:     bot,
		gateway: gw,
		engine:  engine,
	}, nil
}

// Start begins long-polling for Telegram updates.
func (a *Adapter) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := a.bot.GetUpdatesChan(u)

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			a.handleMessage(ctx, update.Message)
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return
		}
	}
}

func (a *Adapter) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sender := senderKey(chatID)

	if msg.IsCommand() {
		a.handleCommand(sender, msg)
		return
	}

	// Voice notes need an external transcription step that is not wired
	// here; ask the parent to type instead.
	if msg.Voice != nil || msg.Audio != nil {
		a.sendReply(chatID, types.TextReply(
			"Désolé, je n'ai pas pu traiter votre message vocal. Pourriez-vous l'écrire ?"))
		return
	}
	if msg.Text == "" {
		return
	}

	inbound := &types.InboundMessage{Sender: sender, Text: msg.Text}
	err := a.gateway.HandleInbound(ctx, inbound, gateway.WithOnComplete(func(reply types.Reply) {
		a.sendReply(chatID, reply)
	}))
	if err != nil {
		slog.Error("handle inbound failed", "sender", string(sender), "error", err)
		a.sendReply(chatID, types.TextReply(
			"Je suis désolé, j'ai rencontré une erreur. Veuillez réessayer."))
	}
}

func (a *Adapter) handleCommand(sender types.SenderKey, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		a.sendReply(chatID, types.TextReply(
			"Bonjour ! Je suis l'assistant de l'école. Posez-moi une question sur les notes, "+
				"les absences, les devoirs ou l'école de votre enfant."))

	case "voice":
		ack := a.engine.RequestVoice(sender)
		a.sendReply(chatID, types.TextReply(ack))

	case "reset":
		a.engine.ClearSession(sender)
		a.sendReply(chatID, types.TextReply("Votre session a été réinitialisée."))

	case "help":
		a.sendReply(chatID, types.TextReply(
			"Exemples :\n- notes de Marie\n- absences de Paul hier\n- devoirs de Marie en maths\n"+
				"- /voice pour une réponse vocale\n- /reset pour recommencer"))

	default:
		a.sendReply(chatID, types.TextReply(
			"Commande inconnue. Disponibles : /start, /voice, /reset, /help"))
	}
}

// SendTo delivers a reply outside a conversation turn (used by the
// reminder scheduler). The sender key's address must be a chat ID.
func (a *Adapter) SendTo(sender types.SenderKey, reply types.Reply) error {
	chatID, err := strconv.ParseInt(sender.Address(), 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id from %q: %w", sender, err)
	}
	a.sendReply(chatID, reply)
	return nil
}

func (a *Adapter) sendReply(chatID int64, reply types.Reply) {
	if reply.HasAudio() {
		voice := tgbotapi.NewVoice(chatID, tgbotapi.FileBytes{Name: "reply.mp3", Bytes: reply.Audio})
		if _, err := a.bot.Send(voice); err != nil {
			slog.Error("send voice note failed", "error", err)
		}
	}

	for _, part := range splitMessage(reply.Text) {
		msg := tgbotapi.NewMessage(chatID, part)
		if _, err := a.bot.Send(msg); err != nil {
			slog.Error("send message failed", "error", err)
		}
	}
}

func splitMessage(text string) []string {
	if len(text) <= maxTelegramMessage {
		return []string{text}
	}
	var parts []string
	for len(text) > 0 {
		end := maxTelegramMessage
		if end > len(text) {
			end = len(text)
		}
		parts = append(parts, text[:end])
		text = text[end:]
	}
	return parts
}

func senderKey(chatID int64) types.SenderKey {
	return types.NewSenderKey("telegram", strconv.FormatInt(chatID, 10))
}
