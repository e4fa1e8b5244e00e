package service

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func (t *Telegram) handleUpdate(ctx context.Context, update tgbot.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return
	}
	// чужие чаты игнорируем
	if msg.Chat.ID != t.chatID {
		return
	}

	var reply Message
	switch msg.Command() {
	case "start":
		reply = NewMessage("👋 Signal bot", []string{
			"I scan the market and send entry signals here.",
			"/status: last scan",
		})
	case "status":
		reply = t.formatStatus()
	default:
		return
	}

	if err := t.Notify(ctx, reply); err != nil {
		t.log.Error("command reply failed", zap.String("command", msg.Command()), zap.Error(err))
	}
}

func (t *Telegram) formatStatus() Message {
	if t.status == nil {
		return NewMessage("📊 Status", []string{"unknown"})
	}
	now := t.now()
	ready := "starting"
	if t.status.Ready() {
		ready = "running"
	}
	return NewMessage("📊 Status", []string{
		"State: " + ready,
		"Uptime: " + t.status.Uptime().Truncate(time.Second).String(),
		"Last scan: " + ago(t.status.LastScan(), now),
		fmt.Sprintf("Signals in last scan: %d", t.status.LastScanSignals()),
	})
}
