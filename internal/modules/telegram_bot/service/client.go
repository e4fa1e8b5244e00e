package service

import (
	"context"
	"net/http"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Notifier: куда уходят сигналы.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// StatusSource: данные для /status.
type StatusSource interface {
	Ready() bool
	LastScan() time.Time
	LastScanSignals() int
	Uptime() time.Duration
}

type Config struct {
	Token       string
	ChatID      int64
	MaxRetries  int
	RetryDelay  time.Duration
	APIEndpoint string // пусто — tgbot.APIEndpoint
}

// Telegram: пассивный нотифайер + команды /start и /status из своего чата.
type Telegram struct {
	bot        *tgbot.BotAPI
	chatID     int64
	maxRetries int
	retryDelay time.Duration
	status     StatusSource
	log        *zap.Logger
	now        func() time.Time
}

func NewTelegram(cfg Config, status StatusSource, log *zap.Logger) (*Telegram, error) {
	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbot.APIEndpoint
	}
	b, err := tgbot.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{Timeout: 30 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "telegram bot")
	}
	if log == nil {
		log = zap.NewNop()
	}

	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &Telegram{
		bot:        b,
		chatID:     cfg.ChatID,
		maxRetries: retries,
		retryDelay: cfg.RetryDelay,
		status:     status,
		log:        log.Named("telegram"),
		now:        time.Now,
	}, nil
}

// Notify шлёт MarkdownV2, при ошибке разбора разметки тут же повторяет plain-текстом.
// Остальные ошибки повторяются до maxRetries раз с экспоненциальной паузой.
func (t *Telegram) Notify(ctx context.Context, msg Message) error {
	var lastErr error
	for attempt := 0; attempt < t.maxRetries; attempt++ {
		if attempt > 0 {
			delay := t.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := t.send(msg.Markdown, tgbot.ModeMarkdownV2)
		if isParseError(err) {
			t.log.Warn("markdown rejected, sending plain text", zap.Error(err))
			err = t.send(msg.Plain, "")
		}
		if err == nil {
			return nil
		}

		lastErr = err
		t.log.Error("send failed", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return errors.Wrapf(lastErr, "telegram: %d attempts", t.maxRetries)
}

func (t *Telegram) send(text, parseMode string) error {
	m := tgbot.NewMessage(t.chatID, text)
	m.ParseMode = parseMode
	m.DisableWebPagePreview = true
	_, err := t.bot.Send(m)
	return err
}

// Start: long-polling в отдельной горутине до отмены ctx.
func (t *Telegram) Start(ctx context.Context) {
	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	updates := t.bot.GetUpdatesChan(u)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case upd, ok := <-updates:
				if !ok {
					return
				}
				t.handleUpdate(ctx, upd)
			}
		}
	}()
}

func (t *Telegram) Stop() {
	t.bot.StopReceivingUpdates()
}

// Stdout: dry-run: сигналы только в лог.
type Stdout struct {
	log *zap.Logger
}

func NewStdout(log *zap.Logger) *Stdout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Stdout{log: log.Named("stdout")}
}

func (s *Stdout) Notify(_ context.Context, msg Message) error {
	s.log.Info("signal\n" + msg.Plain)
	return nil
}
