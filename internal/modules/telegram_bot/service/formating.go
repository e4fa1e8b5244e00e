package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"signal_bot/internal/models"
)

// Message: один текст в двух вариантах: MarkdownV2 и plain на случай,
// если Telegram не смог разобрать разметку.
type Message struct {
	Markdown string
	Plain    string
}

// NewMessage: заголовок жирным и строки тела.
func NewMessage(title string, lines []string) Message {
	body := strings.Join(lines, "\n")
	return Message{
		Markdown: "*" + escape(title) + "*\n" + escape(body),
		Plain:    title + "\n" + body,
	}
}

func escape(s string) string { return tgbot.EscapeText(tgbot.ModeMarkdownV2, s) }

// FormatSignal: сообщение по одному сигналу.
func FormatSignal(symbol, tf string, sig models.Signal) Message {
	p := sig.Profitability
	title := fmt.Sprintf("%s %s %s %s", sideEmoji(sig.Side()), sig.Side(), symbol, tf)

	lines := []string{
		fmt.Sprintf("%s @ %s", sig.Kind, sig.Time.UTC().Format(time.RFC3339)),
		"Entry: " + price(sig.EntryPrice),
		fmt.Sprintf("Target: %s (%s%%)", price(p.TargetPrice), signedPct(p.TargetPrice, sig.EntryPrice)),
		fmt.Sprintf("Stop: %s (%s%%)", price(p.StopPrice), signedPct(p.StopPrice, sig.EntryPrice)),
		fmt.Sprintf("Strength: %s | RR: %s | Max profit: %s%%", f2(sig.Strength), rr(p.RiskReward), f2(p.MaxProfitPct)),
	}
	if meta := formatMeta(sig.Meta); meta != "" {
		lines = append(lines, meta)
	}
	return NewMessage(title, lines)
}

// FormatDigest: нумерованный список сигналов по символу.
func FormatDigest(symbol, tf string, signals []models.Signal) Message {
	title := fmt.Sprintf("📊 %s %s: %d signals", symbol, tf, len(signals))
	if len(signals) == 0 {
		return NewMessage(title, []string{"nothing found"})
	}

	lines := make([]string, 0, len(signals))
	for i, s := range signals {
		lines = append(lines, DigestLine(i+1, s))
	}
	return NewMessage(title, lines)
}

// DigestLine: "01) 2024-05-01T10:15:00Z | FVG_BULLISH | Entry: 104.50 | Strength: 3.96 | Profit: 4.31% | RR: 9.00"
func DigestLine(n int, s models.Signal) string {
	return fmt.Sprintf("%02d) %s | %s | Entry: %.2f | Strength: %.2f | Profit: %.2f%% | RR: %s",
		n, s.Time.UTC().Format(time.RFC3339), s.Kind, s.EntryPrice, s.Strength,
		s.Profitability.MaxProfitPct, rr(s.Profitability.RiskReward))
}

func formatMeta(m models.Meta) string {
	switch v := m.(type) {
	case models.StructureMeta:
		return fmt.Sprintf("Broken level: %s | Volume: %s", price(v.BrokenLevel), confirmed(v.VolumeConfirmed))
	case models.GapMeta:
		return fmt.Sprintf("Gap: %s%% [%s .. %s] | Volume spike: %s",
			f2(v.GapPct), price(v.RangeLow), price(v.RangeHigh), confirmed(v.VolumeSpike))
	case models.CrossMeta:
		s := fmt.Sprintf("EMA fast/slow: %s / %s", price(v.EMAFast), price(v.EMASlow))
		if v.EMATrend > 0 {
			s += " | trend: " + price(v.EMATrend)
		}
		return s
	case models.BlockMeta:
		return fmt.Sprintf("Zone: %s .. %s", price(v.RangeLow), price(v.RangeHigh))
	case models.LiquidityMeta:
		return "Grabbed level: " + price(v.GrabbedLevel)
	default:
		return ""
	}
}

func sideEmoji(s models.Side) string {
	switch s {
	case models.SideBuy:
		return "🟢"
	case models.SideSell:
		return "🔴"
	default:
		return "⚪️"
	}
}

// price: точность по величине цены, чтобы не терять знаки у дешёвых монет.
func price(v float64) string {
	switch a := math.Abs(v); {
	case a >= 100:
		return fmt.Sprintf("%.2f", v)
	case a >= 1:
		return fmt.Sprintf("%.4f", v)
	default:
		return fmt.Sprintf("%.6f", v)
	}
}

func signedPct(v, base float64) string {
	if base == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%+.2f", (v/base-1)*100)
}

func rr(v float64) string {
	if math.IsInf(v, 1) {
		return "∞"
	}
	return f2(v)
}

func confirmed(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
