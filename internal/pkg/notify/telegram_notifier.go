// Package notify alerts operators about broken source documents over Telegram.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/linesheet/internal/pkg/config"
)

// sender is the part of *tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// BrokenDocument describes a document that produced no fixtures.
type BrokenDocument struct {
	Name    string
	Lines   int
	Noise   int
	Dropped int
	Reasons map[string]int
}

// RunSummary is the short report sent after a run.
type RunSummary struct {
	Documents int
	Broken    int
	Fixtures  int
	Bundles   int
	Conflicts int
	Duration  time.Duration
}

// TelegramNotifier queues messages and sends them from one goroutine, keeping
// at least interval between two sends to stay under the chat rate limit.
type TelegramNotifier struct {
	bot      sender
	chatID   int64
	interval time.Duration

	mu       sync.Mutex
	lastSend time.Time

	queue     chan string
	queueDone chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewTelegramNotifier connects the bot and starts the sender.
func NewTelegramNotifier(cfg *config.TelegramConfig) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	if _, err := bot.GetMe(); err != nil {
		return nil, fmt.Errorf("failed to get bot info: %w", err)
	}

	n := newNotifier(bot, cfg.ChatID, cfg.SendInterval)
	slog.Info("Telegram notifier initialized", "chat_id", cfg.ChatID)
	return n, nil
}

func newNotifier(bot sender, chatID int64, interval time.Duration) *TelegramNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		interval:  interval,
		queue:     make(chan string, 100),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	go n.messageSender()
	return n
}

// messageSender sends queued messages until Stop, then drains the queue.
func (n *TelegramNotifier) messageSender() {
	defer close(n.queueDone)
	for {
		select {
		case <-n.ctx.Done():
			for {
				select {
				case text := <-n.queue:
					n.send(text)
				default:
					return
				}
			}
		case text := <-n.queue:
			n.send(text)
		}
	}
}

func (n *TelegramNotifier) send(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if elapsed := time.Since(n.lastSend); elapsed < n.interval {
		time.Sleep(n.interval - elapsed)
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	start := time.Now()
	_, err := n.bot.Send(msg)
	n.lastSend = time.Now()
	if err != nil {
		slog.Error("Telegram send: failed", "error", err, "message_preview", truncateString(text, 50))
		return
	}
	slog.Info("Telegram send: success", "send_duration", time.Since(start), "queue_length", len(n.queue))
}

func (n *TelegramNotifier) enqueue(ctx context.Context, text string) error {
	if n == nil || n.bot == nil {
		return fmt.Errorf("telegram notifier not initialized")
	}
	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- text:
		return nil
	default:
		slog.Warn("Telegram message queue is full, dropping message", "message_preview", truncateString(text, 50))
		return fmt.Errorf("message queue is full")
	}
}

// SendBrokenDocumentAlert queues an alert for a document without fixtures.
func (n *TelegramNotifier) SendBrokenDocumentAlert(ctx context.Context, doc BrokenDocument) error {
	return n.enqueue(ctx, formatBrokenDocument(doc))
}

// SendRunSummary queues the run report.
func (n *TelegramNotifier) SendRunSummary(ctx context.Context, s RunSummary) error {
	return n.enqueue(ctx, formatRunSummary(s))
}

// Stop waits until every queued message was sent.
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.cancel()
	<-n.queueDone
}

func formatBrokenDocument(doc BrokenDocument) string {
	var b strings.Builder
	b.WriteString("🚨 *Broken source document*\n\n")
	b.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(doc.Name)))
	b.WriteString(fmt.Sprintf("No fixtures in %d lines (%d noise, %d dropped)\n", doc.Lines, doc.Noise, doc.Dropped))
	if len(doc.Reasons) > 0 {
		reasons := make([]string, 0, len(doc.Reasons))
		for reason, count := range doc.Reasons {
			reasons = append(reasons, fmt.Sprintf("%s: %d", reason, count))
		}
		sort.Strings(reasons)
		b.WriteString(escapeMarkdown(strings.Join(reasons, ", ")))
		b.WriteString("\n")
	}
	return b.String()
}

func formatRunSummary(s RunSummary) string {
	var b strings.Builder
	b.WriteString("📋 *Betting program extracted*\n\n")
	b.WriteString(fmt.Sprintf("Documents: %d (%d broken)\n", s.Documents, s.Broken))
	b.WriteString(fmt.Sprintf("Fixtures: %d in %d day bundles\n", s.Fixtures, s.Bundles))
	if s.Conflicts > 0 {
		b.WriteString(fmt.Sprintf("Odds conflicts: %d\n", s.Conflicts))
	}
	b.WriteString(fmt.Sprintf("_Took %s_\n", s.Duration.Round(time.Millisecond)))
	return b.String()
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// escapeMarkdown escapes the characters legacy Markdown mode treats as markup.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
