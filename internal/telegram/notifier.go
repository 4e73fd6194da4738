// Package telegram shares finished meal plans and usage reports to a
// Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"school-meal-planner/internal/config"
	"school-meal-planner/internal/logging"
	"school-meal-planner/internal/metrics"
	"school-meal-planner/internal/planview"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxMessageLen is Telegram's limit for one text message.
const maxMessageLen = 4096

// Sender is the subset of the bot API used here.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts messages to one configured chat.
type Notifier struct {
	api    Sender
	chatID int64
	logger *zap.Logger
}

// NewNotifier connects to the bot API with the configured token.
func NewNotifier(cfg *config.Config, logger *zap.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	logger.Info("authorized on telegram", zap.String("account", bot.Self.UserName))
	return NewNotifierWithSender(bot, cfg.TelegramChatID, logger), nil
}

// NewNotifierWithSender builds a Notifier around an existing sender.
func NewNotifierWithSender(api Sender, chatID int64, logger *zap.Logger) *Notifier {
	return &Notifier{api: api, chatID: chatID, logger: logging.OrNop(logger)}
}

// SendPlan posts the parsed plan, followed by its ingredient list when there
// is one.
func (n *Notifier) SendPlan(ctx context.Context, r planview.Result) error {
	planText, ingredientText := formatPlanMarkdownParts(r)
	if err := n.send(ctx, planText); err != nil {
		return err
	}
	if ingredientText != "" {
		return n.send(ctx, ingredientText)
	}
	return nil
}

// SendUsageReport posts recent token usage and process health.
func (n *Notifier) SendUsageReport(ctx context.Context, usage []metrics.DailyUsage, health metrics.SysHealth) error {
	return n.send(ctx, formatUsageReport(usage, health))
}

// send posts text in chunks. Every Markdown entity produced here sits on one
// line, so chunks cut on line boundaries stay valid. A line longer than a
// whole message has to be cut mid-entity; such text goes out as plain text.
func (n *Notifier) send(ctx context.Context, text string) error {
	parseMode := tgbotapi.ModeMarkdown
	if hasLongLine(text, maxMessageLen) {
		n.logger.Info("sending oversized message as plain text", zap.Int("bytes", len(text)))
		text = plainText(text)
		parseMode = ""
	}

	for _, chunk := range splitMessage(text, maxMessageLen) {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := tgbotapi.NewMessage(n.chatID, chunk)
		msg.ParseMode = parseMode
		if _, err := n.api.Send(msg); err != nil {
			n.logger.Error("failed to send telegram message", zap.Int64("chat_id", n.chatID), zap.Error(err))
			return fmt.Errorf("failed to send telegram message: %w", err)
		}
	}
	return nil
}

func formatPlanMarkdownParts(r planview.Result) (string, string) {
	var pb strings.Builder
	if len(r.Allergens) > 0 {
		pb.WriteString(fmt.Sprintf("⚠️ *알레르기 주의 정보:* %s\n\n", escape(strings.Join(r.Allergens, ", "))))
	}

	for _, v := range r.Views {
		switch v.Kind {
		case planview.ViewHeading:
			pb.WriteString(fmt.Sprintf("*%s*\n\n", escape(v.Text)))
		case planview.ViewSubheading:
			pb.WriteString(fmt.Sprintf("\n*%s*\n", escape(v.Text)))
		case planview.ViewSection:
			pb.WriteString(fmt.Sprintf("*%s*", escape(v.Title)))
			if v.Content != "" {
				pb.WriteString(" " + escape(v.Content))
			}
			pb.WriteString("\n")
		case planview.ViewList:
			for i, item := range v.Items {
				if v.Ordered {
					pb.WriteString(fmt.Sprintf("%d. %s\n", i+1, escape(item)))
				} else {
					pb.WriteString(fmt.Sprintf("• %s\n", escape(item)))
				}
			}
		default:
			if v.Emphasis {
				pb.WriteString(fmt.Sprintf("*%s*\n", escape(v.Text)))
			} else {
				pb.WriteString(escape(v.Text) + "\n")
			}
		}
	}

	if r.IngredientsText == "" {
		return pb.String(), ""
	}

	var sb strings.Builder
	sb.WriteString("🛒 *재료 목록*\n\n")
	for _, item := range strings.Split(r.IngredientsText, "\n") {
		sb.WriteString(fmt.Sprintf("• %s\n", escape(item)))
	}
	return pb.String(), sb.String()
}

func formatUsageReport(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *사용량 및 상태 보고*\n\n")

	sb.WriteString("🗓 *최근 LLM 사용량*\n")
	if len(usage) == 0 {
		sb.WriteString("_데이터 없음_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d tokens (%d execs)\n", d.Date, d.TotalPrompt+d.TotalCompletion, d.TotalExecution))
	}

	sb.WriteString("\n🧠 *시스템 상태*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s\n", health.DataDiskSize))
	return sb.String()
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape guards text against legacy Markdown entity parsing.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

// markupStripper drops legacy Markdown markup. Escaped characters are matched
// first at their backslash, so they survive as literals.
var markupStripper = strings.NewReplacer("\\_", "_", "\\*", "*", "\\`", "`", "\\[", "[", "*", "", "_", "")

func plainText(s string) string {
	return markupStripper.Replace(s)
}

func hasLongLine(text string, limit int) bool {
	for _, line := range strings.Split(text, "\n") {
		if len(line)+1 > limit {
			return true
		}
	}
	return false
}

// splitMessage cuts text on line boundaries into chunks of at most limit
// bytes. A single longer line is cut mid-line.
func splitMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var cur strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if cur.Len() > 0 {
				chunks = append(chunks, cur.String())
				cur.Reset()
			}
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}
