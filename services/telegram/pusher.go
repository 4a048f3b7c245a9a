package telegram

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wrdo/mailrouter/config"
	"github.com/wrdo/mailrouter/dto"
	mailrouter_errors "github.com/wrdo/mailrouter/errors"
	"github.com/wrdo/mailrouter/internal/logger"
	"github.com/wrdo/mailrouter/internal/tracing"
	"github.com/wrdo/mailrouter/internal/utils"
)

const parseModeMarkdown = "Markdown"

var errNon200 = errors.New("non-200 from telegram")

type sendMessageRequest struct {
	ChatId                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	Ok          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Pusher posts a summary of each inbound email to one or more Telegram chats.
type Pusher struct {
	log        logger.Logger
	apiPrefix  string
	httpClient *http.Client
}

func NewPusher(log logger.Logger, cfg *config.TelegramConfig) *Pusher {
	prefix := cfg.APIPrefix
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Pusher{
		log:        log,
		apiPrefix:  prefix,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

// Push sends the message to every chat in parallel and waits for all of them. The returned
// error joins the per-chat failures with the bot token masked.
func (p *Pusher) Push(ctx context.Context, email *dto.InboundEmail, cfg dto.TelegramConfig) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TelegramPusher.Push")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	token := strings.TrimSpace(cfg.BotToken)
	chatIds := utils.SplitAndTrim(cfg.ChatIds)
	if token == "" || len(chatIds) == 0 {
		p.log.Error("Telegram bot token or chat id not configured", zap.Int("chats", len(chatIds)))
		return mailrouter_errors.ErrTelegramNotConfigured
	}

	text := FormatMessage(email, cfg.Template)

	errs := make([]error, len(chatIds))
	var wg sync.WaitGroup
	for i, chatId := range chatIds {
		wg.Add(1)
		go func(i int, chatId string) {
			defer wg.Done()
			if err := p.sendMessage(ctx, token, chatId, text); err != nil {
				errs[i] = errors.Errorf("chat %s: %s", chatId, SanitizeBotToken(err.Error(), token))
				p.log.Error("Failed to send message to Telegram chat", zap.String("chatId", chatId), zap.Error(errs[i]))
				return
			}
			p.log.Info("Email sent to Telegram chat", zap.String("chatId", chatId), zap.String("to", email.To))
		}(i, chatId)
	}
	wg.Wait()

	var combined error
	successful := 0
	for _, err := range errs {
		if err == nil {
			successful++
			continue
		}
		combined = multierr.Append(combined, err)
	}
	p.log.Infof("Telegram push completed: %d/%d successful", successful, len(chatIds))

	if combined != nil {
		tracing.TraceErr(span, combined)
	}
	return combined
}

func (p *Pusher) sendMessage(ctx context.Context, token, chatId, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatId:                chatId,
		Text:                  text,
		ParseMode:             parseModeMarkdown,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return errors.Wrap(err, "encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiPrefix+"bot"+token+"/sendMessage", bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		var apiErr apiResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Description != "" {
			return errors.Wrapf(errNon200, "(%d) %s", resp.StatusCode, apiErr.Description)
		}
		return errors.Wrapf(errNon200, "(%d) %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

func SanitizeBotToken(s, botToken string) string {
	if botToken == "" {
		return s
	}
	return strings.ReplaceAll(s, botToken, "***")
}
