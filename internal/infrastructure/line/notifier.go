package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"AnesthUpdate/internal/domain"
	"AnesthUpdate/internal/ports"
)

const broadcastEndpoint = "https://api.line.me/v2/bot/message/broadcast"

// Notifier broadcasts a digest of the run's papers via the LINE Messaging
// API. With no channel token configured it is a logged no-op; transport
// failures are logged and swallowed so a run's persisted state is never
// invalidated by a notification problem.
type Notifier struct {
	token        string
	dashboardURL string
	endpoint     string
	client       *http.Client
	logger       *slog.Logger
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers the channel access token and the dashboard link used
// in the message footer.
func NewNotifier(token, dashboardURL string, logger *slog.Logger) *Notifier {
	return &Notifier{
		token:        token,
		dashboardURL: dashboardURL,
		endpoint:     broadcastEndpoint,
		client:       &http.Client{Timeout: 10 * time.Second},
		logger:       logger,
	}
}

// NotifyNewPapers formats the highest-importance paper of the run and sends
// it to the broadcast channel.
func (n *Notifier) NotifyNewPapers(ctx context.Context, papers []domain.Paper) error {
	if len(papers) == 0 {
		n.info("no new papers to notify")
		return nil
	}
	if n.token == "" {
		n.warn("LINE channel access token is not set, skipping notification")
		return nil
	}

	message := buildMessage(papers, n.dashboardURL)
	if err := n.broadcast(ctx, message); err != nil {
		n.error("failed to send LINE broadcast", "error", err)
		return nil
	}

	n.info("LINE broadcast sent")
	return nil
}

func buildMessage(papers []domain.Paper, dashboardURL string) string {
	sorted := make([]domain.Paper, len(papers))
	copy(sorted, papers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ImportanceOrDefault() > sorted[j].ImportanceOrDefault()
	})
	top := sorted[0]

	var b strings.Builder
	b.WriteString("【Anesth Update】今日のピックアップ\n\n")
	fmt.Fprintf(&b, "■ %s (重要度: %d)\n\n", orDefault(top.TitleJa, "No Title"), top.ImportanceOrDefault())
	fmt.Fprintf(&b, "要約:\n%s\n\n", orDefault(top.Summary, "N/A"))
	b.WriteString("詳細はダッシュボードを確認:\n")
	b.WriteString(dashboardURL)
	return b.String()
}

func (n *Notifier) broadcast(ctx context.Context, text string) error {
	body, err := json.Marshal(map[string]any{
		"messages": []map[string]string{
			{"type": "text", "text": text},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal broadcast payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("line error %s: %s", resp.Status, strings.TrimSpace(string(detail)))
	}

	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func (n *Notifier) info(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Info(msg, args...)
	}
}

func (n *Notifier) warn(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Warn(msg, args...)
	}
}

func (n *Notifier) error(msg string, args ...any) {
	if n.logger != nil {
		n.logger.Error(msg, args...)
	}
}
