package services

import (
	"context"
	"strings"

	"wallmag/internal/logger"
	"wallmag/internal/models"
	"wallmag/internal/utils/helpers"

	"go.uber.org/zap"
)

type EmailEnqueuer interface {
	Enqueue(job EmailJob) bool
}

// ModerationNotifier ставит в очередь письмо модератору о новой публикации.
type ModerationNotifier struct {
	queue EmailEnqueuer
	to    string
}

func NewModerationNotifier(queue EmailEnqueuer, moderatorEmail string) *ModerationNotifier {
	return &ModerationNotifier{queue: queue, to: strings.TrimSpace(moderatorEmail)}
}

func (n *ModerationNotifier) NotifySubmission(ctx context.Context, post models.Post) {
	if n.to == "" {
		return
	}
	ok := n.queue.Enqueue(EmailJob{
		To:      []string{n.to},
		Subject: "New Wall-Magazine submission: " + post.Title,
		Body:    helpers.BuildSubmissionNoticeHTML(post.Title, post.Author, string(post.Category), post.Excerpt),
	})
	if ok {
		logger.WithCtx(ctx).Debug("Уведомление модератору поставлено в очередь", zap.String("post_id", post.ID))
	}
}
