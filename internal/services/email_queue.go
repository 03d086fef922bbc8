package services

import (
	"context"
	"sync"

	"wallmag/internal/logger"

	"go.uber.org/zap"
)

type EmailJob struct {
	To      []string
	Subject string
	Body    string
}

type HTMLSender interface {
	SendHTML(ctx context.Context, to []string, subject, body string) error
}

// Mailer: очередь писем с фиксированным пулом воркеров.
type Mailer struct {
	jobs    chan EmailJob
	sender  HTMLSender
	workers int
	wg      sync.WaitGroup
}

func NewMailer(sender HTMLSender, buffer, workers int) *Mailer {
	if buffer <= 0 {
		buffer = 100
	}
	if workers <= 0 {
		workers = 1
	}
	return &Mailer{
		jobs:    make(chan EmailJob, buffer),
		sender:  sender,
		workers: workers,
	}
}

// Start запускает воркеры; они завершаются при отмене ctx.
func (m *Mailer) Start(ctx context.Context) {
	for i := 0; i < m.workers; i++ {
		m.wg.Add(1)
		go func(id int) {
			defer m.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-m.jobs:
					if err := m.sender.SendHTML(ctx, job.To, job.Subject, job.Body); err != nil {
						logger.Log.Error("Не удалось отправить письмо",
							zap.Int("worker", id),
							zap.Strings("to", job.To),
							zap.String("subject", job.Subject),
							zap.Error(err),
						)
					}
				}
			}
		}(i)
	}
}

// Enqueue не блокирует: при переполненной очереди письмо отбрасывается.
func (m *Mailer) Enqueue(job EmailJob) bool {
	select {
	case m.jobs <- job:
		return true
	default:
		logger.Log.Warn("Очередь писем переполнена, письмо отброшено", zap.String("subject", job.Subject))
		return false
	}
}

func (m *Mailer) Wait() {
	m.wg.Wait()
}
