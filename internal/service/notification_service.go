package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/fundvault/dataroom-service/internal/auth"
	"github.com/fundvault/dataroom-service/internal/config"
	emailpkg "github.com/fundvault/dataroom-service/internal/email"
	"github.com/fundvault/dataroom-service/internal/events"
	"github.com/fundvault/dataroom-service/internal/repository"
)

// NotificationService turns domain events into email and webhook
// deliveries. Both channels are optional; missing configuration
// degrades to logging only.
type NotificationService struct {
	dispatcher  events.Dispatcher
	mailer      emailpkg.Mailer
	users       repository.UserRepository
	viewers     repository.ViewerRepository
	unsubscribe *auth.UnsubscribeTokens
	webhookURL  string
	baseURL     string
	httpClient  *http.Client
	logger      *zap.Logger
}

// NotificationDependencies bundles requirements for the service.
type NotificationDependencies struct {
	Dispatcher  events.Dispatcher
	Mailer      emailpkg.Mailer
	UserRepo    repository.UserRepository
	ViewerRepo  repository.ViewerRepository
	Unsubscribe *auth.UnsubscribeTokens
	Logger      *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(cfg config.Config, deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		dispatcher:  deps.Dispatcher,
		mailer:      deps.Mailer,
		users:       deps.UserRepo,
		viewers:     deps.ViewerRepo,
		unsubscribe: deps.Unsubscribe,
		webhookURL:  cfg.Webhook.URL,
		baseURL:     cfg.App.BaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      deps.Logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventQuestionAsked, n.handleQuestionAsked)
	n.dispatcher.Subscribe(events.EventQuestionAnswered, n.handleQuestionAnswered)
	n.dispatcher.Subscribe(events.EventLinkViewed, n.handleLinkViewed)
	n.dispatcher.Subscribe(events.EventKycStatusChanged, n.handleWebhookOnly)
	n.dispatcher.Subscribe(events.EventDocumentUploaded, n.handleWebhookOnly)
}

func (n *NotificationService) handleQuestionAsked(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.QuestionAskedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("QuestionAsked", zap.String("question_id", payload.QuestionID), zap.String("team_id", event.TeamID))
	n.sendWebhook(ctx, event)

	if n.mailer == nil {
		return nil
	}
	admins, err := n.users.ListByTeam(ctx, event.TeamID)
	if err != nil {
		n.logger.Warn("failed to list team admins for notification", zap.Error(err))
		return nil
	}
	for _, admin := range admins {
		if admin.UnsubscribedAt != nil {
			continue
		}
		unsub, err := n.unsubscribeURL(admin.ID, event.TeamID, &payload.DataroomID)
		if err != nil {
			n.logger.Warn("failed to sign unsubscribe token", zap.Error(err))
		}
		subject, html, text := emailpkg.QuestionAskedMessage(payload.DataroomName, payload.BodyPreview, unsub)
		if err := n.mailer.Send(admin.Email, subject, html, text); err != nil {
			n.logger.Warn("failed to email admin", zap.String("user_id", admin.ID), zap.Error(err))
		}
	}
	return nil
}

func (n *NotificationService) handleQuestionAnswered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.QuestionAnsweredPayload)
	if !ok {
		return nil
	}
	n.logger.Info("QuestionAnswered", zap.String("question_id", payload.QuestionID), zap.String("team_id", event.TeamID))
	n.sendWebhook(ctx, event)

	if n.mailer == nil {
		return nil
	}
	viewer, err := n.viewers.GetByID(ctx, payload.ViewerID)
	if err != nil {
		n.logger.Warn("failed to load viewer for notification", zap.Error(err))
		return nil
	}
	if viewer.UnsubscribedAt != nil {
		return nil
	}
	unsub, err := n.unsubscribeURL(viewer.ID, event.TeamID, &payload.DataroomID)
	if err != nil {
		n.logger.Warn("failed to sign unsubscribe token", zap.Error(err))
	}
	subject, html, text := emailpkg.QuestionAnsweredMessage(payload.DataroomName, payload.Answer, unsub)
	if err := n.mailer.Send(viewer.Email, subject, html, text); err != nil {
		n.logger.Warn("failed to email viewer", zap.String("viewer_id", viewer.ID), zap.Error(err))
	}
	return nil
}

func (n *NotificationService) handleLinkViewed(ctx context.Context, event events.Event) error {
	n.logger.Info("LinkViewed", zap.String("team_id", event.TeamID), zap.Any("payload", event.Payload))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) handleWebhookOnly(ctx context.Context, event events.Event) error {
	n.logger.Info(string(event.Type), zap.String("team_id", event.TeamID), zap.Any("payload", event.Payload))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) unsubscribeURL(viewerID, teamID string, dataroomID *string) (string, error) {
	token, err := n.unsubscribe.Generate(viewerID, teamID, dataroomID)
	if err != nil {
		return "", err
	}
	return n.unsubscribe.URL(n.baseURL, auth.UnsubscribeDataroom, token), nil
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	if n.webhookURL == "" {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Warn("failed to encode webhook payload", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		n.logger.Warn("failed to build webhook request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		n.logger.Warn("webhook delivery rejected", zap.Int("status", resp.StatusCode))
	}
}
