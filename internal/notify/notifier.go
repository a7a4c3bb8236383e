// internal/notify/notifier.go

// Package notify delivers best-effort email and SMS notifications about
// application progress. Delivery failures are logged and counted but
// never propagate into the workflow; a committed transition stands
// whether or not its notification went out.
package notify

import (
	"context"
	"fmt"
	"strings"

	"admission-engine/internal/common/config"
	"admission-engine/internal/common/logger"
	"admission-engine/internal/common/metrics"
	"admission-engine/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

// Define interfaces for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// ContactResolver maps an application to its guardian contact.
type ContactResolver interface {
	ContactFor(ctx context.Context, applicationID string) (guardianName, email, phone string, err error)
}

// Limiter guards per-recipient send volume.
type Limiter interface {
	Allow(ctx context.Context, recipient string) (bool, error)
}

type Notifier struct {
	cfg       config.NotificationConfig
	contacts  ContactResolver
	templates *TemplateRegistry
	limiter   Limiter
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

// New builds a Notifier backed by AWS SES and SNS.
func New(cfg config.NotificationConfig, contacts ContactResolver, templates *TemplateRegistry, limiter Limiter, log logger.Logger) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	return &Notifier{
		cfg:       cfg,
		contacts:  contacts,
		templates: templates,
		limiter:   limiter,
		logger:    log.WithFields(map[string]interface{}{"component": "notifier"}),
		sesClient: ses.NewFromConfig(awsCfg),
		snsClient: sns.NewFromConfig(awsCfg),
	}, nil
}

// decisionTemplates maps terminal statuses onto their dedicated
// templates; every other status change uses the generic one.
var decisionTemplates = map[models.Status]string{
	models.StatusApproved: TemplateDecisionApproved,
	models.StatusRejected: TemplateDecisionRejected,
	models.StatusWaitlist: TemplateDecisionWaitlist,
}

// NotifyStatusChange emails the guardian about a committed transition.
func (n *Notifier) NotifyStatusChange(ctx context.Context, applicationID string, from, to models.Status) error {
	templateID := TemplateStatusChange
	if id, ok := decisionTemplates[to]; ok {
		templateID = id
	}

	data := map[string]interface{}{
		"applicationId": applicationID,
		"from":          string(from),
		"to":            string(to),
	}
	return n.dispatch(ctx, applicationID, templateID, data, false)
}

// NotifyMissingDocuments tells the guardian which documents to upload.
// It is the one notification urgent enough to also go out by SMS.
func (n *Notifier) NotifyMissingDocuments(ctx context.Context, applicationID string, kinds []models.DocumentKind) error {
	names := make([]string, len(kinds))
	for i, kind := range kinds {
		names[i] = string(kind)
	}

	data := map[string]interface{}{
		"applicationId": applicationID,
		"documents":     strings.Join(names, ", "),
	}
	return n.dispatch(ctx, applicationID, TemplateDocumentsMissing, data, true)
}

func (n *Notifier) dispatch(ctx context.Context, applicationID, templateID string, data map[string]interface{}, urgent bool) error {
	guardianName, email, phone, err := n.contacts.ContactFor(ctx, applicationID)
	if err != nil {
		n.logger.Warn("recipient not found", map[string]interface{}{
			"applicationId": applicationID,
			"error":         err.Error(),
		})
		metrics.NotificationsSent.WithLabelValues("email", "skipped").Inc()
		return nil
	}
	data["guardianName"] = guardianName

	tmpl, ok := n.templates.Get(templateID)
	if !ok {
		return fmt.Errorf("template not found: %s", templateID)
	}

	subject := renderTemplate(tmpl.Subject, data)
	body := renderTemplate(tmpl.Body, data)

	if n.cfg.Email.Enabled && email != "" {
		if err := n.sendEmail(ctx, email, subject, body); err != nil {
			metrics.NotificationsSent.WithLabelValues("email", "failed").Inc()
			n.logger.Error("email send failed", map[string]interface{}{
				"applicationId": applicationID,
				"error":         err.Error(),
			})
			return err
		}
		metrics.NotificationsSent.WithLabelValues("email", "sent").Inc()
	}

	if urgent && n.cfg.SMS.Enabled && phone != "" {
		if err := n.sendSMS(ctx, phone, body); err != nil {
			metrics.NotificationsSent.WithLabelValues("sms", "failed").Inc()
			n.logger.Error("SMS send failed", map[string]interface{}{
				"applicationId": applicationID,
				"error":         err.Error(),
			})
			return err
		}
		metrics.NotificationsSent.WithLabelValues("sms", "sent").Inc()
	}

	return nil
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	allowed, err := n.limiter.Allow(ctx, to)
	if err != nil {
		n.logger.Warn("rate limiter unavailable", map[string]interface{}{"error": err.Error()})
	}
	if !allowed {
		metrics.NotificationsSent.WithLabelValues("email", "rate_limited").Inc()
		n.logger.Warn("email rate limited", map[string]interface{}{"recipient": to})
		return nil
	}

	_, err = n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
				Html: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	allowed, err := n.limiter.Allow(ctx, to)
	if err != nil {
		n.logger.Warn("rate limiter unavailable", map[string]interface{}{"error": err.Error()})
	}
	if !allowed {
		metrics.NotificationsSent.WithLabelValues("sms", "rate_limited").Inc()
		n.logger.Warn("SMS rate limited", map[string]interface{}{"recipient": to})
		return nil
	}

	_, err = n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
