// internal/notify/dispatcher.go
package notify

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"hiring-workflow/internal/common/config"
	"hiring-workflow/internal/common/logger"
	"hiring-workflow/internal/common/metrics"
	"hiring-workflow/internal/models"

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

// Dispatcher delivers committed workflow notifications over email and SMS.
// Delivery is best-effort: a failed or dropped notification is logged and
// counted but never surfaces back to the workflow.
type Dispatcher struct {
	config      config.NotificationConfig
	db          *sql.DB
	logger      logger.Logger
	sesClient   SESService
	snsClient   SNSService
	templateMap map[string]map[string]interface{}

	queue chan models.Notification
	wg    sync.WaitGroup
	once  sync.Once
}

func NewDispatcher(cfg config.NotificationConfig, db *sql.DB, log logger.Logger) (*Dispatcher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	d := &Dispatcher{
		config:      cfg,
		db:          db,
		logger:      log.WithFields(map[string]interface{}{"component": "notification-dispatcher"}),
		sesClient:   ses.NewFromConfig(awsCfg),
		snsClient:   sns.NewFromConfig(awsCfg),
		templateMap: loadTemplates(),
		queue:       make(chan models.Notification, cfg.QueueSize),
	}
	d.start()
	return d, nil
}

// NewDispatcherWithClients wires explicit SES/SNS clients, used in tests.
func NewDispatcherWithClients(cfg config.NotificationConfig, db *sql.DB, log logger.Logger, sesClient SESService, snsClient SNSService) *Dispatcher {
	d := &Dispatcher{
		config:      cfg,
		db:          db,
		logger:      log.WithFields(map[string]interface{}{"component": "notification-dispatcher"}),
		sesClient:   sesClient,
		snsClient:   snsClient,
		templateMap: loadTemplates(),
		queue:       make(chan models.Notification, cfg.QueueSize),
	}
	d.start()
	return d
}

func (d *Dispatcher) start() {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for n := range d.queue {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			d.deliver(ctx, n)
			cancel()
		}
	}()
}

// Enqueue hands a notification to the delivery worker. It never blocks; when
// the queue is full the notification is dropped and counted.
func (d *Dispatcher) Enqueue(n models.Notification) {
	select {
	case d.queue <- n:
		metrics.NotificationsEnqueued.Inc()
	default:
		metrics.NotificationsDropped.Inc()
		d.logger.Warn("notification queue full, dropping", map[string]interface{}{
			"notificationId": n.ID,
			"type":           n.Type,
			"recipientId":    n.RecipientID,
		})
	}
}

// Close stops accepting notifications and waits until the queue drains.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, n models.Notification) {
	email, phone, err := d.getRecipientContact(ctx, n.RecipientID)
	if err != nil {
		d.logger.Warn("recipient not found", map[string]interface{}{
			"recipientId":    n.RecipientID,
			"notificationId": n.ID,
		})
		return
	}

	template, exists := d.templateMap[n.Type]
	if !exists {
		d.logger.Warn("no template for notification type", map[string]interface{}{
			"type": n.Type,
		})
		return
	}

	data := map[string]interface{}{
		"recipientId":   n.RecipientID,
		"applicationId": n.ApplicationID,
		"priority":      n.Priority,
		"message":       n.Message,
		"link":          n.Link,
	}
	for k, v := range n.Data {
		data[k] = v
	}

	subject := renderTemplate(template["subject"].(string), data)
	body := renderTemplate(template["body"].(string), data)

	if d.config.Email.Enabled && email != "" {
		if err := d.sendEmail(ctx, email, subject, body); err != nil {
			d.logger.WithError(err).Error("email send failed", map[string]interface{}{
				"notificationId": n.ID,
				"email":          email,
			})
		}
	}

	if d.config.SMS.Enabled && phone != "" && meetsPriority(n.Priority, d.config.SMS.PriorityThreshold) {
		if err := d.sendSMS(ctx, phone, body); err != nil {
			d.logger.WithError(err).Error("SMS send failed", map[string]interface{}{
				"notificationId": n.ID,
				"phone":          phone,
			})
		}
	}
}

func (d *Dispatcher) getRecipientContact(ctx context.Context, recipientID string) (string, string, error) {
	var email, phone string
	err := d.db.QueryRowContext(ctx,
		`SELECT email, phone FROM users WHERE id = $1`, recipientID).
		Scan(&email, &phone)
	return email, phone, err
}

func (d *Dispatcher) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := d.sesClient.SendEmail(ctx, &ses.SendEmailInput{
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
		Source: aws.String(d.config.Email.FromEmail),
	})
	return err
}

func (d *Dispatcher) sendSMS(ctx context.Context, to, message string) error {
	_, err := d.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}

var priorityRank = map[string]int{
	"low":    0,
	"normal": 1,
	"high":   2,
}

func meetsPriority(priority, threshold string) bool {
	return priorityRank[priority] >= priorityRank[threshold]
}

// Simplified template rendering with placeholder removal for missing values
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if i, ok := v.(int); ok {
			value = fmt.Sprintf("%d", i)
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	// Remove any remaining placeholders (missing values)
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}

func loadTemplates() map[string]map[string]interface{} {
	return map[string]map[string]interface{}{
		models.NotificationInterviewInvitation: {
			"subject": "Interview Scheduled",
			"body":    "You have been invited to a {{interviewType}} interview on {{scheduledDate}}. Details: {{link}}",
		},
		models.NotificationOfferMade: {
			"subject": "You Have Received an Offer",
			"body":    "Congratulations! {{message}} Review it here: {{link}}",
		},
		models.NotificationStatusChanged: {
			"subject": "Application Status Updated",
			"body":    "{{message}}. Track your application: {{link}}",
		},
	}
}
