// internal/notify/dispatcher_test.go
package notify

import (
	"context"
	"sync"
	"testing"

	"hiring-workflow/internal/common/config"
	"hiring-workflow/internal/common/logger"
	"hiring-workflow/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

type mockSES struct {
	mu     sync.Mutex
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, params)
	return &ses.SendEmailOutput{}, m.err
}

func (m *mockSES) sent() []*ses.SendEmailInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs
}

type mockSNS struct {
	mu     sync.Mutex
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, params)
	return &sns.PublishOutput{}, m.err
}

func (m *mockSNS) sent() []*sns.PublishInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inputs
}

func testConfig() config.NotificationConfig {
	cfg := config.NotificationConfig{QueueSize: 16}
	cfg.Email.Enabled = true
	cfg.Email.FromEmail = "no-reply@hiring.example.com"
	cfg.SMS.Enabled = true
	cfg.SMS.PriorityThreshold = "high"
	cfg.AWS.Region = "us-east-1"
	return cfg
}

func testNotification(priority string) models.Notification {
	return models.Notification{
		ID:            "n-001",
		RecipientID:   "cand-001",
		Type:          models.NotificationStatusChanged,
		Priority:      priority,
		Message:       "Your application status changed to under_review",
		Link:          "/applications/app-001",
		ApplicationID: "app-001",
	}
}

func expectContact(mock sqlmock.Sqlmock, email, phone string) {
	mock.ExpectQuery(`SELECT email, phone FROM users`).
		WithArgs("cand-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow(email, phone))
}

// ==========================
// Delivery Tests
// ==========================

func TestDispatcher_DeliversEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	expectContact(mock, "cand@example.com", "")

	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	d := NewDispatcherWithClients(testConfig(), db, logger.NewTestLogger(t), sesMock, snsMock)

	d.Enqueue(testNotification("normal"))
	d.Close()

	assert.Len(t, sesMock.sent(), 1)
	assert.Equal(t, "cand@example.com", sesMock.sent()[0].Destination.ToAddresses[0])
	assert.Equal(t, "no-reply@hiring.example.com", *sesMock.sent()[0].Source)
	assert.Empty(t, snsMock.sent())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatcher_SMSOnlyAtHighPriority(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	expectContact(mock, "cand@example.com", "+15550001111")
	expectContact(mock, "cand@example.com", "+15550001111")

	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	d := NewDispatcherWithClients(testConfig(), db, logger.NewTestLogger(t), sesMock, snsMock)

	d.Enqueue(testNotification("normal"))
	d.Enqueue(testNotification("high"))
	d.Close()

	assert.Len(t, sesMock.sent(), 2)
	assert.Len(t, snsMock.sent(), 1)
	assert.Equal(t, "+15550001111", *snsMock.sent()[0].PhoneNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatcher_UnknownRecipientIsSkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT email, phone FROM users`).
		WithArgs("cand-001").
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}))

	sesMock := &mockSES{}
	d := NewDispatcherWithClients(testConfig(), db, logger.NewTestLogger(t), sesMock, &mockSNS{})

	d.Enqueue(testNotification("high"))
	d.Close()

	assert.Empty(t, sesMock.sent())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDispatcher_SendFailureDoesNotPropagate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	expectContact(mock, "cand@example.com", "")

	sesMock := &mockSES{err: assert.AnError}
	d := NewDispatcherWithClients(testConfig(), db, logger.NewTestLogger(t), sesMock, &mockSNS{})

	// Failure is logged, never returned to the caller.
	d.Enqueue(testNotification("normal"))
	d.Close()

	assert.Len(t, sesMock.sent(), 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Queue Behavior Tests
// ==========================

func TestEnqueue_DropsWhenQueueFull(t *testing.T) {
	// No worker is started so the buffered queue fills up.
	d := &Dispatcher{
		logger: logger.NewTestLogger(t),
		queue:  make(chan models.Notification, 1),
	}

	d.Enqueue(testNotification("normal"))
	d.Enqueue(testNotification("normal"))

	assert.Len(t, d.queue, 1)
}

func TestMeetsPriority(t *testing.T) {
	assert.True(t, meetsPriority("high", "high"))
	assert.True(t, meetsPriority("high", "normal"))
	assert.True(t, meetsPriority("normal", "normal"))
	assert.False(t, meetsPriority("normal", "high"))
	assert.False(t, meetsPriority("low", "normal"))
}
