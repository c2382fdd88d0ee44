package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"ticket-mailer/internal/logger"
	"ticket-mailer/internal/mailer"
	"ticket-mailer/internal/models"
	"ticket-mailer/internal/tickets/class"
	qr "ticket-mailer/internal/tickets/qr_genrator"
	"ticket-mailer/internal/tickets/template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSender is a mock implementation of mailer.Sender
type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email mailer.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// recordingSender keeps every email it receives and fails on demand.
type recordingSender struct {
	mu     sync.Mutex
	sent   []mailer.Email
	failOn map[string]error
}

func (r *recordingSender) Send(ctx context.Context, email mailer.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, email)
	return r.failOn[email.To]
}

func (r *recordingSender) recipients() []string {
	var out []string
	for _, e := range r.sent {
		out = append(out, e.To)
	}
	return out
}

type stubQR struct {
	calls []string
	err   error
}

func (s *stubQR) Generate(content string) ([]byte, error) {
	s.calls = append(s.calls, content)
	if s.err != nil {
		return nil, s.err
	}
	return []byte("png:" + content), nil
}

type progressRecorder struct {
	events []models.DispatchProgress
}

func (p *progressRecorder) EmitProgress(progress models.DispatchProgress) {
	p.events = append(p.events, progress)
}

type notifierStub struct {
	events []models.BatchCompletedEvent
	err    error
}

func (n *notifierStub) PublishBatchCompleted(ctx context.Context, event models.BatchCompletedEvent) error {
	n.events = append(n.events, event)
	return n.err
}

func newTestDispatcher(t *testing.T, sender mailer.Sender) (*Dispatcher, *[]time.Duration) {
	t.Helper()
	renderer, err := template.NewTicketRenderer("support@example.com", "")
	require.NoError(t, err)

	var sleeps []time.Duration
	d := &Dispatcher{
		Sender:    sender,
		Renderer:  renderer,
		QR:        &stubQR{},
		Logger:    logger.NewWriterLogger(io.Discard),
		Policy:    mailer.NewHardBlockPolicy([]string{"5.4.6", "429"}),
		SendDelay: 4 * time.Second,
		Subject:   "Your ticket for %s",
		Sleep:     func(d time.Duration) { sleeps = append(sleeps, d) },
	}
	return d, &sleeps
}

func testEvent() models.EventConfig {
	return models.EventConfig{ID: "EVT", Name: "Robot Cup", Date: "15 Dec", Time: "10:00", Address: "Quito"}
}

func guests(n int) []models.Guest {
	out := make([]models.Guest, n)
	for i := range out {
		out[i] = models.Guest{Email: string(rune('a'+i)) + "@example.com", TicketType: "Regular"}
	}
	return out
}

func TestSendBatchAllSucceed(t *testing.T) {
	sender := &recordingSender{}
	d, sleeps := newTestDispatcher(t, sender)

	result := d.SendBatch(context.Background(), guests(3), testEvent())

	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 3, result.Total)
	assert.False(t, result.Aborted)
	assert.NotEmpty(t, result.BatchID)

	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, sender.recipients())
	assert.Equal(t, []time.Duration{4 * time.Second, 4 * time.Second}, *sleeps)
	assert.Equal(t, "Your ticket for Robot Cup", sender.sent[0].Subject)
}

func TestSendBatchGeneratesCodesInOrder(t *testing.T) {
	sender := &recordingSender{}
	d, _ := newTestDispatcher(t, sender)
	qrStub := &stubQR{}
	d.QR = qrStub
	progress := &progressRecorder{}
	d.Progress = progress

	batch := []models.Guest{
		{Email: "one@example.com", TicketType: "VIP"},
		{Email: "two@example.com", TicketType: "Regular"},
		{Email: "three@example.com", TicketType: "unknown"},
	}

	d.SendBatch(context.Background(), batch, testEvent())

	want := []string{"EVT-003-00001", "EVT-001-00002", "EVT-000-00003"}
	assert.Equal(t, want, qrStub.calls)
	require.Len(t, progress.events, 3)
	for i, p := range progress.events {
		assert.Equal(t, want[i], p.UniqueCode)
		assert.Equal(t, i+1, p.Position)
		assert.Equal(t, models.DispatchSent, p.Status)
		assert.Contains(t, sender.sent[i].HTMLBody, want[i])
	}
}

func TestSendBatchKeepsSuppliedCode(t *testing.T) {
	sender := &recordingSender{}
	d, _ := newTestDispatcher(t, sender)
	qrStub := &stubQR{}
	d.QR = qrStub

	batch := []models.Guest{
		{Email: "one@example.com", TicketType: "VIP", UniqueCode: "CUSTOM-1"},
		{Email: "two@example.com", TicketType: "VIP"},
	}
	d.SendBatch(context.Background(), batch, testEvent())

	assert.Equal(t, []string{"CUSTOM-1", "EVT-003-00002"}, qrStub.calls)
	assert.Contains(t, sender.sent[0].HTMLBody, "CUSTOM-1")
}

func TestSendBatchDefaultsEventIDAndType(t *testing.T) {
	sender := &recordingSender{}
	d, _ := newTestDispatcher(t, sender)
	qrStub := &stubQR{}
	d.QR = qrStub

	d.SendBatch(context.Background(), []models.Guest{{Email: "x@example.com"}}, models.EventConfig{Name: "No ID"})

	assert.Equal(t, []string{"001-000-00001"}, qrStub.calls)
	html := sender.sent[0].HTMLBody
	assert.Contains(t, html, ">VIP<")
	assert.Contains(t, html, "background:"+class.AccentVIP)
}

func TestSendBatchAccentByType(t *testing.T) {
	cases := map[string]string{
		"vip":       class.AccentVIP,
		"Plus":      class.AccentPlus,
		"Regular +": class.AccentPlus,
		"REGULAR":   class.AccentDefault,
		"guest":     class.AccentDefault,
	}
	for ticketType, accent := range cases {
		sender := &recordingSender{}
		d, _ := newTestDispatcher(t, sender)
		d.SendBatch(context.Background(), []models.Guest{{Email: "x@example.com", TicketType: ticketType}}, testEvent())
		require.Len(t, sender.sent, 1)
		assert.Contains(t, sender.sent[0].HTMLBody, "background:"+accent, ticketType)
		if !strings.Contains(ticketType, "+") {
			assert.Contains(t, sender.sent[0].HTMLBody, ">"+strings.ToUpper(ticketType)+"<", ticketType)
		}
	}
}

func TestSendBatchContinuesOnFailure(t *testing.T) {
	sender := &recordingSender{failOn: map[string]error{
		"b@example.com": &mailer.SendError{Provider: "smtp", Code: "5.1.1", Message: "mailbox unavailable"},
	}}
	d, sleeps := newTestDispatcher(t, sender)
	progress := &progressRecorder{}
	d.Progress = progress

	result := d.SendBatch(context.Background(), guests(4), testEvent())

	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, 4, result.SuccessCount+result.ErrorCount)
	assert.False(t, result.Aborted)
	assert.Len(t, sender.sent, 4)
	assert.Len(t, *sleeps, 3)
	assert.Equal(t, models.DispatchFailed, progress.events[1].Status)
	assert.Contains(t, progress.events[1].Error, "mailbox unavailable")
}

func TestSendBatchStopsOnHardBlock(t *testing.T) {
	sender := &recordingSender{failOn: map[string]error{
		"a@example.com": errors.New("transient"),
		"c@example.com": &mailer.SendError{Provider: "smtp", Code: "5.4.6", Message: "Unusual sending activity detected"},
	}}
	d, sleeps := newTestDispatcher(t, sender)
	progress := &progressRecorder{}
	d.Progress = progress
	notifier := &notifierStub{}
	d.Notifier = notifier

	result := d.SendBatch(context.Background(), guests(5), testEvent())

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.ErrorCount)
	assert.Equal(t, 3, result.SuccessCount+result.ErrorCount)
	assert.Equal(t, 3, result.Processed)
	assert.True(t, result.Aborted)
	assert.Contains(t, result.AbortReason, "5.4.6")

	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, sender.recipients())
	assert.Len(t, *sleeps, 2)
	assert.Equal(t, models.DispatchBlocked, progress.events[2].Status)

	require.Len(t, notifier.events, 1)
	assert.True(t, notifier.events[0].Aborted)
	assert.Equal(t, 5, notifier.events[0].Total)
}

func TestSendBatchWithMockSender(t *testing.T) {
	sender := new(MockSender)
	d, _ := newTestDispatcher(t, sender)

	sender.On("Send", mock.Anything, mock.MatchedBy(func(e mailer.Email) bool {
		return e.To == "a@example.com"
	})).Return(nil).Once()
	sender.On("Send", mock.Anything, mock.MatchedBy(func(e mailer.Email) bool {
		return e.To == "b@example.com"
	})).Return(&mailer.SendError{Provider: "brevo", Code: "429", Message: "too_many_requests"}).Once()

	result := d.SendBatch(context.Background(), guests(3), testEvent())

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.True(t, result.Aborted)
	sender.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestSendBatchEmptyEmailCountsAsFailure(t *testing.T) {
	sender := &recordingSender{}
	d, _ := newTestDispatcher(t, sender)

	result := d.SendBatch(context.Background(), []models.Guest{{Email: " "}, {Email: "ok@example.com"}}, testEvent())

	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.ErrorCount)
	assert.Equal(t, []string{"ok@example.com"}, sender.recipients())
}

func TestSendBatchQRFailureIsPerGuest(t *testing.T) {
	sender := &recordingSender{}
	d, _ := newTestDispatcher(t, sender)
	d.QR = &stubQR{err: errors.New("qr broke")}

	result := d.SendBatch(context.Background(), guests(2), testEvent())

	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 2, result.ErrorCount)
	assert.False(t, result.Aborted)
	assert.Empty(t, sender.sent)
}

func TestSendBatchEmpty(t *testing.T) {
	sender := &recordingSender{}
	d, sleeps := newTestDispatcher(t, sender)

	result := d.SendBatch(context.Background(), nil, testEvent())

	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.SuccessCount+result.ErrorCount)
	assert.Empty(t, *sleeps)
}

func TestSendBatchNotifierErrorIsLogged(t *testing.T) {
	var logs bytes.Buffer
	sender := &recordingSender{}
	d, _ := newTestDispatcher(t, sender)
	d.Logger = logger.NewWriterLogger(&logs)
	d.Notifier = &notifierStub{err: errors.New("broker down")}

	result := d.SendBatch(context.Background(), guests(1), testEvent())

	assert.Equal(t, 1, result.SuccessCount)
	assert.Contains(t, logs.String(), "broker down")
}

func TestBuildEmailAttachments(t *testing.T) {
	sender := &recordingSender{}
	d, _ := newTestDispatcher(t, sender)
	d.Logo = []byte("logo")

	d.SendBatch(context.Background(), guests(1), testEvent())

	email := sender.sent[0]
	require.Len(t, email.Attachments, 2)
	assert.Equal(t, "logo-event", email.Attachments[0].ContentID)
	assert.Equal(t, "unique-qr-code", email.Attachments[1].ContentID)
	assert.Equal(t, []byte("png:EVT-001-00001"), email.Attachments[1].Content)
	assert.Contains(t, email.HTMLBody, `src="cid:unique-qr-code"`)
	assert.Contains(t, email.HTMLBody, `src="cid:logo-event"`)
}

func TestBuildEmailRemoteQR(t *testing.T) {
	sender := &recordingSender{}
	d, _ := newTestDispatcher(t, sender)
	d.QRRemoteURL = "https://qr.example.com/?data="

	d.SendBatch(context.Background(), guests(1), testEvent())

	email := sender.sent[0]
	assert.Empty(t, email.Attachments)
	assert.Contains(t, email.HTMLBody, `src="https://qr.example.com/?data=EVT-001-00001"`)
}

func TestBuildEmailSuppliedQRImage(t *testing.T) {
	sender := &recordingSender{}
	d, _ := newTestDispatcher(t, sender)
	qrStub := &stubQR{}
	d.QR = qrStub

	supplied := qr.DataURI([]byte("client-png"))
	d.SendBatch(context.Background(), []models.Guest{{Email: "a@example.com", QRImage: supplied, UniqueCode: "X-1"}}, testEvent())

	assert.Empty(t, qrStub.calls)
	require.Len(t, sender.sent[0].Attachments, 1)
	assert.Equal(t, []byte("client-png"), sender.sent[0].Attachments[0].Content)
}

func TestPreview(t *testing.T) {
	d, _ := newTestDispatcher(t, &recordingSender{})
	d.QR = qr.NewQRGenerator(128)
	d.Logo = []byte("logo")

	html, err := d.Preview(models.Guest{Email: "a@example.com", TicketType: "regular +"}, testEvent())
	require.NoError(t, err)

	assert.Contains(t, html, "MODO PREVISUALIZACIÓN")
	assert.Contains(t, html, "EVT-002-00001")
	assert.Contains(t, html, "REGULAR &#43;")
	assert.Contains(t, html, "background:"+class.AccentPlus)
	assert.Contains(t, html, `src="data:image/png;base64,`)
	assert.Contains(t, html, qr.DataURI([]byte("logo")))
}

func TestPreviewInvalidQRImage(t *testing.T) {
	d, _ := newTestDispatcher(t, &recordingSender{})

	_, err := d.Preview(models.Guest{Email: "a@example.com", QRImage: "data:image/png;base64,!!"}, testEvent())
	assert.Error(t, err)
}
