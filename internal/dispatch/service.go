package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ticket-mailer/internal/config"
	"ticket-mailer/internal/logger"
	"ticket-mailer/internal/mailer"
	"ticket-mailer/internal/models"
	"ticket-mailer/internal/tickets/class"
	"ticket-mailer/internal/tickets/code"
	qr "ticket-mailer/internal/tickets/qr_genrator"
	"ticket-mailer/internal/tickets/template"

	"github.com/google/uuid"
)

const (
	logoContentID = "logo-event"
	qrContentID   = "unique-qr-code"
)

type QRSource interface {
	Generate(content string) ([]byte, error)
}

type Renderer interface {
	Render(ticket template.Ticket) (string, error)
}

type ProgressEmitter interface {
	EmitProgress(progress models.DispatchProgress)
}

type BatchNotifier interface {
	PublishBatchCompleted(ctx context.Context, event models.BatchCompletedEvent) error
}

// Dispatcher sends one ticket email per guest, strictly in list order, with
// a fixed pause between sends.
type Dispatcher struct {
	Sender   mailer.Sender
	Renderer Renderer
	QR       QRSource
	Logger   *logger.Logger
	Policy   mailer.HardBlockPolicy

	SendDelay   time.Duration
	Subject     string
	Logo        []byte
	QRRemoteURL string

	Progress ProgressEmitter
	Notifier BatchNotifier

	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

func NewDispatcher(sender mailer.Sender, renderer Renderer, qrSource QRSource, log *logger.Logger, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		Sender:      sender,
		Renderer:    renderer,
		QR:          qrSource,
		Logger:      log,
		Policy:      mailer.NewHardBlockPolicy(cfg.Dispatch.HardBlockCodes),
		SendDelay:   cfg.Dispatch.SendDelay,
		Subject:     cfg.Email.SubjectPattern,
		QRRemoteURL: cfg.Email.QRRemoteURL,
	}
}

// preparedTicket holds the per-guest attributes resolved before sending.
type preparedTicket struct {
	position   int
	guest      models.Guest
	ticketType string
	accent     string
	uniqueCode string
}

func prepare(guest models.Guest, eventID string, position int) preparedTicket {
	uniqueCode := guest.UniqueCode
	if uniqueCode == "" {
		uniqueCode = code.Generate(eventID, guest.TicketType, position)
	}
	ticketType := class.DisplayLabel(guest.TicketType)
	return preparedTicket{
		position:   position,
		guest:      guest,
		ticketType: ticketType,
		accent:     class.Parse(ticketType).Accent(),
		uniqueCode: uniqueCode,
	}
}

// SendBatch never returns per-guest errors; the counts in the result are the
// only failure signal. A hard-block failure stops the batch at once.
func (d *Dispatcher) SendBatch(ctx context.Context, guests []models.Guest, event models.EventConfig) models.BatchResult {
	startedAt := time.Now()
	result := models.BatchResult{
		BatchID: uuid.NewString(),
		Total:   len(guests),
	}
	eventID := event.EventID()

	d.Logger.Info("DISPATCH", fmt.Sprintf("Starting batch %s for event %s: %d guests", result.BatchID, eventID, len(guests)))

	for i, guest := range guests {
		ticket := prepare(guest, eventID, i+1)

		err := d.sendOne(ctx, ticket, event)
		result.Processed++

		progress := models.DispatchProgress{
			BatchID:    result.BatchID,
			EventID:    eventID,
			Position:   ticket.position,
			Total:      len(guests),
			Email:      guest.Email,
			TicketType: ticket.ticketType,
			UniqueCode: ticket.uniqueCode,
			Status:     models.DispatchSent,
			At:         time.Now(),
		}

		if err == nil {
			result.SuccessCount++
			d.Logger.LogDispatch(result.BatchID, ticket.position, guest.Email, fmt.Sprintf("sent %s", ticket.uniqueCode))
			d.emit(progress)
		} else {
			result.ErrorCount++
			progress.Status = models.DispatchFailed
			progress.Error = err.Error()
			d.Logger.Error("DISPATCH", fmt.Sprintf("Send to %s failed: %v", guest.Email, err))

			if d.Policy.IsHardBlock(err) {
				progress.Status = models.DispatchBlocked
				d.emit(progress)
				result.Aborted = true
				result.AbortReason = err.Error()
				d.Logger.Warn("DISPATCH", fmt.Sprintf("Provider block detected at guest %d/%d, stopping batch %s", ticket.position, len(guests), result.BatchID))
				break
			}
			d.emit(progress)
		}

		if ticket.position < len(guests) && d.SendDelay > 0 {
			d.sleep(d.SendDelay)
		}
	}

	d.Logger.Info("DISPATCH", fmt.Sprintf("Batch %s finished: %d sent, %d failed, %d/%d processed",
		result.BatchID, result.SuccessCount, result.ErrorCount, result.Processed, result.Total))

	d.notify(ctx, models.BatchCompletedEvent{
		BatchID:      result.BatchID,
		EventID:      eventID,
		EventName:    event.Name,
		SuccessCount: result.SuccessCount,
		ErrorCount:   result.ErrorCount,
		Total:        result.Total,
		Aborted:      result.Aborted,
		StartedAt:    startedAt,
		FinishedAt:   time.Now(),
	})

	return result
}

func (d *Dispatcher) sendOne(ctx context.Context, ticket preparedTicket, event models.EventConfig) error {
	if strings.TrimSpace(ticket.guest.Email) == "" {
		return errors.New("guest email is empty")
	}

	email, err := d.buildEmail(ticket, event)
	if err != nil {
		return err
	}
	return d.Sender.Send(ctx, email)
}

func (d *Dispatcher) buildEmail(ticket preparedTicket, event models.EventConfig) (mailer.Email, error) {
	email := mailer.Email{
		To:      ticket.guest.Email,
		Subject: d.subject(event),
	}

	view := template.Ticket{
		Event:      event,
		TicketType: ticket.ticketType,
		Accent:     ticket.accent,
		UniqueCode: ticket.uniqueCode,
	}

	if len(d.Logo) > 0 {
		view.LogoSrc = "cid:" + logoContentID
		email.Attachments = append(email.Attachments, mailer.Attachment{
			Filename:    "logo.png",
			ContentType: "image/png",
			Content:     d.Logo,
			ContentID:   logoContentID,
		})
	}

	if d.QRRemoteURL != "" && ticket.guest.QRImage == "" {
		view.QRSrc = d.QRRemoteURL + url.QueryEscape(ticket.uniqueCode)
	} else {
		png, err := d.qrImage(ticket)
		if err != nil {
			return mailer.Email{}, err
		}
		view.QRSrc = "cid:" + qrContentID
		email.Attachments = append(email.Attachments, mailer.Attachment{
			Filename:    "ticket-qr.png",
			ContentType: "image/png",
			Content:     png,
			ContentID:   qrContentID,
		})
	}

	html, err := d.Renderer.Render(view)
	if err != nil {
		return mailer.Email{}, err
	}
	email.HTMLBody = html
	return email, nil
}

// Preview renders one guest's ticket with inline images. Errors are returned
// as-is.
func (d *Dispatcher) Preview(guest models.Guest, event models.EventConfig) (string, error) {
	ticket := prepare(guest, event.EventID(), 1)

	png, err := d.qrImage(ticket)
	if err != nil {
		return "", err
	}

	view := template.Ticket{
		Event:      event,
		TicketType: ticket.ticketType,
		Accent:     ticket.accent,
		UniqueCode: ticket.uniqueCode,
		QRSrc:      qr.DataURI(png),
		Preview:    true,
	}
	if len(d.Logo) > 0 {
		view.LogoSrc = qr.DataURI(d.Logo)
	}

	return d.Renderer.Render(view)
}

func (d *Dispatcher) qrImage(ticket preparedTicket) ([]byte, error) {
	if ticket.guest.QRImage != "" {
		return qr.DecodeImage(ticket.guest.QRImage)
	}
	return d.QR.Generate(ticket.uniqueCode)
}

func (d *Dispatcher) subject(event models.EventConfig) string {
	if strings.Contains(d.Subject, "%s") {
		return fmt.Sprintf(d.Subject, event.Name)
	}
	if d.Subject == "" {
		return "Tu Ticket para " + event.Name
	}
	return d.Subject
}

func (d *Dispatcher) sleep(delay time.Duration) {
	if d.Sleep != nil {
		d.Sleep(delay)
		return
	}
	time.Sleep(delay)
}

func (d *Dispatcher) emit(progress models.DispatchProgress) {
	if d.Progress != nil {
		d.Progress.EmitProgress(progress)
	}
}

func (d *Dispatcher) notify(ctx context.Context, event models.BatchCompletedEvent) {
	if d.Notifier == nil {
		return
	}
	if err := d.Notifier.PublishBatchCompleted(ctx, event); err != nil {
		d.Logger.Warn("KAFKA", fmt.Sprintf("Failed to publish batch %s completion: %v", event.BatchID, err))
	}
}
