package notification

import (
	"context"
	"fmt"

	"paintmarket/internal/domain"
)

// Dispatcher fans lifecycle events out to in-app notifications and
// email. Every method is fire-and-forget: delivery failures are logged
// and never reach the caller, so a dropped email can never fail a
// claim or a bid.
type Dispatcher struct {
	notifs     notificationRepo
	users      userReader
	mailer     Mailer
	adminEmail string
	loggerf    func(format string, args ...interface{})
}

func NewDispatcher(notifs notificationRepo, users userReader, mailer Mailer, adminEmail string, loggerf func(format string, args ...interface{})) *Dispatcher {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Dispatcher{
		notifs:     notifs,
		users:      users,
		mailer:     mailer,
		adminEmail: adminEmail,
		loggerf:    loggerf,
	}
}

func (d *Dispatcher) create(ctx context.Context, userID int64, t domain.NotificationType, title, message string, data map[string]any) {
	n := &domain.Notification{
		UserID:  userID,
		Type:    t,
		Title:   title,
		Message: message,
	}
	if err := d.notifs.Create(ctx, n, data); err != nil {
		d.loggerf("level=error msg=notification insert failed user_id=%d type=%s err=%v", userID, t, err)
	}
}

func (d *Dispatcher) email(ctx context.Context, userID int64, subject, body string) {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil || user.Email == "" {
		d.loggerf("level=error msg=notification email recipient lookup failed user_id=%d err=%v", userID, err)
		return
	}
	if err := d.mailer.Send(ctx, user.Email, subject, body); err != nil {
		d.loggerf("level=error msg=notification email failed user_id=%d err=%v", userID, err)
	}
}

func (d *Dispatcher) emailAdmin(ctx context.Context, subject, body string) {
	if d.adminEmail == "" {
		return
	}
	if err := d.mailer.Send(ctx, d.adminEmail, subject, body); err != nil {
		d.loggerf("level=error msg=admin alert email failed err=%v", err)
	}
}

func (d *Dispatcher) NotifyLeadClaimed(ctx context.Context, customerID, painterID, leadID int64) {
	d.create(ctx, customerID, domain.NotifLeadClaimed,
		"A painter purchased your job details",
		"A painter has paid to view your job posting and may submit a quote shortly.",
		map[string]any{"lead_id": leadID, "painter_id": painterID})
}

func (d *Dispatcher) NotifyPaymentConfirmed(ctx context.Context, painterID, leadID int64) {
	d.create(ctx, painterID, domain.NotifPaymentConfirmed,
		"Lead access confirmed",
		"Your payment has been confirmed and the full job details are now available.",
		map[string]any{"lead_id": leadID})
	d.email(ctx, painterID, "Lead access confirmed",
		fmt.Sprintf("Your payment for lead #%d has been confirmed. You can now view the customer's details and submit a bid.", leadID))
}

func (d *Dispatcher) NotifyBidSubmitted(ctx context.Context, customerID, painterID, leadID, bidID int64, amount float64) {
	d.create(ctx, customerID, domain.NotifBidSubmitted,
		"New quote received",
		fmt.Sprintf("You have received a new quote of %.2f on your job posting.", amount),
		map[string]any{"lead_id": leadID, "bid_id": bidID})
	d.email(ctx, painterID, "Quote submitted",
		fmt.Sprintf("Your quote of %.2f on lead #%d has been sent to the customer.", amount, leadID))
	d.emailAdmin(ctx, "New bid on lead",
		fmt.Sprintf("Painter #%d submitted bid #%d (%.2f) on lead #%d.", painterID, bidID, amount, leadID))
}

func (d *Dispatcher) NotifyBidAccepted(ctx context.Context, painterID, leadID, bidID int64) {
	d.create(ctx, painterID, domain.NotifBidAccepted,
		"Your quote was accepted",
		"The customer accepted your quote. You have been assigned this job.",
		map[string]any{"lead_id": leadID, "bid_id": bidID})
	d.email(ctx, painterID, "Quote accepted",
		fmt.Sprintf("Congratulations, your quote on lead #%d was accepted.", leadID))
}

func (d *Dispatcher) NotifyBidRejected(ctx context.Context, painterID, leadID, bidID int64) {
	d.create(ctx, painterID, domain.NotifBidRejected,
		"Quote not selected",
		"The customer chose another quote for this job. You can resubmit with a revised amount.",
		map[string]any{"lead_id": leadID, "bid_id": bidID})
}

func (d *Dispatcher) NotifyLeadAssigned(ctx context.Context, customerID, painterID, leadID int64) {
	d.create(ctx, customerID, domain.NotifLeadAssigned,
		"Painter assigned",
		"Your job has been assigned. You can now message the painter directly.",
		map[string]any{"lead_id": leadID, "painter_id": painterID})
}

func (d *Dispatcher) NotifyLeadCompleted(ctx context.Context, customerID, painterID, leadID int64) {
	d.create(ctx, customerID, domain.NotifLeadCompleted,
		"Job closed",
		"Your job posting has been marked as completed.",
		map[string]any{"lead_id": leadID})
	d.create(ctx, painterID, domain.NotifLeadCompleted,
		"Job closed",
		"The job you were assigned has been marked as completed.",
		map[string]any{"lead_id": leadID})
}

func (d *Dispatcher) NotifyNewMessage(ctx context.Context, recipientID, senderID, leadID int64, preview string) {
	if len(preview) > 80 {
		preview = preview[:80]
	}
	d.create(ctx, recipientID, domain.NotifNewMessage,
		"New message",
		preview,
		map[string]any{"lead_id": leadID, "sender_id": senderID})
}

// Read-side passthroughs used by the notifications handler.

func (d *Dispatcher) GetUserNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := d.notifs.GetByUserID(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	unread, err := d.notifs.CountUnread(ctx, userID)
	if err != nil {
		unread = 0
	}
	return list, unread, nil
}

func (d *Dispatcher) MarkAsRead(ctx context.Context, notificationID, userID int64) error {
	return d.notifs.MarkAsRead(ctx, notificationID, userID)
}

func (d *Dispatcher) MarkAllAsRead(ctx context.Context, userID int64) error {
	return d.notifs.MarkAllAsRead(ctx, userID)
}
