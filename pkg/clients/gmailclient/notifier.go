package gmailclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

type emailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Notifier emails volunteers about accepted join requests and due goal reminders
type Notifier struct {
	sender emailSender
}

func NewNotifier(client *Client) *Notifier {
	return &Notifier{sender: client}
}

func (n *Notifier) NotifyAccepted(ctx context.Context, notice model.AcceptanceNotice) error {
	subject, body := acceptanceEmail(notice)
	if err := n.sender.SendEmail(ctx, notice.VolunteerEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send acceptance email for %s: %w", notice.JoinEventID, err)
	}
	return nil
}

func (n *Notifier) NotifyGoalReminder(ctx context.Context, notice model.GoalReminderNotice) error {
	subject, body := goalReminderEmail(notice)
	if err := n.sender.SendEmail(ctx, notice.VolunteerEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send goal reminder for %s: %w", notice.GoalID, err)
	}
	return nil
}

func acceptanceEmail(notice model.AcceptanceNotice) (string, string) {
	subject := fmt.Sprintf("You're confirmed for %s on %s", notice.Category.Title(), notice.EventDate)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi,\n\nYour request to join the %s event on %s has been accepted.\n",
		notice.Category.Title(), notice.EventDate)
	if notice.NextEligibleDate != nil {
		fmt.Fprintf(&b, "\nAfter this donation you will next be eligible to give blood on %s.\n",
			notice.NextEligibleDate.Format("Monday 2 January 2006"))
	}
	b.WriteString("\nThank you for volunteering!\n")

	return subject, b.String()
}

func goalReminderEmail(notice model.GoalReminderNotice) (string, string) {
	subject := fmt.Sprintf("Your %s goal for %s", notice.Category.Title(), notice.Month)

	var b strings.Builder
	fmt.Fprintf(&b, "Hi,\n\nYou set a goal of %.1f hours of %s in %s.\n",
		notice.TargetHours, notice.Category.Title(), notice.Month)
	if notice.AchievedHours >= notice.TargetHours {
		fmt.Fprintf(&b, "You've already logged %.1f hours - goal met, well done!\n", notice.AchievedHours)
	} else {
		fmt.Fprintf(&b, "So far you've logged %.1f hours, %.1f to go.\n",
			notice.AchievedHours, notice.TargetHours-notice.AchievedHours)
	}

	return subject, b.String()
}
