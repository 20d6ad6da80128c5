package services

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/repositories"
)

// SweepResult summarizes one inactivity sweep run
type SweepResult struct {
	Scanned       int `json:"scanned"`
	Closed        int `json:"closed"`
	RemindersSent int `json:"reminders_sent"`
}

// InactivityService scans non-closed conversations on a fixed interval,
// issues extension reminders and offers, and closes sessions that exceed
// the grace window. It shares the per-conversation locks with the engine.
type InactivityService struct {
	convRepo   repositories.ConversationRepo
	msgRepo    repositories.MessageRepo
	widgetRepo repositories.WidgetRepo
	whatsapp   WhatsAppSender
	locks      *ConversationLocks

	warnThreshold  time.Duration
	graceThreshold time.Duration
	closeThreshold time.Duration
	maxReminders   int

	inFlight atomic.Bool
	now      func() time.Time
}

func NewInactivityService(
	convRepo repositories.ConversationRepo,
	msgRepo repositories.MessageRepo,
	widgetRepo repositories.WidgetRepo,
	sender WhatsAppSender,
	locks *ConversationLocks,
	warnThreshold, graceThreshold, closeThreshold time.Duration,
	maxReminders int,
) *InactivityService {
	return &InactivityService{
		convRepo:       convRepo,
		msgRepo:        msgRepo,
		widgetRepo:     widgetRepo,
		whatsapp:       sender,
		locks:          locks,
		warnThreshold:  warnThreshold,
		graceThreshold: graceThreshold,
		closeThreshold: closeThreshold,
		maxReminders:   maxReminders,
		now:            time.Now,
	}
}

// outboundNudge is a WhatsApp send planned under the conversation lock and
// executed after release, so a slow provider never stalls the sweeper.
type outboundNudge struct {
	to    string
	body  string
	stage int
	at    time.Time
}

// sweepOutcome is what one locked pass over a conversation decided
type sweepOutcome struct {
	closed    bool
	reminders int

	agentReminder *outboundNudge
	closeNotice   *outboundNudge
}

// RunSweep processes every non-closed conversation once. Overlapping runs
// are skipped; the per-conversation lock still serializes against inbound
// events.
func (s *InactivityService) RunSweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult

	if !s.inFlight.CompareAndSwap(false, true) {
		log.Println("⏭️ Sweep already running, skipping this tick")
		return result, nil
	}
	defer s.inFlight.Store(false)

	convs, err := s.convRepo.ListNonClosed()
	if err != nil {
		return result, err
	}

	for i := range convs {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		closed, reminders := s.sweepOne(convs[i].ID)

		result.Scanned++
		if closed {
			result.Closed++
		}
		result.RemindersSent += reminders
	}

	if result.Closed > 0 || result.RemindersSent > 0 {
		log.Printf("🧹 Sweep done: %d scanned, %d closed, %d reminders", result.Scanned, result.Closed, result.RemindersSent)
	}

	return result, nil
}

// sweepOne evaluates one conversation. State changes happen under the lock;
// the WhatsApp sends the pass planned run after release, and the agent-side
// reminder counter is only advanced once the send actually went out.
func (s *InactivityService) sweepOne(id uuid.UUID) (closed bool, reminders int) {
	s.locks.Lock(id)
	out := s.sweepPhaseLocked(id)
	s.locks.Unlock(id)

	if out.closeNotice != nil {
		if _, err := s.whatsapp.SendMessage(out.closeNotice.to, out.closeNotice.body); err != nil {
			log.Printf("❌ %v", &ProviderError{Op: "close notification", Err: err})
		}
	}

	reminders = out.reminders
	if out.agentReminder != nil {
		if _, err := s.whatsapp.SendMessage(out.agentReminder.to, out.agentReminder.body); err != nil {
			log.Printf("❌ %v", &ProviderError{Op: "agent inactivity reminder", Err: err})
		} else {
			s.locks.Lock(id)
			if s.recordAgentReminderLocked(id, out.agentReminder.stage, out.agentReminder.at) {
				reminders++
			}
			s.locks.Unlock(id)
		}
	}

	return out.closed, reminders
}

func (s *InactivityService) sweepPhaseLocked(id uuid.UUID) sweepOutcome {
	var out sweepOutcome

	conv, err := s.convRepo.GetByID(id)
	if err != nil {
		log.Printf("⚠️ Sweep load failed for %s: %v", id, err)
		return out
	}
	if conv.IsClosed() {
		log.Printf("⏭️ %s on closed conversation %s, skipping", EventSweepTick, conv.ID)
		return out
	}

	widget, err := s.widgetRepo.GetByID(conv.WidgetID)
	if err != nil {
		log.Printf("⚠️ Sweep widget load failed for conversation %s: %v", conv.ID, err)
		return out
	}

	now := s.now()
	idleFor := now.Sub(s.effectiveLastActivity(conv))

	switch {
	case idleFor >= s.closeThreshold:
		if s.closeConversation(conv, now) {
			out.closed = true
			if conv.HandoverMethod == models.HandoverMethodWhatsApp && widget.HandoverWhatsAppNumber != "" {
				out.closeNotice = &outboundNudge{
					to:   widget.HandoverWhatsAppNumber,
					body: fmt.Sprintf("The chat with %s was closed due to inactivity.", visitorLabel(conv)),
				}
			}
		}
		return out

	case idleFor >= s.graceThreshold:
		s.remindLocked(conv, widget, now, 2, &out)

	case idleFor >= s.warnThreshold:
		s.remindLocked(conv, widget, now, 1, &out)
	}

	if out.reminders > 0 {
		if err := s.convRepo.Save(conv); err != nil {
			log.Printf("⚠️ Sweep save failed for conversation %s: %v", conv.ID, err)
		}
	}

	return out
}

// effectiveLastActivity is the latest of visitor activity, agent activity,
// and any granted extension. A past extension no longer extends anything;
// it falls out of the max naturally (lazy invalidation).
func (s *InactivityService) effectiveLastActivity(conv *models.Conversation) time.Time {
	last := conv.CreatedAt
	for _, t := range []*time.Time{conv.LastVisitorActivityAt, conv.LastAgentActivityAt, conv.ExtensionGrantedUntil} {
		if t != nil && t.After(last) {
			last = *t
		}
	}
	return last
}

// remindLocked handles the reminder for the current stage. Stage 1 (warn) is
// a nudge, stage 2 (grace) offers an extension. Counters bound the ladder; a
// counter already at the stage level means this threshold crossing was
// handled, so re-running the sweep does not re-fire. The visitor side lands
// in the transcript immediately; the agent side becomes a planned send whose
// counter advances only after delivery.
func (s *InactivityService) remindLocked(conv *models.Conversation, widget *models.WidgetConfig, now time.Time, stage int, out *sweepOutcome) {
	agentSide := conv.Status == models.StatusHandoverActive

	var count int
	if agentSide {
		count = conv.ExtensionRemindersCount
	} else {
		count = conv.VisitorExtensionRemindersCount
	}

	if count >= stage || count >= s.maxReminders {
		return
	}

	body := s.reminderBody(stage)

	if agentSide {
		if widget.HandoverWhatsAppNumber == "" {
			return
		}
		out.agentReminder = &outboundNudge{
			to:    widget.HandoverWhatsAppNumber,
			body:  body,
			stage: stage,
			at:    now,
		}
		return
	}

	msg := models.Message{
		ConversationID: conv.ID,
		Type:           models.MessageTypeSystem,
		Body:           body,
	}
	if err := s.msgRepo.Append(&msg); err != nil {
		log.Printf("⚠️ Failed to append reminder for %s: %v", conv.ID, err)
		return
	}
	conv.MessageCount++
	conv.VisitorExtensionRemindersCount = count + 1
	conv.LastVisitorReminderAt = &now
	out.reminders++
}

// recordAgentReminderLocked advances the agent-side counter after a
// delivered reminder. The conversation is re-validated: one that closed or
// already settled this stage while the send was in flight stays untouched.
func (s *InactivityService) recordAgentReminderLocked(id uuid.UUID, stage int, at time.Time) bool {
	conv, err := s.convRepo.GetByID(id)
	if err != nil {
		log.Printf("⚠️ Reminder record load failed for %s: %v", id, err)
		return false
	}
	if conv.IsClosed() {
		return false
	}

	count := conv.ExtensionRemindersCount
	if count >= stage || count >= s.maxReminders {
		return false
	}

	conv.ExtensionRemindersCount = count + 1
	conv.LastAgentReminderAt = &at

	if err := s.convRepo.Save(conv); err != nil {
		log.Printf("⚠️ Reminder record save failed for %s: %v", conv.ID, err)
		return false
	}
	return true
}

func (s *InactivityService) reminderBody(stage int) string {
	if stage >= 2 {
		return fmt.Sprintf("This chat will close soon due to inactivity. Reply \"yes\" with the number of minutes to keep it open, e.g. \"yes %d\".", 10)
	}
	return "Are you still there? This chat will close if there's no activity for a while."
}

// closeConversation ends an expired session exactly once
func (s *InactivityService) closeConversation(conv *models.Conversation, now time.Time) bool {
	conv.Status = models.StatusClosed
	conv.CloseReason = models.CloseReasonInactivity
	conv.EndedAt = &now

	closing := models.Message{
		ConversationID: conv.ID,
		Type:           models.MessageTypeSystem,
		Body:           "This chat was closed due to inactivity. Feel free to start a new one anytime.",
	}
	if err := s.msgRepo.Append(&closing); err != nil {
		log.Printf("⚠️ Failed to append closing message for %s: %v", conv.ID, err)
	} else {
		conv.MessageCount++
	}

	if err := s.convRepo.Save(conv); err != nil {
		log.Printf("⚠️ Sweep close save failed for conversation %s: %v", conv.ID, err)
		return false
	}

	log.Printf("🔒 Conversation %s closed due to inactivity", conv.ID)
	return true
}

func visitorLabel(conv *models.Conversation) string {
	if conv.VisitorName != "" {
		return conv.VisitorName
	}
	return "a website visitor"
}
