package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/wetechforu/marketingby-chat-be/internal/core/kb"
	"github.com/wetechforu/marketingby-chat-be/internal/core/llm"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/models"
	"github.com/wetechforu/marketingby-chat-be/internal/modules/widget/repositories"
)

type fakeConvRepo struct {
	mu    sync.Mutex
	convs map[uuid.UUID]models.Conversation
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: make(map[uuid.UUID]models.Conversation)}
}

func (r *fakeConvRepo) GetByID(id uuid.UUID) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.convs[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := c
	return &copied, nil
}

func (r *fakeConvRepo) GetActiveByVisitorSession(widgetID uuid.UUID, visitorSessionID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.convs {
		if c.WidgetID == widgetID && c.VisitorSessionID == visitorSessionID && c.Status != models.StatusClosed {
			copied := c
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeConvRepo) GetByWhatsAppSID(messageSID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.convs {
		if c.LastWhatsAppMessageSID == messageSID {
			copied := c
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeConvRepo) ListActiveWhatsAppHandovers() ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Conversation
	for _, c := range r.convs {
		if c.Status == models.StatusHandoverActive && c.HandoverMethod == models.HandoverMethodWhatsApp {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeConvRepo) ListNonClosed() ([]models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Conversation
	for _, c := range r.convs {
		if c.Status != models.StatusClosed {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeConvRepo) Create(conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}
	r.convs[conv.ID] = *conv
	return nil
}

func (r *fakeConvRepo) Save(conv *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs[conv.ID] = *conv
	return nil
}

type fakeMsgRepo struct {
	mu   sync.Mutex
	msgs []models.Message
}

func (r *fakeMsgRepo) Append(msg *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.msgs = append(r.msgs, *msg)
	return nil
}

func (r *fakeMsgRepo) ListByConversation(conversationID uuid.UUID, limit int) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMsgRepo) CountVisitorSince(conversationID uuid.UUID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, m := range r.msgs {
		if m.ConversationID == conversationID && m.Type == models.MessageTypeVisitor && !m.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeMsgRepo) ExistsDedupeKey(conversationID uuid.UUID, dedupeKey string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.msgs {
		if m.ConversationID == conversationID && m.DedupeKey != nil && *m.DedupeKey == dedupeKey {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMsgRepo) byType(conversationID uuid.UUID, msgType string) []models.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Message
	for _, m := range r.msgs {
		if m.ConversationID == conversationID && m.Type == msgType {
			out = append(out, m)
		}
	}
	return out
}

type fakeWidgetRepo struct {
	mu      sync.Mutex
	widgets map[uuid.UUID]*models.WidgetConfig
}

func newFakeWidgetRepo(widgets ...*models.WidgetConfig) *fakeWidgetRepo {
	r := &fakeWidgetRepo{widgets: make(map[uuid.UUID]*models.WidgetConfig)}
	for _, w := range widgets {
		r.widgets[w.ID] = w
	}
	return r
}

func (r *fakeWidgetRepo) GetByKey(widgetKey string) (*models.WidgetConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, w := range r.widgets {
		if w.WidgetKey == widgetKey {
			return w, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeWidgetRepo) GetByID(id uuid.UUID) (*models.WidgetConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.widgets[id]; ok {
		return w, nil
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeWidgetRepo) Invalidate(widgetID uuid.UUID) {}

type fakeHandoverRepo struct {
	mu       sync.Mutex
	requests []models.HandoverRequest
	statuses map[uuid.UUID]string
	errors   map[uuid.UUID]string
}

func newFakeHandoverRepo() *fakeHandoverRepo {
	return &fakeHandoverRepo{
		statuses: make(map[uuid.UUID]string),
		errors:   make(map[uuid.UUID]string),
	}
}

func (r *fakeHandoverRepo) Create(req *models.HandoverRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	r.requests = append(r.requests, *req)
	r.statuses[req.ID] = req.Status
	return nil
}

func (r *fakeHandoverRepo) UpdateStatus(id uuid.UUID, status, errorMessage, messageSID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	if errorMessage != "" {
		r.errors[id] = errorMessage
	}
	return nil
}

func (r *fakeHandoverRepo) ListByConversation(conversationID uuid.UUID) ([]models.HandoverRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.HandoverRequest
	for _, req := range r.requests {
		if req.ConversationID == conversationID {
			out = append(out, req)
		}
	}
	return out, nil
}

type sentWhatsApp struct {
	To         string
	Body       string
	ContentSID string
	Variables  map[string]string
}

type fakeWhatsApp struct {
	mu     sync.Mutex
	sent   []sentWhatsApp
	fail   bool
	nextN  int
	onSend func()
}

func (f *fakeWhatsApp) SendMessage(phoneNumber, message string) (string, error) {
	f.mu.Lock()
	if f.fail {
		f.mu.Unlock()
		return "", fmt.Errorf("whatsapp unavailable")
	}
	f.sent = append(f.sent, sentWhatsApp{To: phoneNumber, Body: message})
	f.nextN++
	sid := fmt.Sprintf("SM%04d", f.nextN)
	onSend := f.onSend
	f.mu.Unlock()
	if onSend != nil {
		onSend()
	}
	return sid, nil
}

func (f *fakeWhatsApp) SendTemplate(phoneNumber, contentSID string, variables map[string]string) (string, error) {
	f.mu.Lock()
	if f.fail {
		f.mu.Unlock()
		return "", fmt.Errorf("whatsapp unavailable")
	}
	f.sent = append(f.sent, sentWhatsApp{To: phoneNumber, ContentSID: contentSID, Variables: variables})
	f.nextN++
	sid := fmt.Sprintf("SM%04d", f.nextN)
	onSend := f.onSend
	f.mu.Unlock()
	if onSend != nil {
		onSend()
	}
	return sid, nil
}

func (f *fakeWhatsApp) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeLLM struct {
	mu       sync.Mutex
	calls    int
	reply    string
	err      error
	onCall   func()
	lastOpts llm.Options
}

func (f *fakeLLM) GenerateResponse(ctx context.Context, systemPrompt, userMessage string, opts llm.Options) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastOpts = opts
	onCall := f.onCall
	reply, err := f.reply, f.err
	f.mu.Unlock()
	if onCall != nil {
		onCall()
	}
	return reply, err
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeLLM) lastOptions() llm.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOpts
}

type fakeKB struct {
	matches []kb.Match
	entries []models.KnowledgeBaseEntry
}

func (f *fakeKB) Search(widgetID uuid.UUID, message string) ([]kb.Match, error) {
	return f.matches, nil
}

func (f *fakeKB) Entries(widgetID uuid.UUID, limit int) ([]models.KnowledgeBaseEntry, error) {
	return f.entries, nil
}

// testEnv wires an engine and sweeper over in-memory fakes
type testEnv struct {
	engine     *Engine
	inactivity *InactivityService
	convRepo   *fakeConvRepo
	msgRepo    *fakeMsgRepo
	widgetRepo *fakeWidgetRepo
	handovers  *fakeHandoverRepo
	whatsapp   *fakeWhatsApp
	llm        *fakeLLM
	kb         *fakeKB
	widget     *models.WidgetConfig
}

func newTestEnv(t *testing.T, widget *models.WidgetConfig) *testEnv {
	t.Helper()

	env := &testEnv{
		convRepo:   newFakeConvRepo(),
		msgRepo:    &fakeMsgRepo{},
		widgetRepo: newFakeWidgetRepo(widget),
		handovers:  newFakeHandoverRepo(),
		whatsapp:   &fakeWhatsApp{},
		llm:        &fakeLLM{reply: "generated answer"},
		kb:         &fakeKB{},
		widget:     widget,
	}

	locks := NewConversationLocks()
	router := NewRouterService(env.kb, 10, 60)
	handover := NewHandoverService(env.handovers, env.whatsapp)
	env.engine = NewEngine(env.convRepo, env.msgRepo, env.widgetRepo, router, handover, env.llm, env.kb, env.whatsapp, locks, 10*time.Minute)
	env.inactivity = NewInactivityService(env.convRepo, env.msgRepo, env.widgetRepo, env.whatsapp, locks,
		5*time.Minute, 12*time.Minute, 15*time.Minute, 3)

	return env
}

func testWidget(t *testing.T, questions []models.IntroQuestion) *models.WidgetConfig {
	t.Helper()

	w := &models.WidgetConfig{
		ID:                    uuid.New(),
		WidgetKey:             "wk-test",
		Name:                  "Lakeside Dental",
		IsActive:              true,
		IntroFlowEnabled:      len(questions) > 0,
		FallbackMessage:       "I'm not sure about that. Want to talk to our team?",
		DefaultHandoverMethod: models.HandoverMethodAgent,
	}

	if len(questions) > 0 {
		raw, err := json.Marshal(questions)
		if err != nil {
			t.Fatalf("marshal intro questions: %v", err)
		}
		w.IntroQuestions = datatypes.JSON(raw)
	}

	return w
}

func setHandoverOptions(t *testing.T, w *models.WidgetConfig, agent, whatsApp bool) {
	t.Helper()
	raw, err := json.Marshal(models.HandoverOptions{Agent: agent, WhatsApp: whatsApp})
	if err != nil {
		t.Fatalf("marshal handover options: %v", err)
	}
	w.HandoverOptionsRaw = datatypes.JSON(raw)
}
