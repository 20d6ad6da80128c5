package services

// EventType tags the inbound triggers the engine serializes per
// conversation; the tags show up in conflict and audit log lines.
type EventType string

const (
	EventVisitorMessage  EventType = "visitor_message"
	EventAgentMessage    EventType = "agent_message"
	EventWhatsAppInbound EventType = "whatsapp_inbound"
	EventSweepTick       EventType = "sweep_tick"
)
