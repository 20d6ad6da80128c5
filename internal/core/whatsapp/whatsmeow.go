// internal/core/whatsapp/whatsmeow.go
package whatsapp

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sort"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/binary/proto"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"
)

// WhatsmeowProvider is the self-hosted transport for deployments without a
// Twilio account. Template sends degrade to plain text.
type WhatsmeowProvider struct {
	client   *whatsmeow.Client
	storeURL string
}

func NewWhatsmeowProvider(storeURL string) *WhatsmeowProvider {
	return &WhatsmeowProvider{
		storeURL: storeURL,
	}
}

func (w *WhatsmeowProvider) GetProviderName() string {
	return "Whatsmeow"
}

func (w *WhatsmeowProvider) initStore() (*sqlstore.Container, error) {
	ctx := context.Background()
	dbLog := waLog.Stdout("Database", "ERROR", true)

	if w.storeURL != "" {
		log.Println("🌐 Using PostgreSQL database for WhatsApp store")
		container, err := sqlstore.New(ctx, "postgres", w.storeURL, dbLog)
		if err != nil {
			return nil, fmt.Errorf("failed to init PostgreSQL store: %w", err)
		}
		if err := container.Upgrade(ctx); err != nil {
			return nil, fmt.Errorf("failed to upgrade PostgreSQL schema: %w", err)
		}
		return container, nil
	}

	log.Println("💾 Using local SQLite store (store.db)")
	rawDB, err := sql.Open("sqlite", "file:store.db?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	if _, err = rawDB.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		log.Printf("⚠️ Failed to enable foreign_keys pragma: %v", err)
	}

	container := sqlstore.NewWithDB(rawDB, "sqlite", dbLog)
	if err := container.Upgrade(ctx); err != nil {
		return nil, fmt.Errorf("failed to upgrade SQLite schema: %w", err)
	}

	return container, nil
}

func (w *WhatsmeowProvider) Connect() error {
	container, err := w.initStore()
	if err != nil {
		return fmt.Errorf("failed to init store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get device: %w", err)
	}

	clientLog := waLog.Stdout("Client", "INFO", true)
	w.client = whatsmeow.NewClient(deviceStore, clientLog)

	if w.client.Store.ID == nil {
		qrChan, _ := w.client.GetQRChannel(context.Background())
		if err := w.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}

		for evt := range qrChan {
			if evt.Event == "code" {
				fmt.Println("🔗 Scan this QR in WhatsApp:", evt.Code)
				if err := qrcode.WriteFile(evt.Code, qrcode.Medium, 256, "whatsapp-qr.png"); err != nil {
					log.Printf("Failed to generate QR image: %v", err)
				} else {
					fmt.Println("🖼️ QR code saved to whatsapp-qr.png")
				}
			} else if evt.Event == "success" {
				fmt.Println("✅ Login successful!")
				break
			} else if evt.Event == "timeout" {
				return fmt.Errorf("QR code timeout")
			}
		}
	} else {
		if err := w.client.Connect(); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
		fmt.Println("✅ Reconnected to WhatsApp.")
	}

	return nil
}

func (w *WhatsmeowProvider) Disconnect() {
	if w.client != nil {
		w.client.Disconnect()
		log.Println("🔌 Whatsmeow client disconnected")
	}
}

func (w *WhatsmeowProvider) SendMessage(phoneNumber, message string) (string, error) {
	if w.client == nil {
		return "", fmt.Errorf("client not initialized")
	}

	jid := types.NewJID(cleanPhoneNumber(phoneNumber), "s.whatsapp.net")
	msg := &waProto.Message{
		Conversation: proto.String(message),
	}

	resp, err := w.client.SendMessage(context.Background(), jid, msg)
	if err != nil {
		return "", err
	}
	return string(resp.ID), nil
}

// SendTemplate degrades to plain text; whatsmeow has no content template API.
// Variables are appended in key order so the message still carries them.
func (w *WhatsmeowProvider) SendTemplate(phoneNumber, contentSID string, variables map[string]string) (string, error) {
	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(variables[k])
	}

	body := sb.String()
	if body == "" {
		body = "You have a new chat waiting for you."
	}

	return w.SendMessage(phoneNumber, body)
}

func (w *WhatsmeowProvider) IsConnected() bool {
	return w.client != nil && w.client.IsConnected()
}

// cleanPhoneNumber strips the whatsapp: prefix and any non-digit characters
func cleanPhoneNumber(phone string) string {
	phone = strings.TrimPrefix(strings.TrimSpace(phone), "whatsapp:")

	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return digits.String()
}
