package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/campuschat-server/internal/proto"
)

type authResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

type messageResponse struct {
	ID int64 `json:"id"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("notify_smoke: %v", err)
		os.Exit(1)
	}
}

// run registers two throwaway users, subscribes the receiver to notifications,
// then sends and reads a message while printing every event that arrives.
func run() error {
	base := flag.String("base", "http://localhost:8080", "server base URL")
	text := flag.String("text", "hello from smoke test", "message body to send")
	timeout := flag.Duration("timeout", 10*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	suffix := time.Now().UnixNano()
	sender, err := register(ctx, *base, fmt.Sprintf("smoke_tx_%d", suffix))
	if err != nil {
		return fmt.Errorf("register sender: %w", err)
	}
	receiver, err := register(ctx, *base, fmt.Sprintf("smoke_rx_%d", suffix))
	if err != nil {
		return fmt.Errorf("register receiver: %w", err)
	}

	wsURL := "ws" + strings.TrimPrefix(*base, "http") + "/ws/notifications?token=" + receiver.Token
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	// hello + unread snapshot
	for i := 0; i < 2; i++ {
		if err := readAndPrint(ctx, conn); err != nil {
			return err
		}
	}

	var sent messageResponse
	if err := postJSON(ctx, *base+"/api/messages", sender.Token,
		map[string]any{"receiver_id": receiver.UserID, "body": *text}, &sent); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	if err := readAndPrint(ctx, conn); err != nil {
		return err
	}

	if err := postJSON(ctx, fmt.Sprintf("%s/api/messages/%d/read", *base, sent.ID), receiver.Token, nil, nil); err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return readAndPrint(ctx, conn)
}

func register(ctx context.Context, base, username string) (*authResponse, error) {
	var out authResponse
	err := postJSON(ctx, base+"/api/register", "", map[string]string{
		"username": username,
		"password": "smoke-password",
	}, &out)
	return &out, err
}

func postJSON(ctx context.Context, url, token string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func readAndPrint(ctx context.Context, conn *websocket.Conn) error {
	var outbound proto.Outbound
	if err := wsjson.Read(ctx, conn, &outbound); err != nil {
		return fmt.Errorf("read: %w", err)
	}

	fmt.Printf("Received outbound: type=%s", outbound.Type)
	if outbound.Event != "" {
		fmt.Printf(" event=%s", outbound.Event)
	}
	fmt.Println()

	if outbound.Error != nil {
		fmt.Printf("Error: %s (%s)\n", outbound.Error.Msg, outbound.Error.Code)
	}

	raw, err := json.Marshal(outbound.Data)
	if err != nil {
		return fmt.Errorf("marshal outbound data: %w", err)
	}
	fmt.Printf("Data: %s\n", raw)
	return nil
}
