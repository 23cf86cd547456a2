package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `env:"CHAT_SERVER_URL,default=ws://localhost:8080/ws"`
	Username  string `env:"CHAT_USERNAME"`
	Room      string `env:"CHAT_ROOM,default=general"`
}

// event mirrors the server's wire format for both directions. The message
// field is an object for chat messages and a string for system notices, so
// it stays raw until the type is known.
type event struct {
	Type     string          `json:"type"`
	Room     string          `json:"room,omitempty"`
	Rooms    []string        `json:"rooms,omitempty"`
	Users    []string        `json:"users,omitempty"`
	Username string          `json:"username,omitempty"`
	Text     string          `json:"text,omitempty"`
	Messages []chatMessage   `json:"messages,omitempty"`
	Message  json.RawMessage `json:"message,omitempty"`
}

type chatMessage struct {
	Username string `json:"username"`
	Text     string `json:"text"`
}

var (
	noticeStyle = color.New(color.FgYellow)
	senderStyle = color.New(color.FgCyan, color.OpBold)
	roomStyle   = color.New(color.FgGreen, color.OpBold)
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
		os.Exit(1)
	}
}

// run loads the configuration, connects, joins the configured room, and then
// splits into a receive goroutine and a stdin loop until /quit or EOF.
func run() error {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	stdin := bufio.NewScanner(os.Stdin)
	for strings.TrimSpace(cfg.Username) == "" {
		fmt.Print("username: ")
		if !stdin.Scan() {
			return stdin.Err()
		}
		cfg.Username = strings.TrimSpace(stdin.Text())
	}

	conn, _, err := websocket.DefaultDialer.Dial(cfg.ServerURL, nil)
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", cfg.ServerURL, err)
	}
	defer conn.Close()

	currentRoom := cfg.Room
	if err := sendEvent(conn, event{Type: "join", Username: cfg.Username, Room: currentRoom}); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		receiveLoop(conn)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		for stdin.Scan() {
			lines <- stdin.Text()
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	fmt.Println(noticeStyle.Render("connected: type a message, /join <room> to switch, /quit to leave"))

	for {
		select {
		case <-done:
			// The server went away; receiveLoop already said why.
			return nil
		case <-interrupt:
			return closeGracefully(conn, done)
		case raw, ok := <-lines:
			if !ok {
				return closeGracefully(conn, done)
			}
			line := strings.TrimSpace(raw)
			switch {
			case line == "":
			case line == "/quit":
				return closeGracefully(conn, done)
			case strings.HasPrefix(line, "/join "):
				roomName := strings.TrimSpace(strings.TrimPrefix(line, "/join "))
				if roomName == "" {
					continue
				}
				if err := sendEvent(conn, event{Type: "join", Username: cfg.Username, Room: roomName}); err != nil {
					return err
				}
				currentRoom = roomName
			default:
				if err := sendEvent(conn, event{Type: "message", Room: currentRoom, Username: cfg.Username, Text: line}); err != nil {
					return err
				}
			}
		}
	}
}

// closeGracefully tells the server we are leaving and waits briefly for the
// close handshake to complete.
func closeGracefully(conn *websocket.Conn, done <-chan struct{}) error {
	if err := conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")); err != nil {
		return nil
	}
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	return nil
}

func sendEvent(conn *websocket.Conn, ev event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", ev.Type, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("sending %s event: %w", ev.Type, err)
	}
	return nil
}

// receiveLoop renders server events until the connection closes.
func receiveLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				fmt.Println(noticeStyle.Render("connection closed: " + err.Error()))
			}
			return
		}
		var ev event
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		render(ev)
	}
}

// render prints one server event in a terminal-friendly form.
func render(ev event) {
	switch ev.Type {
	case "init":
		fmt.Println(roomStyle.Render("=== "+ev.Room+" ===") + "  rooms: " + strings.Join(ev.Rooms, ", "))
		fmt.Println(noticeStyle.Render("users: " + strings.Join(ev.Users, ", ")))
		for _, msg := range ev.Messages {
			printChat(msg)
		}
	case "rooms":
		fmt.Println(noticeStyle.Render("rooms: " + strings.Join(ev.Rooms, ", ")))
	case "users":
		fmt.Println(noticeStyle.Render("users: " + strings.Join(ev.Users, ", ")))
	case "message":
		var msg chatMessage
		if err := json.Unmarshal(ev.Message, &msg); err != nil {
			return
		}
		printChat(msg)
	case "system":
		var notice string
		if err := json.Unmarshal(ev.Message, &notice); err != nil {
			return
		}
		fmt.Println(noticeStyle.Render("* " + notice))
	}
}

func printChat(msg chatMessage) {
	fmt.Printf("%s %s\n", senderStyle.Render(msg.Username+":"), msg.Text)
}
