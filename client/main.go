// Command client is an interactive terminal client for the phrase game:
// it joins a room over websocket and turns stdin commands into protocol
// envelopes.
package main

import (
	"bufio"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func send(c *websocket.Conn, msgType string, payload any) error {
	data, err := json.Marshal(envelope{Type: msgType, Payload: payload})
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, data)
}

func main() {
	room := "sala1"
	name := "Jogador"
	if len(os.Args) > 1 {
		room = os.Args[1]
	}
	if len(os.Args) > 2 {
		name = os.Args[2]
	}

	u := url.URL{
		Scheme: "ws",
		Host:   "localhost:8080",
		Path:   "/api/ws/game/" + room + "/" + name,
	}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			var env envelope
			if err := json.Unmarshal(message, &env); err != nil {
				log.Printf("<- RECV (raw): %s", message)
				continue
			}
			payload, _ := json.Marshal(env.Payload)
			log.Printf("<- RECV %s: %s", env.Type, payload)
		}
	}()

	log.Println("Commands: start | spin | end | guess <letter> | solve <phrase>")

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-done:
			return
		default:
		}

		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		text = strings.TrimSpace(text)

		var sendErr error
		switch {
		case text == "start":
			sendErr = send(c, "START_GAME", nil)
		case text == "spin":
			sendErr = send(c, "SPIN_START", nil)
		case text == "end":
			sendErr = send(c, "SPIN_END", nil)
		case strings.HasPrefix(text, "guess "):
			sendErr = send(c, "GUESS", strings.TrimSpace(strings.TrimPrefix(text, "guess ")))
		case strings.HasPrefix(text, "solve "):
			sendErr = send(c, "SOLVE", strings.TrimSpace(strings.TrimPrefix(text, "solve ")))
		case text == "":
			continue
		default:
			log.Printf("Unknown command %q", text)
			continue
		}
		if sendErr != nil {
			log.Println("Write error:", sendErr)
			return
		}
		log.Printf("-> SENT: %s", text)
	}
}
