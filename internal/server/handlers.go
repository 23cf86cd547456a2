// Package server exposes the HTTP surface: the WebSocket upgrade endpoint,
// health and stats probes, and the built-in chat page.
package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// WebSocketHandler returns the handler for WebSocket upgrade requests. It
// validates that the request uses the GET method, upgrades the HTTP
// connection, and registers the new client with the hub, which launches the
// pump goroutines.
func WebSocketHandler(hub *Hub) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(hub.cfg.Origins()),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Warn("websocket upgrade failed", "addr", r.RemoteAddr, "error", err)
			return
		}

		client := NewClient(conn, hub, r.RemoteAddr)
		if !hub.Register(client) {
			_ = conn.Close()
		}
	}
}

// HealthHandler provides a simple health check endpoint that reports server
// liveness as plain text.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprint(w, "ok")
}

// StatsHandler reports the current client count and per-room membership as JSON.
func StatsHandler(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.Stats()); err != nil {
			slog.Warn("failed to encode stats response", "error", err)
		}
	}
}

// HomeHandler serves the built-in chat page. It provides a simple web
// interface to pick a username, join and switch rooms, send messages, and
// watch membership change in real time.
func HomeHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := fmt.Fprint(w, chatPageHTML); err != nil {
		slog.Warn("failed to write chat page", "error", err)
	}
}

const chatPageHTML = `<!DOCTYPE html>
<html>
<head>
    <title>roomchat</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        #layout { display: flex; gap: 10px; }
        #sidebar { width: 180px; }
        #sidebar h3 { margin: 10px 0 5px 0; font-size: 14px; }
        #rooms div { cursor: pointer; padding: 2px 4px; }
        #rooms div:hover { background-color: #eef; }
        #rooms div.active { font-weight: bold; }
        #users div { padding: 2px 4px; color: #333; }
        #messages {
            border: 1px solid #ccc;
            height: 300px;
            flex-grow: 1;
            padding: 10px;
            overflow-y: scroll;
            background-color: #f9f9f9;
        }
        input[type="text"] { padding: 5px; margin-right: 10px; }
        #messageInput { width: 300px; }
        button {
            padding: 5px 15px;
            background-color: #007cba;
            color: white;
            border: none;
            cursor: pointer;
        }
        button:hover { background-color: #005a87; }
        .status { margin: 10px 0; padding: 5px; border-radius: 3px; }
        .connected { background-color: #d4edda; color: #155724; }
        .disconnected { background-color: #f8d7da; color: #721c24; }
        .system { color: gray; font-style: italic; margin: 5px 0; }
        .chat { margin: 5px 0; }
        .chat strong { color: #007cba; }
    </style>
</head>
<body>
    <h1>roomchat</h1>

    <div id="status" class="status disconnected">Disconnected</div>

    <div>
        <input type="text" id="usernameInput" placeholder="Username">
        <input type="text" id="roomInput" placeholder="Room (default: general)">
        <button onclick="join()">Join</button>
    </div>

    <div id="layout">
        <div id="sidebar">
            <h3>Rooms</h3>
            <div id="rooms"></div>
            <h3>Users</h3>
            <div id="users"></div>
        </div>
        <div id="messages"></div>
    </div>

    <div style="margin-top: 10px;">
        <input type="text" id="messageInput" placeholder="Type a message..." disabled>
        <button id="sendButton" onclick="sendMessage()" disabled>Send</button>
    </div>

    <script>
        let ws = null;
        let username = '';
        let currentRoom = '';
        const messagesDiv = document.getElementById('messages');
        const roomsDiv = document.getElementById('rooms');
        const usersDiv = document.getElementById('users');
        const messageInput = document.getElementById('messageInput');
        const sendButton = document.getElementById('sendButton');
        const statusDiv = document.getElementById('status');

        function updateStatus(connected) {
            statusDiv.textContent = connected ? 'Connected' : 'Disconnected';
            statusDiv.className = 'status ' + (connected ? 'connected' : 'disconnected');
            messageInput.disabled = !connected;
            sendButton.disabled = !connected;
        }

        function addSystem(text) {
            const el = document.createElement('div');
            el.className = 'system';
            el.textContent = text;
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function addChat(from, text) {
            const el = document.createElement('div');
            el.className = 'chat';
            const sender = document.createElement('strong');
            sender.textContent = from + ': ';
            el.appendChild(sender);
            el.appendChild(document.createTextNode(text));
            messagesDiv.appendChild(el);
            messagesDiv.scrollTop = messagesDiv.scrollHeight;
        }

        function renderRooms(rooms) {
            roomsDiv.innerHTML = '';
            rooms.forEach(function(name) {
                const el = document.createElement('div');
                el.textContent = name;
                if (name === currentRoom) {
                    el.className = 'active';
                }
                el.onclick = function() { switchRoom(name); };
                roomsDiv.appendChild(el);
            });
        }

        function renderUsers(users) {
            usersDiv.innerHTML = '';
            users.forEach(function(name) {
                const el = document.createElement('div');
                el.textContent = name;
                usersDiv.appendChild(el);
            });
        }

        function handleEvent(ev) {
            switch (ev.type) {
            case 'init':
                currentRoom = ev.room;
                messagesDiv.innerHTML = '';
                renderRooms(ev.rooms);
                renderUsers(ev.users);
                ev.messages.forEach(function(m) { addChat(m.username, m.text); });
                addSystem('joined ' + ev.room);
                break;
            case 'rooms':
                renderRooms(ev.rooms);
                break;
            case 'users':
                renderUsers(ev.users);
                break;
            case 'message':
                addChat(ev.message.username, ev.message.text);
                break;
            case 'system':
                addSystem(ev.message);
                break;
            }
        }

        function connect(onOpen) {
            const proto = location.protocol === 'https:' ? 'wss' : 'ws';
            ws = new WebSocket(proto + '://' + location.host + '/ws');
            ws.onopen = function() {
                updateStatus(true);
                onOpen();
            };
            ws.onmessage = function(e) {
                handleEvent(JSON.parse(e.data));
            };
            ws.onclose = function() {
                updateStatus(false);
                addSystem('connection closed');
                ws = null;
            };
        }

        function join() {
            username = document.getElementById('usernameInput').value.trim();
            const room = document.getElementById('roomInput').value.trim();
            if (!username) {
                addSystem('pick a username first');
                return;
            }
            if (ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({type: 'join', username: username, room: room}));
            } else {
                connect(function() {
                    ws.send(JSON.stringify({type: 'join', username: username, room: room}));
                });
            }
        }

        function switchRoom(name) {
            if (ws && ws.readyState === WebSocket.OPEN && name !== currentRoom) {
                ws.send(JSON.stringify({type: 'join', username: username, room: name}));
            }
        }

        function sendMessage() {
            const text = messageInput.value.trim();
            if (text && ws && ws.readyState === WebSocket.OPEN) {
                ws.send(JSON.stringify({type: 'message', room: currentRoom, username: username, text: text}));
                messageInput.value = '';
            }
        }

        messageInput.addEventListener('keypress', function(e) {
            if (e.key === 'Enter') {
                sendMessage();
            }
        });
    </script>
</body>
</html>`
