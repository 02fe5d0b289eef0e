package socket

import (
	"log"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer builds the real-time fanout server. Clients emit a
// "register" event with their user id after connecting and are joined to a
// per-user room; state-change events are then multicast to the recipient
// rooms. The server is constructed at startup and torn down by the caller
// (Serve/Close), never held as a package-level singleton.
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "register", func(c socketio.Conn, userID string) {
		if userID == "" {
			log.Println("register event without user id, ignoring")
			return
		}
		c.Join(userRoom(userID))
		log.Printf("socket %s registered as user %s", c.ID(), userID)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("socket disconnected:", c.ID(), reason)
	})

	return server
}

// Broadcaster adapts the socket.io server to the notifier the services
// emit through. Delivery is best effort: recipients without a connected
// socket simply miss the push and catch up on their next fetch.
type Broadcaster struct {
	Server *socketio.Server
}

func (b *Broadcaster) Notify(userIDs []string, event string, payload interface{}) {
	for _, userID := range userIDs {
		b.Server.BroadcastToRoom("/", userRoom(userID), event, payload)
	}
}

func userRoom(userID string) string {
	return "user:" + userID
}
