package collab

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // OK for demo; restrict in production
	},
}

// WSHandler upgrades the connection and pumps inbound events into the
// collaboration server until the client goes away.
func WSHandler(srv *Server, hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}

		client := hub.Add(ws)
		srv.Connect(client)

		ctx := c.Request.Context()
		for {
			_, payload, err := ws.ReadMessage()
			if err != nil {
				break
			}

			var env Envelope
			if err := json.Unmarshal(payload, &env); err != nil {
				log.Printf("[ws] bad frame from %s: %v", client.ID, err)
				continue
			}
			srv.Dispatch(ctx, client, env)
		}

		hub.Remove(client)
		srv.Disconnect(client)
	}
}
