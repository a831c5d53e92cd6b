package server

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-bank/internal/bank"
	"github.com/gokatarajesh/quiz-bank/pkg/http/ws"
)

// BankFeedHandler upgrades GET /ws/bank. The client receives the current count right
// away and then one bank_count message per bank write.
func BankFeedHandler(hub *ws.Hub, repo *bank.Repository, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := WSUpgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := ws.NewConnection(conn, logger)
		id := hub.Register(c)
		go c.WritePump()

		if n, err := repo.Count(r.Context()); err == nil {
			if msg, err := ws.NewMessage(ws.TypeBankCount, ws.BankCountPayload{Count: n}); err == nil {
				_ = hub.SendTo(id, msg)
			}
		} else {
			logger.Warn().Err(err).Msg("initial bank count failed")
		}

		c.ReadPump(func(msg ws.Message) error {
			switch msg.Type {
			case ws.TypePing:
				return c.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})
			default:
				reply, err := ws.NewMessage(ws.TypeError, ws.ErrorPayload{Code: "unknown_message_type", Message: "unsupported message type " + msg.Type})
				if err != nil {
					return err
				}
				reply.RequestID = msg.RequestID
				return c.Send(reply)
			}
		})
		hub.Unregister(id)
	}
}
