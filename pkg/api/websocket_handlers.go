package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"syscall"

	"github.com/gofiber/contrib/websocket"

	customlog "github.com/SofaDefrost/prefab.MobileTrunk/pkg/log"
	"github.com/SofaDefrost/prefab.MobileTrunk/pkg/messages"
)

// TwistSender validates a command and routes it inbound.
type TwistSender interface {
	SendTwist(twist messages.Twist) (string, error)
}

// ControlWebSocketHandler handles incoming WebSocket messages for robot control.
func ControlWebSocketHandler(conn *websocket.Conn, logger customlog.Logger, sender TwistSender) {
	logger.Infof("Control WebSocket connected: %s", conn.RemoteAddr())
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("Control WS read error: %v", err)
			} else if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
				logger.Infof("Control WS connection closed: %v", err)
			} else {
				logger.Infof("Control WS connection closed normally.")
			}
			break
		}

		if mt != websocket.TextMessage {
			logger.Infof("Ignoring non-text Control WS message type: %d", mt)
			continue
		}

		reply := handleControlMessage(msg, sender, logger)
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warnf("Control WS reply failed: %v", err)
			break
		}
	}
	logger.Infof("Control WebSocket disconnected: %s", conn.RemoteAddr())
}

// handleControlMessage decodes one Twist JSON frame and forwards it.
func handleControlMessage(msg []byte, sender TwistSender, logger customlog.Logger) ControlReply {
	var twistMsg TwistMsg
	if err := json.Unmarshal(msg, &twistMsg); err != nil {
		logger.Warnf("Failed to unmarshal Twist command from WS: %v. Message: %s", err, string(msg))
		return ControlReply{Status: "rejected", Error: fmt.Sprintf("malformed twist: %v", err)}
	}

	twist := twistMsg.ToTwist()
	logger.Debugf("Received Twist command via WS: LinearX=%.2f, AngularZ=%.2f", twist.Linear.X, twist.Angular.Z)

	topic, err := sender.SendTwist(twist)
	if err != nil {
		logger.Warnf("Rejected WS Twist command: %v", err)
		return ControlReply{Status: "rejected", Error: err.Error()}
	}
	return ControlReply{Status: "accepted", Topic: topic}
}
