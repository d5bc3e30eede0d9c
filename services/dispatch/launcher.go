package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/emptypb"

	"leadline/models"
)

// ErrGatewayNotConfigured is returned when the voice gateway URL or
// credentials are missing.
var ErrGatewayNotConfigured = errors.New("voice gateway credentials not configured")

const roomPrefix = "call-"

type roomService interface {
	DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error)
}

type agentDispatcher interface {
	CreateDispatch(ctx context.Context, req *livekit.CreateAgentDispatchRequest) (*livekit.AgentDispatch, error)
}

type sipService interface {
	TransferSIPParticipant(ctx context.Context, req *livekit.TransferSIPParticipantRequest) (*emptypb.Empty, error)
}

// Launcher starts outbound calls on the voice gateway, transfers callers
// and tears rooms down.
type Launcher struct {
	AgentName string
	Logger    *zap.Logger

	configured bool
	rooms      roomService
	agents     agentDispatcher
	sip        sipService
}

// NewLauncher builds the gateway clients. url may be given as ws(s) or
// http(s); the SDK picks the API scheme.
func NewLauncher(url, apiKey, apiSecret, agentName string, logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{
		AgentName:  agentName,
		Logger:     logger,
		configured: url != "" && apiKey != "" && apiSecret != "",
		rooms:      lksdk.NewRoomServiceClient(url, apiKey, apiSecret),
		agents:     lksdk.NewAgentDispatchServiceClient(url, apiKey, apiSecret),
		sip:        lksdk.NewSIPClient(url, apiKey, apiSecret),
	}
}

// Dispatch asks the gateway to run the agent for job in a fresh room and
// returns the dispatch id.
func (l *Launcher) Dispatch(ctx context.Context, job models.Job) (string, error) {
	if !l.configured {
		return "", ErrGatewayNotConfigured
	}
	if err := ValidateJob(job); err != nil {
		return "", err
	}
	meta, err := Metadata(job)
	if err != nil {
		return "", err
	}

	room := roomPrefix + uuid.New().String()
	dispatch, err := l.agents.CreateDispatch(ctx, &livekit.CreateAgentDispatchRequest{
		AgentName: l.AgentName,
		Room:      room,
		Metadata:  meta,
	})
	if err != nil {
		return "", fmt.Errorf("dispatch call to %s: %w", job.PhoneNumber, err)
	}

	id := dispatch.GetId()
	if id == "" {
		id = room
	}
	l.Logger.Info("Call dispatched",
		zap.String("phone_number", job.PhoneNumber),
		zap.String("row_id", job.RowID),
		zap.String("room", room),
		zap.String("dispatch_id", id))
	return id, nil
}

// DeleteRoom disconnects every participant of room, ending the call.
func (l *Launcher) DeleteRoom(ctx context.Context, room string) error {
	if !l.configured {
		return ErrGatewayNotConfigured
	}
	if _, err := l.rooms.DeleteRoom(ctx, &livekit.DeleteRoomRequest{Room: room}); err != nil {
		return fmt.Errorf("delete room %s: %w", room, err)
	}
	return nil
}

// TransferParticipant moves the SIP participant identity out of room to the
// phone number or SIP URI to.
func (l *Launcher) TransferParticipant(ctx context.Context, room, identity, to string) error {
	if !l.configured {
		return ErrGatewayNotConfigured
	}
	target := transferTarget(to)
	if target == "" {
		return errors.New("transfer target is empty")
	}
	_, err := l.sip.TransferSIPParticipant(ctx, &livekit.TransferSIPParticipantRequest{
		RoomName:            room,
		ParticipantIdentity: identity,
		TransferTo:          target,
	})
	if err != nil {
		return fmt.Errorf("transfer %s to %s: %w", identity, target, err)
	}
	l.Logger.Info("Call transferred", zap.String("room", room), zap.String("transfer_to", target))
	return nil
}

// transferTarget turns a bare phone number into a tel: URI.
func transferTarget(to string) string {
	to = strings.TrimSpace(to)
	if to == "" || strings.HasPrefix(to, "tel:") || strings.HasPrefix(to, "sip:") {
		return to
	}
	return "tel:" + to
}
