package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog"
)

const (
	// StreamName is the JetStream stream holding outbound routing events.
	StreamName    = "CROSSPAY_ROUTING"
	subjectPrefix = "crosspay.routing"

	publishTimeout = 5 * time.Second
)

// NATSRecorder publishes events to NATS JetStream for downstream consumers.
// Subjects: crosspay.routing.<event_type>.<user_id>
type NATSRecorder struct {
	nc  *nats.Conn
	js  jetstream.JetStream
	log zerolog.Logger
}

// NewNATSRecorder connects to url and makes sure the outbound stream exists.
func NewNATSRecorder(ctx context.Context, url string, log zerolog.Logger) (*NATSRecorder, error) {
	nc, err := nats.Connect(url,
		nats.Name("crosspay"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if err := EnsureStream(ctx, js); err != nil {
		nc.Close()
		return nil, err
	}
	log.Info().Str("url", url).Msg("nats recorder connected")
	return &NATSRecorder{nc: nc, js: js, log: log}, nil
}

// EnsureStream creates the outbound routing stream if needed.
func EnsureStream(ctx context.Context, js jetstream.JetStream) error {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectPrefix + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Replicas:  1,
	})
	if err != nil {
		return fmt.Errorf("ensure stream %s: %w", StreamName, err)
	}
	return nil
}

// Subject builds the subject an event of the given type is published on.
func Subject(eventType, userID string) string {
	if userID == "" {
		userID = "_"
	}
	return fmt.Sprintf("%s.%s.%s", subjectPrefix, eventType, sanitizeToken(userID))
}

// sanitizeToken replaces characters NATS treats as subject syntax.
func sanitizeToken(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch c {
		case '.', '*', '>', ' ', '\t':
			b[i] = '_'
		}
	}
	return string(b)
}

func (r *NATSRecorder) RecordRouting(evt *RoutingEvent) error {
	return r.publish(Subject(string(evt.Type), evt.UserID), evt.ID, evt)
}

func (r *NATSRecorder) RecordSettings(evt *SettingsEvent) error {
	return r.publish(Subject("SETTINGS", evt.UserID), evt.ID, evt)
}

func (r *NATSRecorder) publish(subject, msgID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	// MsgID lets JetStream drop duplicates on retry.
	if _, err := r.js.Publish(ctx, subject, data, jetstream.WithMsgID(msgID)); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (r *NATSRecorder) Close() error {
	r.log.Info().Msg("closing nats recorder")
	if err := r.nc.Drain(); err != nil {
		r.nc.Close()
		return err
	}
	return nil
}
