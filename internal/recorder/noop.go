package recorder

// NoopRecorder is a no-op implementation used when nothing is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRouting(_ *RoutingEvent) error   { return nil }
func (n *NoopRecorder) RecordSettings(_ *SettingsEvent) error { return nil }
func (n *NoopRecorder) Close() error                          { return nil }
