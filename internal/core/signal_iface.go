package core

// Frame is a raw payload pushed to a client.
type Frame []byte

//go:generate mockgen -source=signal_iface.go -destination=mock_core/signal_mock.go -package=mock_core

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend must not block. A full buffer is reported as an error.
	TrySend(Frame) error
	Close()
}
