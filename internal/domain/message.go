package domain

const (
	EnteredText = "has entered the room"
	LeftText    = "has left the room"
)

// Message is one history record. The JSON shape is also the wire shape
// pushed to clients.
type Message struct {
	Sender string `json:"name"`
	Body   string `json:"message"`
}

// IsZero reports an absent notice.
func (m Message) IsZero() bool { return m == Message{} }

func Entered(name string) Message { return Message{Sender: name, Body: EnteredText} }

func Left(name string) Message { return Message{Sender: name, Body: LeftText} }
