package core

// Client is a notification subscriber as seen by the core layer.
type Client struct {
	ID     string
	UserID int64
	Events chan *Event
}

// NewClient constructs a client with an initialized event buffer.
func NewClient(id string, userID int64) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		Events: make(chan *Event, 16),
	}
}
