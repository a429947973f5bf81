package audio

// Item is one synthesized playback entry in a session's audio queue.
// IDs increase monotonically within a session; played state is tracked
// client-side only.
type Item struct {
	ID       int64  `json:"id"`
	Listener string `json:"listener"`
	AudioURL string `json:"audioUrl"`
	Message  string `json:"message"`
	From     string `json:"from"`
}

// QueueResponse is the poll result. LastID echoes the request cursor when
// nothing new arrived.
type QueueResponse struct {
	Queue  []Item `json:"queue"`
	LastID int64  `json:"lastId"`
}
