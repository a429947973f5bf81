package babel

import "time"

// Response is one entry in the append-only Babel story log.
type Response struct {
	Name      string    `json:"name" bson:"name"`
	Language  string    `json:"language" bson:"language"`
	Response  string    `json:"response" bson:"response"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}
