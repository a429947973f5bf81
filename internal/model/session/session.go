package session

import "time"

// Config is the per-session configuration blob shared with both clients.
type Config struct {
	UserA       string `json:"userA" bson:"userA"`
	UserB       string `json:"userB" bson:"userB"`
	LangA       string `json:"langA" bson:"langA"`
	LangB       string `json:"langB" bson:"langB"`
	LangCodeA   string `json:"langCodeA" bson:"langCodeA"`
	LangCodeB   string `json:"langCodeB" bson:"langCodeB"`
	Audiate     bool   `json:"audiate,omitempty" bson:"audiate"`
	VoiceA      string `json:"voiceA,omitempty" bson:"voiceA"`
	VoiceB      string `json:"voiceB,omitempty" bson:"voiceB"`
	UserBJoined bool   `json:"userBJoined" bson:"userBJoined"`
}

// Record is the stored session entity. Participant tokens are issued at
// creation time and never leave the server except through the create/join
// responses for the matching participant.
type Record struct {
	Code      string    `bson:"code"`
	Config    Config    `bson:"config"`
	TokenA    string    `bson:"tokenA"`
	TokenB    string    `bson:"tokenB"`
	CreatedAt time.Time `bson:"createdAt"`
}
