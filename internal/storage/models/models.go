package models

import "time"

// TurnRecord is the persisted log of one completed chat exchange.
// Session state itself stays in memory; this table is an audit and
// analytics trail, not a session store.
type TurnRecord struct {
	ID            string
	SessionID     string
	UserText      string
	AssistantText string
	MentionedIDs  []string
	Format        string
	EntityCount   int
	LatencyMS     int
	CreatedAt     time.Time
}

type Feedback struct {
	ID        int
	TurnID    string
	Helpful   bool
	Comment   string
	CreatedAt time.Time
}
