package twinchat

import (
	"strconv"
	"strings"
	"time"
)

// Sender identifies who authored a chat message.
type Sender string

const (
	SenderTwin Sender = "twin"
	SenderUser Sender = "user"
)

// MessageType distinguishes plain text from mission proposals.
type MessageType string

const (
	MessageText    MessageType = "text"
	MessageMission MessageType = "mission"
)

// Message is a single chat bubble.
type Message struct {
	Sender    Sender      `json:"sender"`
	Text      string      `json:"text,omitempty"`
	Type      MessageType `json:"type"`
	Mission   *Mission    `json:"mission,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Mission is a behavior challenge the twin can propose.
type Mission struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Benefit     string `json:"benefit"`
	Duration    string `json:"duration"`
	Difficulty  string `json:"difficulty"`
}

// Days parses the leading day count from Duration ("7 days" -> 7).
func (m Mission) Days() int {
	fields := strings.Fields(m.Duration)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ActiveMission is a mission the user accepted.
type ActiveMission struct {
	Mission
	Progress   int       `json:"progress"`
	TotalDays  int       `json:"totalDays"`
	AcceptedAt time.Time `json:"acceptedAt"`
}

// Reply bundles the twin's answer to one user message.
type Reply struct {
	Messages []Message `json:"messages"`
}

// SendRequest is the chat payload.
type SendRequest struct {
	Text string `json:"text"`
}

var (
	// MindfulnessWeek is suggested when the user mentions stress.
	MindfulnessWeek = Mission{
		ID:          "mindfulness-week",
		Title:       "Mindfulness Week",
		Description: "Let's practice mindfulness meditation for 10 minutes daily for 7 days to reduce stress levels.",
		Benefit:     "This will help me better model your stress responses and improve your overall well-being.",
		Duration:    "7 days",
		Difficulty:  "Easy",
	}
	// SleepConsistency is the default mission suggestion.
	SleepConsistency = Mission{
		ID:          "sleep-consistency",
		Title:       "Sleep Consistency Challenge",
		Description: "Let's sleep for 7.5 hours for 5 consecutive nights.",
		Benefit:     "This will evolve my brain power model and help regulate your circadian rhythm.",
		Duration:    "5 days",
		Difficulty:  "Medium",
	}
)

// Catalog lists every mission the twin can propose.
func Catalog() []Mission {
	return []Mission{MindfulnessWeek, SleepConsistency}
}

// FindMission looks a mission up by id.
func FindMission(id string) (Mission, bool) {
	for _, m := range Catalog() {
		if m.ID == id {
			return m, true
		}
	}
	return Mission{}, false
}
