package twinchat

import (
	"fmt"
	"strings"
	"unicode"
)

// Conversation is the state a rule may consult.
type Conversation struct {
	UserName      string
	ActiveMission *ActiveMission
}

// Rule pairs a matcher over lowercased input with the twin's response.
type Rule struct {
	Name    string
	Match   func(input string) bool
	Respond func(conv Conversation) []Message
}

// DefaultRules is the ordered rule table; the first match wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "greeting",
			Match: containsWord("hello", "hi"),
			Respond: func(conv Conversation) []Message {
				return []Message{twinText(fmt.Sprintf("Hi %s! How are you feeling today?", conv.UserName))}
			},
		},
		{
			Name:  "tiredness",
			Match: containsAny("tired", "exhausted"),
			Respond: func(Conversation) []Message {
				return []Message{twinText("I've noticed your sleep patterns have been irregular. Would you like me to suggest a sleep schedule to help you feel more energized?")}
			},
		},
		{
			Name:  "stress",
			Match: containsAny("stress", "anxious"),
			Respond: func(conv Conversation) []Message {
				return suggest(conv.UserName, MindfulnessWeek)
			},
		},
		{
			Name:  "mission",
			Match: containsAny("mission"),
			Respond: func(conv Conversation) []Message {
				if conv.ActiveMission != nil {
					return []Message{twinText(fmt.Sprintf("You're currently on the %q mission. Keep going! You're doing great.", conv.ActiveMission.Title))}
				}
				return suggest(conv.UserName, SleepConsistency)
			},
		},
	}
}

func fallback() []Message {
	return []Message{twinText("I'm learning from your daily patterns. The more consistent data you provide, the better I can help optimize your health.")}
}

// Respond evaluates rules in order against input.
func Respond(rules []Rule, conv Conversation, input string) []Message {
	lowered := strings.ToLower(input)
	for _, rule := range rules {
		if rule.Match(lowered) {
			return rule.Respond(conv)
		}
	}
	return fallback()
}

func suggest(userName string, mission Mission) []Message {
	m := mission
	return []Message{
		twinText(fmt.Sprintf("I have a mission for you, %s!", userName)),
		{Sender: SenderTwin, Type: MessageMission, Mission: &m},
	}
}

func twinText(text string) Message {
	return Message{Sender: SenderTwin, Type: MessageText, Text: text}
}

func userText(text string) Message {
	return Message{Sender: SenderUser, Type: MessageText, Text: text}
}

func containsAny(keywords ...string) func(string) bool {
	return func(input string) bool {
		for _, k := range keywords {
			if strings.Contains(input, k) {
				return true
			}
		}
		return false
	}
}

// containsWord matches whole words so "hi" does not fire on "this".
func containsWord(words ...string) func(string) bool {
	return func(input string) bool {
		tokens := strings.FieldsFunc(input, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, tok := range tokens {
			for _, w := range words {
				if tok == w {
					return true
				}
			}
		}
		return false
	}
}
