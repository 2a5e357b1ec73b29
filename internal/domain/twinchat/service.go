package twinchat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/yanqian/twin-dashboard/pkg/errors"
)

// MissionStore keeps the active mission per user.
type MissionStore interface {
	ActiveMission(ctx context.Context, userID int64) (ActiveMission, bool, error)
	SaveActiveMission(ctx context.Context, userID int64, mission ActiveMission) error
}

// History records the conversation so it survives page reloads.
type History interface {
	Append(ctx context.Context, userID int64, msgs ...Message) error
	Recent(ctx context.Context, userID int64, limit int) ([]Message, error)
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Service drives the twin conversation.
type Service interface {
	Greeting(ctx context.Context, userID int64, userName string) ([]Message, error)
	Send(ctx context.Context, userID int64, userName string, req SendRequest) (Reply, error)
	Accept(ctx context.Context, userID int64, missionID string) (ActiveMission, Reply, error)
	Decline(ctx context.Context, userID int64, missionID string) (Reply, error)
	Active(ctx context.Context, userID int64) (ActiveMission, error)
	History(ctx context.Context, userID int64, limit int) ([]Message, error)
	Missions() []Mission
}

type service struct {
	rules   []Rule
	store   MissionStore
	history History
	logger  *slog.Logger
	now     func() time.Time
}

// NewService builds the chat service. An empty rule table falls back to DefaultRules
// and a nil history disables transcript recording.
func NewService(rules []Rule, store MissionStore, history History, logger *slog.Logger) Service {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &service{
		rules:   rules,
		store:   store,
		history: history,
		logger:  logger.With("component", "twinchat.service"),
		now:     time.Now,
	}
}

func (s *service) Greeting(ctx context.Context, userID int64, userName string) ([]Message, error) {
	active, err := s.active(ctx, userID)
	if err != nil {
		return nil, err
	}
	msgs := []Message{twinText(fmt.Sprintf("Hello %s! I'm your Digital Twin. I'll learn from your habits and help you optimize your health.", userName))}
	if active == nil {
		msgs = append(msgs, suggest(userName, SleepConsistency)...)
	} else {
		msgs = append(msgs, twinText(fmt.Sprintf("You're currently on the %q mission. Keep going! You're doing great.", active.Title)))
	}
	return s.stamp(msgs), nil
}

func (s *service) Send(ctx context.Context, userID int64, userName string, req SendRequest) (Reply, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return Reply{}, apperrors.Wrap(apperrors.CodeInvalidInput, "text is required", nil)
	}
	active, err := s.active(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	msgs := Respond(s.rules, Conversation{UserName: userName, ActiveMission: active}, text)
	s.logger.Debug("chat reply", "user_id", userID, "messages", len(msgs))
	transcript := s.stamp(append([]Message{userText(text)}, msgs...))
	s.record(ctx, userID, transcript)
	return Reply{Messages: transcript[1:]}, nil
}

func (s *service) Accept(ctx context.Context, userID int64, missionID string) (ActiveMission, Reply, error) {
	mission, ok := FindMission(missionID)
	if !ok {
		return ActiveMission{}, Reply{}, apperrors.Wrap(apperrors.CodeNotFound, "mission not found", nil)
	}
	active := ActiveMission{
		Mission:    mission,
		Progress:   0,
		TotalDays:  mission.Days(),
		AcceptedAt: s.now().UTC(),
	}
	if err := s.store.SaveActiveMission(ctx, userID, active); err != nil {
		return ActiveMission{}, Reply{}, apperrors.Wrap(apperrors.CodeStorage, "failed to save mission", err)
	}
	s.logger.Info("mission accepted", "user_id", userID, "mission", mission.ID)
	msgs := []Message{
		userText(fmt.Sprintf("I'll take on the %q mission!", mission.Title)),
		twinText(fmt.Sprintf("Fantastic! I'll track your progress on the %q mission. Let's get started!", mission.Title)),
	}
	msgs = s.stamp(msgs)
	s.record(ctx, userID, msgs)
	return active, Reply{Messages: msgs}, nil
}

func (s *service) Decline(ctx context.Context, userID int64, missionID string) (Reply, error) {
	if _, ok := FindMission(missionID); !ok {
		return Reply{}, apperrors.Wrap(apperrors.CodeNotFound, "mission not found", nil)
	}
	s.logger.Info("mission declined", "user_id", userID, "mission", missionID)
	msgs := []Message{
		userText("I'll pass on this mission for now."),
		twinText("No problem! I'll suggest something else when you're ready."),
	}
	msgs = s.stamp(msgs)
	s.record(ctx, userID, msgs)
	return Reply{Messages: msgs}, nil
}

func (s *service) Active(ctx context.Context, userID int64) (ActiveMission, error) {
	active, err := s.active(ctx, userID)
	if err != nil {
		return ActiveMission{}, err
	}
	if active == nil {
		return ActiveMission{}, apperrors.Wrap(apperrors.CodeNotFound, "no active mission", nil)
	}
	return *active, nil
}

// History returns the newest messages in chronological order.
func (s *service) History(ctx context.Context, userID int64, limit int) ([]Message, error) {
	if s.history == nil {
		return []Message{}, nil
	}
	switch {
	case limit <= 0:
		limit = defaultHistoryLimit
	case limit > maxHistoryLimit:
		limit = maxHistoryLimit
	}
	msgs, err := s.history.Recent(ctx, userID, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to load chat history", err)
	}
	if msgs == nil {
		msgs = []Message{}
	}
	return msgs, nil
}

func (s *service) Missions() []Mission {
	return Catalog()
}

func (s *service) active(ctx context.Context, userID int64) (*ActiveMission, error) {
	mission, found, err := s.store.ActiveMission(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeStorage, "failed to load mission", err)
	}
	if !found {
		return nil, nil
	}
	return &mission, nil
}

// record is best effort: a lost transcript line must not fail the reply.
func (s *service) record(ctx context.Context, userID int64, msgs []Message) {
	if s.history == nil || len(msgs) == 0 {
		return
	}
	if err := s.history.Append(ctx, userID, msgs...); err != nil {
		s.logger.Warn("failed to record chat history", "user_id", userID, "error", err)
	}
}

func (s *service) stamp(msgs []Message) []Message {
	now := s.now().UTC()
	for i := range msgs {
		msgs[i].Timestamp = now
	}
	return msgs
}
