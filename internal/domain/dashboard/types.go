package dashboard

import (
	"time"

	"github.com/yanqian/twin-dashboard/internal/domain/auth"
	"github.com/yanqian/twin-dashboard/internal/domain/healthdata"
	"github.com/yanqian/twin-dashboard/internal/domain/prediction"
	"github.com/yanqian/twin-dashboard/internal/domain/twinchat"
)

// Body system names used by the model accuracy panel.
const (
	SystemCardiovascular = "cardiovascular"
	SystemRespiratory    = "respiratory"
	SystemNervous        = "nervous"
	SystemSleep          = "sleep"
)

// Systems is the display order of the accuracy panel.
var Systems = []string{SystemCardiovascular, SystemRespiratory, SystemNervous, SystemSleep}

// ModelAccuracy is the fidelity of one body-system model, in percent.
type ModelAccuracy struct {
	System   string `json:"system"`
	Accuracy int    `json:"accuracy"`
}

// Config holds the baseline accuracies reported before real models exist.
type Config struct {
	Accuracies map[string]int
}

// DefaultAccuracies mirrors the initial dashboard panel.
func DefaultAccuracies() map[string]int {
	return map[string]int{
		SystemCardiovascular: 78,
		SystemRespiratory:    65,
		SystemNervous:        82,
		SystemSleep:          91,
	}
}

// State is everything the dashboard renders in one payload.
type State struct {
	User               auth.UserView                         `json:"user"`
	Scores             prediction.Scores                     `json:"scores"`
	Overall            int                                   `json:"overall"`
	Bands              map[prediction.Metric]prediction.Band `json:"bands"`
	AvatarState        string                                `json:"avatarState"`
	ModelAccuracies    []ModelAccuracy                       `json:"modelAccuracies"`
	AccuracySuggestion string                                `json:"accuracySuggestion"`
	ActiveMission      *twinchat.ActiveMission               `json:"activeMission,omitempty"`
	LatestUpload       *healthdata.Record                    `json:"latestUpload,omitempty"`
	UploadsToday       int                                   `json:"uploadsToday"`
	ScoresFrom         string                                `json:"scoresFrom"`
	GeneratedAt        time.Time                             `json:"generatedAt"`
}
