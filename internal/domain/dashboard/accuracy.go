package dashboard

import "fmt"

var improvementActivities = map[string]string{
	SystemCardiovascular: "more cardio workouts and tracking your heart rate",
	SystemRespiratory:    "breathing exercises and outdoor activities",
	SystemNervous:        "cognitive tasks and stress measurements",
	SystemSleep:          "consistent sleep tracking and bedtime routines",
}

// Accuracies lists the configured accuracies in display order.
func Accuracies(values map[string]int) []ModelAccuracy {
	out := make([]ModelAccuracy, 0, len(Systems))
	for _, system := range Systems {
		out = append(out, ModelAccuracy{System: system, Accuracy: values[system]})
	}
	return out
}

// AccuracySuggestion points the user at the weakest model.
func AccuracySuggestion(accuracies []ModelAccuracy) string {
	if len(accuracies) == 0 {
		return ""
	}
	lowest := accuracies[0]
	allHigh := true
	for _, a := range accuracies {
		if a.Accuracy < lowest.Accuracy {
			lowest = a
		}
		if a.Accuracy < 85 {
			allHigh = false
		}
	}
	switch {
	case lowest.Accuracy < 70:
		return fmt.Sprintf("📊 Your %s model has lower accuracy. Try adding %s to improve predictions.", lowest.System, improvementActivities[lowest.System])
	case allHigh:
		return "🌟 All your models have excellent accuracy! Keep maintaining your tracking consistency."
	default:
		return "🔄 Continue providing consistent data for all your health metrics to improve model accuracy."
	}
}
