package progression

import (
	"sort"
	"time"

	"github.com/noah-isme/intern-progress-api/internal/models"
)

// DebtDetail identifies one lesson awaiting the mentor's rating.
type DebtDetail struct {
	LessonID       string    `json:"lessonId"`
	InternID       string    `json:"internId"`
	InternName     string    `json:"internName"`
	InternLastName string    `json:"internLastName"`
	Topic          string    `json:"topic"`
	Time           string    `json:"time"`
	Group          string    `json:"group"`
	Date           time.Time `json:"date"`
}

// MentorDebt is the count and detail of a mentor's unrated lessons.
type MentorDebt struct {
	MentorID string       `json:"mentorId"`
	Count    int          `json:"count"`
	Details  []DebtDetail `json:"details"`
}

// DebtFor collects mentorID's pending lessons, newest first. No debt yields an empty list.
func DebtFor(mentorID string, lessons []models.PendingLesson) MentorDebt {
	details := make([]DebtDetail, 0)
	for _, l := range lessons {
		if l.MentorID != mentorID || l.Status != models.LessonPending {
			continue
		}
		details = append(details, DebtDetail{
			LessonID:       l.ID,
			InternID:       l.InternID,
			InternName:     l.InternName,
			InternLastName: l.InternLastName,
			Topic:          l.Topic,
			Time:           l.Time,
			Group:          l.Group,
			Date:           l.Date,
		})
	}
	sort.SliceStable(details, func(i, j int) bool { return details[i].Date.After(details[j].Date) })
	return MentorDebt{MentorID: mentorID, Count: len(details), Details: details}
}

// RankMentorDebt drops mentors without debt and orders the rest by count, largest first.
func RankMentorDebt(counts []models.MentorDebtCount) []models.MentorDebtCount {
	out := make([]models.MentorDebtCount, 0, len(counts))
	for _, c := range counts {
		if c.Count > 0 {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].MentorID < out[j].MentorID
	})
	return out
}
