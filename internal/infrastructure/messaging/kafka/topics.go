// Package kafka moves report events between the API server and the
// processing worker.
package kafka

import (
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/domain/record"
)

// Topic names. One topic per event type keeps consumer groups simple.
const (
	TopicReportSubmitted = "medner.report.submitted"
	TopicReportProcessed = "medner.report.processed"
)

var eventTopics = map[string]string{
	record.EventReportSubmitted: TopicReportSubmitted,
	record.EventReportProcessed: TopicReportProcessed,
}

// TopicFor maps an event name to its topic. Unknown events land on the
// submitted topic so they are never silently dropped.
func TopicFor(eventName string) string {
	if topic, ok := eventTopics[eventName]; ok {
		return topic
	}
	return TopicReportSubmitted
}
