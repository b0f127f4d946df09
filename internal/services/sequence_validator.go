package services

import (
	"fmt"

	"github.com/smarttransit/schoolbus-scheduler/internal/models"
)

// ValidateSequence checks the ordering invariants of a route's stop list as
// given: sequence numbers non-negative and strictly increasing (gaps allowed,
// ties rejected) and arrival times non-decreasing along the sequence.
// It has no side effects.
func ValidateSequence(stops []models.RouteStop) error {
	for i, stop := range stops {
		field := fmt.Sprintf("stops[%d]", i)

		if stop.SequenceNumber < 0 {
			return validationErrorf(InvalidSequenceOrder, field+".sequence_number",
				"sequence number %d is negative", stop.SequenceNumber)
		}
		if !stop.ScheduledArrivalTime.IsValid() {
			return validationErrorf(InvalidField, field+".scheduled_arrival_time",
				"arrival time %d is outside the day", int(stop.ScheduledArrivalTime))
		}
		if i == 0 {
			continue
		}

		prev := stops[i-1]
		if stop.SequenceNumber == prev.SequenceNumber {
			return validationErrorf(InvalidSequenceOrder, field+".sequence_number",
				"sequence number %d is used twice", stop.SequenceNumber)
		}
		if stop.SequenceNumber < prev.SequenceNumber {
			return validationErrorf(InvalidSequenceOrder, field+".sequence_number",
				"sequence number %d follows %d", stop.SequenceNumber, prev.SequenceNumber)
		}
		if stop.ScheduledArrivalTime < prev.ScheduledArrivalTime {
			return validationErrorf(NonMonotonicSchedule, field+".scheduled_arrival_time",
				"stop %d (seq %d) arrives at %s, before stop %d (seq %d) at %s",
				stop.StopID, stop.SequenceNumber, stop.ScheduledArrivalTime,
				prev.StopID, prev.SequenceNumber, prev.ScheduledArrivalTime)
		}
	}
	return nil
}
