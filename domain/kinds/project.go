package kinds

import (
	"time"

	"concepter-backend/domain/core/entities"
	appErrors "concepter-backend/pkg/errors"
	"concepter-backend/pkg/utils"
)

const day = 24 * time.Hour

// SetMinMaxDates rolls a project's date range up from its direct
// children: the earliest child start and the latest child end. Children
// without dates are skipped; a project with no dated children keeps its
// own dates.
func SetMinMaxDates(n *entities.Node) (start, end time.Time, ok bool) {
	var haveStart, haveEnd bool
	for _, child := range n.Children() {
		if childStart, found := childDate(child, "StartDate"); found {
			if !haveStart || childStart.Before(start) {
				start = childStart
				haveStart = true
				n.Set("StartDate", start)
			}
		}
		if childEnd, found := childDate(child, "EndDate"); found {
			if !haveEnd || childEnd.After(end) {
				end = childEnd
				haveEnd = true
				n.Set("EndDate", end)
			}
		}
	}
	return start, end, haveStart || haveEnd
}

func childDate(n *entities.Node, key string) (time.Time, bool) {
	switch v := n.Get(key, nil).(type) {
	case time.Time:
		return v, true
	case string:
		t, err := utils.ParseDateAuto(v)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// UpdateProjectField sets a scheduling field and keeps StartDate,
// EndDate and TimeRequired mutually consistent: fixing one date slides
// the other by the required duration, and setting the duration fills in
// whichever dates are missing. A malformed value returns a validation
// error and leaves every field unchanged.
func UpdateProjectField(n *entities.Node, field, value string) error {
	startDate, hasStart := childDate(n, "StartDate")
	endDate, hasEnd := childDate(n, "EndDate")
	timeRequired, _ := toFloat(n.Get("TimeRequired", nil))
	duration := time.Duration(timeRequired * float64(day))

	switch field {
	case "StartDate", "EndDate":
		parsed, err := utils.ParseDateAuto(value)
		if err != nil {
			return appErrors.NewValidationError("invalid date for " + field + ": " + value)
		}
		if timeRequired > 0 {
			if field == "StartDate" {
				n.Set("EndDate", parsed.Add(duration))
			} else {
				n.Set("StartDate", parsed.Add(-duration))
			}
		}
		n.Set(field, parsed)

	case "TimeRequired":
		required, ok := toFloat(value)
		if !ok {
			return appErrors.NewValidationError("invalid time required: " + value)
		}
		newDuration := time.Duration(required * float64(day))

		switch {
		case !hasStart && !hasEnd:
			today := time.Now().UTC().Truncate(day)
			n.Set("StartDate", today)
			n.Set("EndDate", today.Add(newDuration))
		case hasStart && !hasEnd:
			n.Set("EndDate", startDate.Add(newDuration))
		case hasEnd && !hasStart:
			n.Set("StartDate", endDate.Add(-newDuration))
		}

		// the declared duration wins over a now-too-early end date
		if start, ok := childDate(n, "StartDate"); ok && hasEnd {
			if projected := start.Add(newDuration); projected.After(endDate) {
				n.Set("EndDate", projected)
			}
		}
		n.Set("TimeRequired", required)

	default:
		n.Set(field, value)
	}
	return nil
}
