package schedule

import (
	"fmt"
	"schedule-backend/lib/scrapers/skola24"
	"schedule-backend/lib/textutil"
	"strings"

	"github.com/antzucaro/matchr"
)

// names scoring below this are considered different people
const nameSimilarityThreshold = 0.85

// SelectTimetable picks the timetable a session will be bound to. An empty
// selector picks the first timetable, otherwise the selector is either the
// exact person guid of a timetable or (approximately) a student's name.
func SelectTimetable(timetables []skola24.Timetable, selector string) (skola24.Timetable, error) {
	if len(timetables) == 0 {
		return skola24.Timetable{}, fmt.Errorf("%w: no timetables available", ErrTimetableNotFound)
	}

	selector = strings.TrimSpace(selector)
	if selector == "" {
		return timetables[0], nil
	}

	for _, t := range timetables {
		if t.PersonGuid == selector {
			return t, nil
		}
	}

	needle := textutil.NormalizeName(selector)
	var best skola24.Timetable
	var bestScore float64
	for _, t := range timetables {
		name := textutil.NormalizeName(t.Name())
		if name == "" {
			continue
		}
		score := matchr.JaroWinkler(needle, name, false)
		if score > bestScore {
			bestScore = score
			best = t
		}
	}
	if bestScore < nameSimilarityThreshold {
		return skola24.Timetable{}, fmt.Errorf("%w: nothing matches %q", ErrTimetableNotFound, selector)
	}
	return best, nil
}
