package examservice

import "math"

const (
	// PassAverage is the lowest composite score that can pass.
	PassAverage = 60.0
	// MinimumCategory is the lowest score any single category may have on a pass.
	MinimumCategory = 40
)

// Evaluate computes the composite score and outcome of a row. Empty categories count as 0;
// a row with no scores at all is Pending.
func Evaluate(scores Scores) Evaluation {
	var (
		sum     int
		lowest  = math.MaxInt
		missing []int
	)
	for i, s := range scores {
		v := 0
		if s == nil {
			missing = append(missing, i)
		} else {
			v = *s
		}
		sum += v
		lowest = min(lowest, v)
	}

	if len(missing) == CategoryCount {
		return Evaluation{Outcome: OutcomePending}
	}

	composite := math.Round(float64(sum)/CategoryCount*100) / 100
	outcome := OutcomeFail
	if composite >= PassAverage && lowest >= MinimumCategory {
		outcome = OutcomePass
	}
	return Evaluation{
		Composite: composite,
		Outcome:   outcome,
		Missing:   missing,
	}
}
