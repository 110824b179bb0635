package domain

// Progress is the per-user completion snapshot. Percent is floored so a
// questionnaire never reads 100% before the last answer lands.
type Progress struct {
	Answered   int                         `json:"answered"`
	Total      int                         `json:"total"`
	Percent    int                         `json:"percent"`
	ByCategory map[string]CategoryProgress `json:"by_category"`
}

// CategoryProgress is the same triple scoped to one category bucket.
type CategoryProgress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

// NextEligible returns the first active question, in (order, id) sequence,
// that the user has not answered and whose ancestor chain is fully answered.
// Sub-questions stay hidden until every ancestor is answered, so the walk
// follows document order rather than descending subtrees. Returns nil when
// nothing is left, which is the completion signal.
//
// questions must already be sorted by (display order, id) and contain only
// active questions. The function is a pure read; calling it never changes
// eligibility.
func NextEligible(answeredIDs map[string]bool, questions []Question) *Question {
	parentOf := make(map[string]*string, len(questions))
	for i := range questions {
		parentOf[questions[i].ID] = questions[i].ParentID
	}

	ancestorsAnswered := func(q *Question) bool {
		parent := q.ParentID
		for parent != nil {
			if !answeredIDs[*parent] {
				return false
			}
			// An answered ancestor outside the active set ends the walk:
			// its own parents are unknown here, and its answer already
			// unlocked the subtree.
			parent = parentOf[*parent]
		}
		return true
	}

	for i := range questions {
		q := &questions[i]
		if q.ParentID != nil && !ancestorsAnswered(q) {
			continue
		}
		if !answeredIDs[q.ID] {
			return q
		}
	}
	return nil
}

// ComputeProgress derives the overall and per-category completion counts for
// a user. Answers on inactive questions do not count. Questions without a
// category share the empty-string bucket.
func ComputeProgress(answeredIDs map[string]bool, questions []Question) Progress {
	progress := Progress{
		Total:      len(questions),
		ByCategory: make(map[string]CategoryProgress),
	}

	type bucket struct {
		answered int
		total    int
	}
	buckets := make(map[string]*bucket)

	for i := range questions {
		q := &questions[i]
		key := q.CategoryKey()
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.total++
		if answeredIDs[q.ID] {
			b.answered++
			progress.Answered++
		}
	}

	progress.Percent = percentOf(progress.Answered, progress.Total)
	for key, b := range buckets {
		progress.ByCategory[key] = CategoryProgress{
			Answered: b.answered,
			Total:    b.total,
			Percent:  percentOf(b.answered, b.total),
		}
	}
	return progress
}

func percentOf(answered, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(answered) / float64(total) * 100)
}
