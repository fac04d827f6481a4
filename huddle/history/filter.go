package history

import (
	"time"
)

// FilterTimeline reduces a segment timeline to the subset visible under the
// given access level and computes aggregate statistics. It is pure and
// total: any valid level and timeline produce a result, never an error.
// now anchors relative windows and the degenerate empty-result time range.
//
// Stages run in order on each other's output:
//  1. privacy pass: drop private segments when respectPrivate is set
//  2. access-level pass: none / full / limited / custom
//  3. aggregation over the original timeline and the final result
func FilterTimeline(segments []Segment, level AccessLevel, respectPrivate bool, now time.Time) FilteredHistory {
	totalMessages := 0
	for _, seg := range segments {
		totalMessages += seg.MessageCount
	}

	visible := segments
	hidden := 0
	if respectPrivate {
		visible = make([]Segment, 0, len(segments))
		for _, seg := range segments {
			if seg.IsPrivate {
				hidden++
				continue
			}
			visible = append(visible, seg)
		}
	}

	switch l := level.(type) {
	case AccessNone:
		visible = nil
	case AccessFull:
		// privacy pass output, unchanged
	case AccessLimited:
		visible = applyLimited(visible, l, now)
	case AccessCustom:
		visible = applyCustom(visible, l)
	}

	accessible := 0
	for _, seg := range visible {
		accessible += seg.MessageCount
	}

	span := TimeSpan{Start: now, End: now}
	if len(visible) > 0 {
		span = TimeSpan{
			Start: visible[0].StartTime,
			End:   visible[len(visible)-1].EndTime,
		}
	}

	return FilteredHistory{
		Segments:           visible,
		TotalMessages:      totalMessages,
		AccessibleMessages: accessible,
		HiddenSegments:     hidden,
		TimeRange:          span,
	}
}

// applyLimited applies the message ceiling and then the relative time
// window. The two constraints are sequential, not an independent
// intersection: the ceiling selects a chronological suffix first and the
// window trims that suffix. Reversing the order changes the result when the
// constraints disagree, so the order is part of the contract.
func applyLimited(segments []Segment, level AccessLimited, now time.Time) []Segment {
	result := segments

	if level.MessageCount != nil {
		ceiling := *level.MessageCount
		total := 0
		start := len(result)
		for i := len(result) - 1; i >= 0; i-- {
			if total+result[i].MessageCount > ceiling {
				break
			}
			total += result[i].MessageCount
			start = i
		}
		result = result[start:]
	}

	if level.TimeRange != nil {
		cutoff := now.Add(-level.TimeRange.Duration())
		kept := make([]Segment, 0, len(result))
		for _, seg := range result {
			if seg.EndTime.Before(cutoff) {
				continue
			}
			kept = append(kept, seg)
		}
		result = kept
	}

	return result
}

// applyCustom keeps only segments wholly contained in the requested window.
// Segments are atomic: partial overlaps are excluded entirely, never split.
func applyCustom(segments []Segment, level AccessCustom) []Segment {
	kept := make([]Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.StartTime.Before(level.Start) || seg.EndTime.After(level.End) {
			continue
		}
		kept = append(kept, seg)
	}
	return kept
}
