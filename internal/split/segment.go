package split

import "fmt"

// Segment is one contiguous chunk of the recording. A nil End means the
// segment runs to the end of the recording.
type Segment struct {
	Begin float64
	End   *float64
}

// BuildSegments turns an ordered list of cut points into len(splits)+1
// segments covering the whole recording.
func BuildSegments(splits []float64) []Segment {
	segments := make([]Segment, 0, len(splits)+1)
	begin := 0.0
	for i := range splits {
		end := splits[i]
		segments = append(segments, Segment{Begin: begin, End: &end})
		begin = end
	}
	return append(segments, Segment{Begin: begin})
}

// Duration returns the segment length given the total recording duration.
func (s Segment) Duration(total float64) float64 {
	if s.End == nil {
		return total - s.Begin
	}
	return *s.End - s.Begin
}

// String returns a human-readable representation for logging.
func (s Segment) String() string {
	if s.End == nil {
		return fmt.Sprintf("%.3f-end", s.Begin)
	}
	return fmt.Sprintf("%.3f-%.3f", s.Begin, *s.End)
}
