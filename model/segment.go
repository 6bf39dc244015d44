package model

// MemorySegment is initial linear-memory content placed at Offset.
// Segments are owned by the Module's Segments slice and never shared.
type MemorySegment struct {
	Data   []byte
	Offset int32
}

// Length returns the number of bytes in the segment.
func (s *MemorySegment) Length() int {
	return len(s.Data)
}

// End returns the first address past the segment.
func (s *MemorySegment) End() int64 {
	return int64(s.Offset) + int64(len(s.Data))
}
