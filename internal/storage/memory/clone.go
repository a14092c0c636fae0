package memory

// clonePtr copies the value behind p into a fresh allocation, so rows
// handed out by the stores never share pointers with stored state.
func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
