package layer

// Stack is an ordered collection of layers drawn from index 0 upward
type Stack struct {
	layers []*Layer
}

// NewStack returns an empty stack
func NewStack() *Stack {
	return &Stack{layers: make([]*Layer, 0, 4)}
}

// Len returns the number of layers
func (s *Stack) Len() int {
	return len(s.layers)
}

// Layer returns the layer at index i
func (s *Stack) Layer(i int) (*Layer, error) {
	if i < 0 || i >= len(s.layers) {
		return nil, stackError(i, len(s.layers))
	}
	return s.layers[i], nil
}

// Layers returns the layers in draw order
// The slice is owned by the stack
func (s *Stack) Layers() []*Layer {
	return s.layers
}

// Index returns the position of l or -1
func (s *Stack) Index(l *Layer) int {
	for i, x := range s.layers {
		if x == l {
			return i
		}
	}
	return -1
}

// Append places l on top of the stack
func (s *Stack) Append(l *Layer) {
	s.layers = append(s.layers, l)
}

// Insert places l at index i, shifting layers at i and above up by one
// i == Len() appends
func (s *Stack) Insert(i int, l *Layer) error {
	if i < 0 || i > len(s.layers) {
		return stackError(i, len(s.layers))
	}
	if i == len(s.layers) {
		s.Append(l)
		return nil
	}
	s.layers = append(s.layers, nil)
	copy(s.layers[i+1:], s.layers[i:])
	s.layers[i] = l
	return nil
}

// Set replaces the layer at index i
func (s *Stack) Set(i int, l *Layer) error {
	if i < 0 || i >= len(s.layers) {
		return stackError(i, len(s.layers))
	}
	s.layers[i] = l
	return nil
}

// Remove deletes the layer at index i and returns it
func (s *Stack) Remove(i int) (*Layer, error) {
	if i < 0 || i >= len(s.layers) {
		return nil, stackError(i, len(s.layers))
	}
	l := s.layers[i]
	copy(s.layers[i:], s.layers[i+1:])
	s.layers[len(s.layers)-1] = nil
	s.layers = s.layers[:len(s.layers)-1]
	return l, nil
}

// Release drops every layer
func (s *Stack) Release(pool *EntityPool) {
	for _, l := range s.layers {
		l.Release(pool)
	}
	clear(s.layers)
	s.layers = s.layers[:0]
}
