package multipart

// Smart is the validating façade over a parsed Form. It adds the lookup
// ergonomics request handlers want: fetch by name, or insist on exactly one
// part for a name.
type Smart struct {
	form *Form
}

// NewSmart wraps an already-parsed Form.
func NewSmart(form *Form) *Smart {
	return &Smart{form: form}
}

// Part returns the parts with the given name, in order of appearance.
// The result is empty, not an error, when no part matches.
func (s *Smart) Part(name string) []*Part {
	return s.form.Part(name)
}

// Single returns the one part with the given name. It fails with
// *MissingPartError when none exists and *AmbiguousPartError when the name
// is shared by several parts.
func (s *Smart) Single(name string) (*Part, error) {
	parts := s.form.Part(name)
	switch len(parts) {
	case 0:
		return nil, &MissingPartError{Name: name}
	case 1:
		return parts[0], nil
	default:
		return nil, &AmbiguousPartError{Name: name, Count: len(parts)}
	}
}
