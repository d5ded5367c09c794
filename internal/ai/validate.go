package ai

// ValidateShape checks that every required key is present in the parsed
// payload. Values are not inspected: an empty string passes, a missing
// key fails. All missing keys are reported together.
func ValidateShape(attrs RawAttributes, required []string) error {
	var missing []string
	for _, field := range required {
		if _, ok := attrs[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}
	return nil
}
