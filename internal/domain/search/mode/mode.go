package mode

// Mode is the search strategy, derived from which query fields are populated.
type Mode string

// Search mode constants.
const (
	// Tags matches documents sharing at least one requested tag.
	Tags Mode = "tags"
	// Text matches documents whose transcription or abstract contains the text.
	Text Mode = "text"
	// Combined requires a tag intersection and a transcription match.
	Combined Mode = "combined"
	// None is an empty query; it matches nothing.
	None Mode = "none"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Tags || m == Text || m == Combined || m == None
}
