package document

// Stored field names of a full document record.
const (
	FieldUUID          = "uuid"
	FieldTitle         = "title"
	FieldTags          = "tags"
	FieldShort         = "short"
	FieldTranscription = "transcription"
)

// PreviewFields is the projection returned by every search; transcription is never part of it.
var PreviewFields = []string{FieldUUID, FieldTitle, FieldShort, FieldTags}

// Preview is the display-safe projection of a stored document (immutable value object).
type Preview struct {
	uuid  string
	title string
	tags  []string
	short string
}

// NewPreview creates a Preview. Tag order is kept as given by storage.
func NewPreview(uuid, title string, tags []string, short string) Preview {
	cp := make([]string, len(tags))
	copy(cp, tags)
	return Preview{uuid: uuid, title: title, tags: cp, short: short}
}

// UUID returns the stable document identifier.
func (p Preview) UUID() string { return p.uuid }

// Title returns the display title.
func (p Preview) Title() string { return p.title }

// Short returns the abstract.
func (p Preview) Short() string { return p.short }

// Tags returns a copy of the tag list; never nil.
func (p Preview) Tags() []string {
	cp := make([]string, len(p.tags))
	copy(cp, p.tags)
	return cp
}

// HasAnyTag reports whether the preview carries at least one of tags.
func (p Preview) HasAnyTag(tags []string) bool {
	for _, want := range tags {
		for _, have := range p.tags {
			if have == want {
				return true
			}
		}
	}
	return false
}
