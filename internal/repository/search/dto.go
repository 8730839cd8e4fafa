package search

import domdoc "github.com/kailas-cloud/docsearch/internal/domain/document"

// previewDTO is the stored shape of a projected document.
type previewDTO struct {
	UUID  string   `bson:"uuid"`
	Title string   `bson:"title"`
	Tags  []string `bson:"tags"`
	Short string   `bson:"short"`
}

func (d previewDTO) toDomain() domdoc.Preview {
	return domdoc.NewPreview(d.UUID, d.Title, d.Tags, d.Short)
}

func previewsFromDTO(rows []previewDTO) []domdoc.Preview {
	out := make([]domdoc.Preview, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out
}
