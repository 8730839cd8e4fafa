// Package docsearch embeds the document search engine in a Go program without the HTTP layer.
//
// Storage is either given directly or obtained by registering with an orchestrating backend:
//
//	client, err := docsearch.New(ctx,
//	    docsearch.WithMongo("mongodb://localhost:27017", "docsearch", "documents"),
//	)
//	defer client.Close(ctx)
//
//	docs, _ := client.Search(ctx, docsearch.Query{Text: docsearch.Text("hello"), Tags: []string{"dog"}})
//	tags, _ := client.MatchingTags(ctx, "do", 5)
//
// Registration mode:
//
//	client, err := docsearch.New(ctx,
//	    docsearch.WithBackend("http://backend:8000", "docsearch", docsearch.SchemaSnake),
//	)
package docsearch
