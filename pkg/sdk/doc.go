// Package sdk provides an HTTP client for a running askdex API server.
//
//	client, _ := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//
//	result, err := client.ProcessQuery(ctx, sdk.RAGRequest{
//	    Query: "expansion risk",
//	    Filters: &sdk.Filters{Authors: []string{"Jane Doe"}},
//	})
//	if err != nil {
//	    var apiErr *sdk.APIError
//	    if errors.As(err, &apiErr) {
//	        log.Printf("api rejected: %s (%s)", apiErr.Message, apiErr.Code)
//	    }
//	}
//	fmt.Println(result.Response, result.Confidence)
//
// For embedded use without an API server, see the root askdex package.
package sdk
