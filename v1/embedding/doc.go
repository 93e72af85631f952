// Package embedding turns text into vectors through an OpenAI-compatible
// /embeddings endpoint.
//
// # Overview
//
// The package exposes the Embedder interface and one implementation, Client,
// which talks to OpenAI, to any server speaking the same protocol (vLLM,
// text-embeddings-inference, LocalAI) or to an Azure OpenAI deployment.
//
//	client, err := embedding.NewClient(&embedding.Config{
//	    Endpoint: "https://api.openai.com/v1",
//	    APIKey:   os.Getenv("OPENAI_API_KEY"),
//	    Model:    "text-embedding-3-small",
//	})
//	vec, err := client.Embed(ctx, "Ilyan is an AI engineer")
//
// For Azure set Provider to "azure" and Endpoint to the deployment URL
// (https://<resource>.openai.azure.com/openai/deployments/<deployment>). The
// key is sent in the api-key header and APIVersion is appended as the
// api-version query parameter.
//
// # Errors
//
// Every failure is an *Error and matches ErrEmbeddingFailure:
//
//	if errors.Is(err, embedding.ErrEmbeddingFailure) { ... }
//
// The client does not retry. Empty or whitespace-only input fails before any
// network call.
//
// # Caching
//
// CachedEmbedder wraps any Embedder with a Cache keyed by model and the SHA-256
// of the text. The redis package provides a Redis-backed Cache. Cache errors
// never fail an embedding call.
//
// # Configuration
//
// NewConfig reads:
//
//	EMBEDDING_PROVIDER              openai (default) | azure
//	EMBEDDING_ENDPOINT              base URL, required
//	EMBEDDING_API_KEY               bearer token or azure api-key
//	EMBEDDING_MODEL                 default text-embedding-3-small
//	EMBEDDING_API_VERSION           azure only, default 2024-02-01
//	EMBEDDING_HTTP_TIMEOUT_SECONDS  default 30
package embedding
