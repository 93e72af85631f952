// Package config loads the application configuration.
//
// Sources, lowest precedence first:
//
//  1. defaults
//  2. a YAML file
//  3. environment variables, including those from a .env file
//
// Every field that can be set from the environment carries an `env` tag in
// its package's Config type, for example EMBEDDING_ENDPOINT, RAGCORE_BACKEND,
// QDRANT_ENDPOINT or REDIS_HOST.
//
// A minimal file:
//
//	app:
//	  backend: qdrant
//	  database_name: resumes
//	embedding:
//	  endpoint: https://api.openai.com/v1
//	  model: text-embedding-3-small
//	qdrant:
//	  endpoint: localhost
//	rag:
//	  top_k: 5
package config
