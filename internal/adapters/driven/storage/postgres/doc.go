// Package postgres stores product cards and passage embeddings in
// PostgreSQL. Nearest-neighbour search runs inside the database through
// the pgvector extension using the cosine distance operator.
package postgres
