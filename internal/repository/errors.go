package repository

// Postgres error codes checked by the repositories.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)
