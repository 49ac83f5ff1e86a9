package handler

import "github.com/google/uuid"

// mustParseUUID parses a string already validated by the uuid binding tag.
// A malformed value yields uuid.Nil, which downstream lookups reject.
func mustParseUUID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
