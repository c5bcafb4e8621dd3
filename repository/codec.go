package repository

import (
	"bytes"
	"encoding/json"

	auth "github.com/goliatone/go-user-auth"
)

// decodeCollection never fails. Anything that is not a valid
// {"users": [...], "nextId": N} document yields an empty collection.
func decodeCollection(data []byte, logger auth.Logger, source string) auth.Collection {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return auth.NewCollection()
	}

	if data[0] != '{' {
		logger.Error("user collection is not a JSON object, starting empty", "source", source)
		return auth.NewCollection()
	}

	var c auth.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		logger.Error("user collection is malformed, starting empty", "source", source, "error", err)
		return auth.NewCollection()
	}

	c.Normalize()
	return c
}

func encodeCollection(c auth.Collection) ([]byte, error) {
	c.Normalize()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
