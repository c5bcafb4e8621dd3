package jwtware

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetExtractorsParsesLookup(t *testing.T) {
	extractors := GetExtractors("header:Authorization, query:token,cookie:jwt,param:tok,bogus", "Bearer")
	require.Len(t, extractors, 4)

	require.Empty(t, GetExtractors(""))
}

func TestGetDefaultConfigRequiresValidator(t *testing.T) {
	require.Panics(t, func() {
		GetDefaultConfig(Config{})
	})
}
