package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashURLIsStable(t *testing.T) {
	a := HashURL("https://rickandmortyapi.com/api/character/1")
	b := HashURL("https://rickandmortyapi.com/api/character/1")
	c := HashURL("https://rickandmortyapi.com/api/character/2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}

func TestPageParam(t *testing.T) {
	assert.Equal(t, 2, PageParam("https://rickandmortyapi.com/api/character?page=2"))
	assert.Equal(t, 0, PageParam("https://rickandmortyapi.com/api/character"))
	assert.Equal(t, 0, PageParam("https://rickandmortyapi.com/api/character?page=x"))
}
