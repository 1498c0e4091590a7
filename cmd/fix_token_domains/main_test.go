package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"example.kommo.com", "example.kommo.com"},
		{"https://example.kommo.com", "example.kommo.com"},
		{"http://example.kommo.com/", "example.kommo.com"},
		{"Example.Kommo.Com", "example.kommo.com"},
		{"  example.kommo.com  ", "example.kommo.com"},
		{"example.amocrm.ru", "example.kommo.com"},
		{"https://example.amocrm.ru/", "example.kommo.com"},
		// Only the suffix maps; lookalike middles stay put.
		{"amocrm.ru.example.com", "amocrm.ru.example.com"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeDomain(tc.in), tc.in)
	}
}
