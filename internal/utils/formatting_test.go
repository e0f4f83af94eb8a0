package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanByteSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{1, "1.0 B"},
		{512, "512.0 B"},
		{1023, "1023.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{1048576, "1.0 MB"},
		{5 * 1048576, "5.0 MB"},
		{1073741824, "1.0 GB"},
		{1099511627776, "1.0 TB"},
		{2 * 1099511627776, "2.0 TB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanByteSize(tt.size), "size %d", tt.size)
	}
}
