package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		manufacturer, model, want string
	}{
		{"Google", "Pixel 7", "Google Pixel 7"},
		{"samsung", "Samsung Galaxy S23", "Samsung Galaxy S23"},
		{"", "Pixel 7", "Pixel 7"},
		{"Google", "", "Google"},
		{"OnePlus", "CPH2449", "OnePlus CPH2449"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, DisplayName(c.manufacturer, c.model))
	}
}
