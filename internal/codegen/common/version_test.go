package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "0.0.1-dev"},
		{in: "v1.2.3", want: "1.2.3"},
		{in: "1.2.3-dirty", want: "1.2.3-dirty"},
		{in: "nightly", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			Version = tt.in
			got, err := GetVersion()
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, "studiogen/unknown", UserAgent())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "studiogen/"+tt.want, UserAgent())
		})
	}
}
