package stamp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethod_String(t *testing.T) {
	assert.Equal(t, "none", MethodNone.String())
	assert.Equal(t, "primary", MethodPrimary.String())
	assert.Equal(t, "fallback", MethodFallback.String())
	assert.Equal(t, "dry-run", MethodDryRun.String())
}

func TestProcessOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		exts    []string
		wantErr bool
	}{
		{"defaults", []string{"jpg", "png"}, false},
		{"empty", nil, true},
		{"blank entry", []string{"jpg", ""}, true},
		{"leading dot", []string{".jpg"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ProcessOptions{Extensions: tt.exts}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProcessingStats(t *testing.T) {
	var stats ProcessingStats
	assert.Zero(t, stats.SuccessRate())

	stats.Add(ProcessResult{Success: true, Method: MethodPrimary})
	stats.Add(ProcessResult{Success: true, Method: MethodFallback, PrimaryErr: errors.New("x")})
	stats.Add(ProcessResult{Success: false, Method: MethodFallback})
	stats.Add(ProcessResult{Success: false, ErrorType: ErrorTypeParse})

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Succeeded)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 1, stats.Fallbacks)
	assert.InDelta(t, 50.0, stats.SuccessRate(), 0.001)
	assert.Contains(t, stats.String(), "Succeeded: 2 (50.00%)")

	assert.False(t, RunSummary{Stats: stats}.OK())
	assert.True(t, RunSummary{}.OK())
}
