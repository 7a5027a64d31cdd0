package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsSkippable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "malformed record",
			err:  ErrMalformedRecord,
			want: true,
		},
		{
			name: "wrapped corrupt number",
			err:  fmt.Errorf("decode id %q: %w", "x1", ErrCorruptNumber),
			want: true,
		},
		{
			name: "joined malformed record",
			err:  errors.Join(ErrMalformedRecord, errors.New("additional context")),
			want: true,
		},
		{
			name: "file unavailable",
			err:  ErrFileUnavailable,
			want: false,
		},
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsSkippable(tt.err)
			if got != tt.want {
				t.Errorf("IsSkippable() = %v, want %v", got, tt.want)
			}
		})
	}
}
