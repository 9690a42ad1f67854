package gitrepo

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	revA = "1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d7e8f9a0b"
	revB = "feedfacefeedfacefeedfacefeedfacefeedface"
)

func TestParseRefUpdate(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    RefUpdate
		wantErr bool
	}{
		{
			name: "update",
			line: revA + " " + revB + " refs/heads/main",
			want: RefUpdate{OldRev: revA, NewRev: revB, RefName: "refs/heads/main"},
		},
		{
			name: "creation",
			line: ZeroRev + " " + revB + " refs/heads/feature",
			want: RefUpdate{OldRev: ZeroRev, NewRev: revB, RefName: "refs/heads/feature"},
		},
		{
			name: "deletion",
			line: revA + " " + ZeroRev + " refs/tags/v1.0",
			want: RefUpdate{OldRev: revA, NewRev: ZeroRev, RefName: "refs/tags/v1.0"},
		},
		{
			name: "extra whitespace",
			line: "  " + revA + "\t" + revB + "  refs/heads/main ",
			want: RefUpdate{OldRev: revA, NewRev: revB, RefName: "refs/heads/main"},
		},
		{
			name:    "too few fields",
			line:    revA + " refs/heads/main",
			wantErr: true,
		},
		{
			name:    "too many fields",
			line:    revA + " " + revB + " refs/heads/main extra",
			wantErr: true,
		},
		{
			name:    "short revision",
			line:    "abc123 " + revB + " refs/heads/main",
			wantErr: true,
		},
		{
			name:    "non-hex revision",
			line:    strings.Repeat("z", 40) + " " + revB + " refs/heads/main",
			wantErr: true,
		},
		{
			name:    "both revisions null",
			line:    ZeroRev + " " + ZeroRev + " refs/heads/main",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRefUpdate(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		oldRev   string
		newRev   string
		wantKind RefChangeKind
		wantRng  RevRange
	}{
		{
			name:     "creation diffs from empty tree",
			oldRev:   ZeroRev,
			newRev:   revB,
			wantKind: RefCreated,
			wantRng:  RevRange{New: revB},
		},
		{
			name:     "deletion has no diff range",
			oldRev:   revA,
			newRev:   ZeroRev,
			wantKind: RefDeleted,
			wantRng:  RevRange{Old: revA},
		},
		{
			name:     "update has both endpoints",
			oldRev:   revA,
			newRev:   revB,
			wantKind: RefUpdated,
			wantRng:  RevRange{Old: revA, New: revB},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.oldRev, tt.newRev)
			assert.Equal(t, tt.wantKind, got.Kind)
			assert.Equal(t, tt.wantRng, got.Range)
		})
	}
}
