package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAddress(t *testing.T) {
	testCases := []struct {
		desc    string
		flag    string
		size    int
		want    uint16
		wantErr bool
	}{
		{desc: "boot rom defaults to zero", size: 0x100, want: 0x0000},
		{desc: "cartridge defaults to entry point", size: 0x8000, want: 0x0100},
		{desc: "explicit hex", flag: "$150", size: 0x8000, want: 0x0150},
		{desc: "explicit zero on a cartridge", flag: "0", size: 0x8000, want: 0x0000},
		{desc: "out of range", flag: "0x10000", size: 0x8000, wantErr: true},
		{desc: "negative", flag: "-1", size: 0x8000, wantErr: true},
		{desc: "garbage", flag: "entry", size: 0x8000, wantErr: true},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			got, err := startAddress(tC.flag, tC.size)
			if tC.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tC.want, got)
		})
	}
}
