package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpritePriorityBufferClaim(t *testing.T) {
	testCases := []struct {
		desc      string
		owner     int
		ownerX    int
		pixelX    int
		index     int
		spriteX   int
		wantClaim bool
		wantOwner int
	}{
		{desc: "unowned pixel", owner: noOwner, pixelX: 50, index: 2, spriteX: 20, wantClaim: true, wantOwner: 2},
		{desc: "lower X wins", owner: 3, ownerX: 30, pixelX: 50, index: 2, spriteX: 20, wantClaim: true, wantOwner: 2},
		{desc: "higher X loses", owner: 3, ownerX: 10, pixelX: 50, index: 2, spriteX: 20, wantClaim: false, wantOwner: 3},
		{desc: "same X lower index wins", owner: 5, ownerX: 20, pixelX: 50, index: 3, spriteX: 20, wantClaim: true, wantOwner: 3},
		{desc: "same X higher index loses", owner: 3, ownerX: 20, pixelX: 50, index: 5, spriteX: 20, wantClaim: false, wantOwner: 3},
		{desc: "negative pixel", owner: noOwner, pixelX: -1, index: 2, spriteX: -4, wantClaim: false, wantOwner: noOwner},
		{desc: "pixel past the edge", owner: noOwner, pixelX: FramebufferWidth, index: 2, spriteX: 155, wantClaim: false, wantOwner: noOwner},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			var buffer SpritePriorityBuffer
			buffer.Reset()
			if tC.owner != noOwner {
				buffer.owners[tC.pixelX] = pixelOwner{index: tC.owner, x: tC.ownerX}
			}

			assert.Equal(t, tC.wantClaim, buffer.Claim(tC.pixelX, tC.index, tC.spriteX))
			assert.Equal(t, tC.wantOwner, buffer.Owner(tC.pixelX))
		})
	}
}

func TestSpritePriorityBufferOverlap(t *testing.T) {
	var buffer SpritePriorityBuffer
	buffer.Reset()

	claim := func(index, x int) {
		for i := range 8 {
			buffer.Claim(x+i, index, x)
		}
	}
	claim(0, 20)
	claim(1, 15)
	claim(2, 15)

	for x := 15; x <= 22; x++ {
		assert.Equal(t, 1, buffer.Owner(x), "pixel %d", x)
	}
	for x := 23; x <= 27; x++ {
		assert.Equal(t, 0, buffer.Owner(x), "pixel %d", x)
	}
	assert.Equal(t, noOwner, buffer.Owner(14))

	buffer.Reset()
	assert.Equal(t, noOwner, buffer.Owner(20))
}
