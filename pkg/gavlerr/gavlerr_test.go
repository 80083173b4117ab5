package gavlerr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	base := New(KindTimeout, "ioh.Read", fmt.Errorf("poll deadline exceeded"))
	wrapped := fmt.Errorf("handshake: %w", base)

	assert.True(t, Is(wrapped, KindTimeout))
	assert.False(t, Is(wrapped, KindEOF))
}

func TestTimeoutMethod(t *testing.T) {
	e := New(KindTimeout, "op", nil)
	assert.True(t, e.Timeout())

	e2 := New(KindProtocol, "op", fmt.Errorf("bad tag"))
	assert.False(t, e2.Timeout())
}
