package dns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// nameBytes builds a wire-format name from alternating length/segment runs.
func nameBytes(segments ...string) []byte {
	b := make([]byte, 0, 32)
	for _, s := range segments {
		b = append(b, byte(len(s)))
		b = append(b, s...)
	}
	return append(b, 0)
}

func TestParseLabels_Simple(t *testing.T) {
	b := nameBytes("dns", "google", "com")

	read, labels, err := ParseLabels(b)
	require.NoError(t, err)
	assert.Equal(t, len(b), read)
	require.Len(t, labels, 3)
	assert.Equal(t, TextLabel("dns"), labels[0])
	assert.Equal(t, TextLabel("google"), labels[1])
	assert.Equal(t, TextLabel("com"), labels[2])
}

func TestParseLabels_WithPointer(t *testing.T) {
	b := []byte{3, 'd', 'n', 's', 0xC0, 0x0F}

	read, labels, err := ParseLabels(b)
	require.NoError(t, err)
	assert.Equal(t, len(b), read)
	require.Len(t, labels, 2)
	assert.Equal(t, TextLabel("dns"), labels[0])
	assert.Equal(t, PointerLabel(0x0F), labels[1])
}

func TestParseLabels_MissingTerminator(t *testing.T) {
	b := []byte{3, 'd', 'n', 's'}

	_, _, err := ParseLabels(b)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseLabels_TruncatedLabel(t *testing.T) {
	b := []byte{6, 'g', 'o', 'o'}

	_, _, err := ParseLabels(b)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseLabels_TruncatedPointer(t *testing.T) {
	b := []byte{3, 'd', 'n', 's', 0xC0}

	_, _, err := ParseLabels(b)
	assert.ErrorIs(t, err, ErrParse)
}

func TestResolveLabels(t *testing.T) {
	// "dns.google.com" at offset 0; "google" begins at offset 4.
	msg := nameBytes("dns", "google", "com")
	// "test" followed by a pointer into msg.
	b := []byte{4, 't', 'e', 's', 't', 0xC0, 0x04}

	_, labels, err := ParseLabels(b)
	require.NoError(t, err)

	domain, err := ResolveLabels(msg, &labels)
	require.NoError(t, err)
	assert.Equal(t, "test.google.com", domain)
	require.Len(t, labels, 3)
	assert.Equal(t, TextLabel("test"), labels[0])
	assert.Equal(t, TextLabel("google"), labels[1])
	assert.Equal(t, TextLabel("com"), labels[2])
}

func TestResolveLabels_NoPointerIsNoop(t *testing.T) {
	_, labels, err := ParseLabels(nameBytes("dns", "google", "com"))
	require.NoError(t, err)

	domain, err := ResolveLabels(nil, &labels)
	require.NoError(t, err)
	assert.Equal(t, "dns.google.com", domain)
}

func TestResolveLabels_Cycle(t *testing.T) {
	// The name ends with a pointer back to its own start.
	msg := []byte{3, 'd', 'n', 's', 6, 'g', 'o', 'o', 'g', 'l', 'e', 0xC0, 0x00}

	_, labels, err := ParseLabels(msg)
	require.NoError(t, err)
	require.Len(t, labels, 3)
	assert.Equal(t, PointerLabel(0), labels[2])

	_, err = ResolveLabels(msg, &labels)
	assert.ErrorIs(t, err, ErrParse)
}

func TestResolveLabels_PointerOutOfBounds(t *testing.T) {
	labels := []Label{TextLabel("a"), PointerLabel(4096)}

	_, err := ResolveLabels([]byte{0}, &labels)
	assert.ErrorIs(t, err, ErrParse)
}

func TestDomainToLabels(t *testing.T) {
	labels, err := DomainToLabels("dns.google.com")
	require.NoError(t, err)
	require.Len(t, labels, 3)
	assert.Equal(t, TextLabel("dns"), labels[0])
	assert.Equal(t, TextLabel("google"), labels[1])
	assert.Equal(t, TextLabel("com"), labels[2])
}

func TestDomainToLabels_LabelTooLong(t *testing.T) {
	long := make([]byte, 64)
	for i := range long {
		long[i] = 'a'
	}

	_, err := DomainToLabels(string(long) + ".com")
	assert.ErrorIs(t, err, ErrDNS)
}

func TestWriteLabels_RoundTrip(t *testing.T) {
	b := nameBytes("dns", "google", "com")

	_, labels, err := ParseLabels(b)
	require.NoError(t, err)

	dest := make([]byte, 100)
	n, err := WriteLabels(labels, dest)
	require.NoError(t, err)
	assert.Equal(t, b, dest[:n])
}

func TestWriteLabels_PointerRoundTrip(t *testing.T) {
	b := []byte{3, 'd', 'n', 's', 0xC0, 0x0F}

	_, labels, err := ParseLabels(b)
	require.NoError(t, err)

	dest := make([]byte, 100)
	n, err := WriteLabels(labels, dest)
	require.NoError(t, err)
	// The pointer terminates the sequence: no trailing zero octet, and the
	// offset survives exactly.
	assert.Equal(t, b, dest[:n])
}

func TestWriteLabels_DestTooSmall(t *testing.T) {
	labels, err := DomainToLabels("dns.google.com")
	require.NoError(t, err)

	for size := 0; size < 15; size++ {
		_, err := WriteLabels(labels, make([]byte, size))
		assert.ErrorIs(t, err, ErrMarshal, "destination of %d bytes", size)
	}
}

func TestWriteLabels_Empty(t *testing.T) {
	n, err := WriteLabels(nil, make([]byte, 10))
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
