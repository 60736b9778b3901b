package antivirus

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeScanner struct {
	available bool
	result    ScanResult
	scanned   bool
}

func (f *fakeScanner) Scan(_ context.Context, _ string, data io.Reader) ScanResult {
	f.scanned = true
	_, _ = io.Copy(io.Discard, data)
	return f.result
}

func (f *fakeScanner) Name() string                     { return "fake" }
func (f *fakeScanner) Available(_ context.Context) bool { return f.available }

func TestChainScannerUsesFirstAvailable(t *testing.T) {
	down := &fakeScanner{available: false}
	up := &fakeScanner{available: true, result: ScanResult{Infected: true, ThreatName: "Eicar-Test-Signature", ScannerName: "fake"}}

	res := NewChainScanner(down, up).Scan(context.Background(), "cv.pdf", strings.NewReader("data"))

	assert.True(t, res.Infected)
	assert.Equal(t, "Eicar-Test-Signature", res.ThreatName)
	assert.False(t, down.scanned)
	assert.True(t, up.scanned)
}

func TestChainScannerFailsClosed(t *testing.T) {
	chain := NewChainScanner(&fakeScanner{available: false})

	res := chain.Scan(context.Background(), "cv.pdf", strings.NewReader("data"))

	assert.True(t, res.Infected)
	assert.Error(t, res.Error)
	assert.False(t, chain.Available(context.Background()))
}

func TestNoOpScanner(t *testing.T) {
	res := NewNoOpScanner().Scan(context.Background(), "cv.pdf", strings.NewReader("data"))
	assert.False(t, res.Infected)
	assert.NoError(t, res.Error)
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "tcp://clamav:3310", normalizeAddress("clamav:3310"))
	assert.Equal(t, "unix:///var/run/clamd.sock", normalizeAddress("unix:///var/run/clamd.sock"))
}
