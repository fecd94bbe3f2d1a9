package otp

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueReturnsSixDigitCode(t *testing.T) {
	s := NewStore(5 * time.Minute)

	code, err := s.Issue("usha@x.com")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), code)
}

func TestConsumeIsSingleUse(t *testing.T) {
	s := NewStore(5 * time.Minute)

	code, err := s.Issue("usha@x.com")
	require.NoError(t, err)

	assert.True(t, s.Consume("usha@x.com", code))
	assert.False(t, s.Consume("usha@x.com", code), "second consume of the same code must fail")
}

func TestConsumeUnknownAddress(t *testing.T) {
	s := NewStore(5 * time.Minute)

	assert.False(t, s.Consume("nobody@x.com", "123456"))
}

func TestConsumeWrongCodeKeepsEntry(t *testing.T) {
	s := NewStore(5 * time.Minute)

	code, err := s.Issue("usha@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.False(t, s.Consume("usha@x.com", wrong))
	// a mismatched attempt does not burn the live code
	assert.True(t, s.Consume("usha@x.com", code))
}

func TestReissueSupersedesOldCode(t *testing.T) {
	s := NewStore(5 * time.Minute)

	old, err := s.Issue("usha@x.com")
	require.NoError(t, err)
	fresh, err := s.Issue("usha@x.com")
	require.NoError(t, err)

	if old != fresh {
		assert.False(t, s.Consume("usha@x.com", old), "superseded code must be dead")
	}
	assert.True(t, s.Consume("usha@x.com", fresh))
}

func TestExpiredCodeFails(t *testing.T) {
	s := NewStore(-time.Second) // every code is born expired

	code, err := s.Issue("usha@x.com")
	require.NoError(t, err)

	assert.False(t, s.Consume("usha@x.com", code))
	assert.False(t, s.Live("usha@x.com"))
}

func TestAddressIsCaseInsensitive(t *testing.T) {
	s := NewStore(5 * time.Minute)

	code, err := s.Issue("Usha@X.com")
	require.NoError(t, err)

	assert.True(t, s.Live("usha@x.com"))
	assert.True(t, s.Consume("  USHA@x.COM ", code))
}

func TestConcurrentConsumeSingleWinner(t *testing.T) {
	s := NewStore(5 * time.Minute)

	code, err := s.Issue("usha@x.com")
	require.NoError(t, err)

	const n = 32
	var wg sync.WaitGroup
	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Consume("usha@x.com", code)
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	assert.Equal(t, 1, wins, "exactly one concurrent consume may succeed")
}
