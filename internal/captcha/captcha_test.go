package captcha

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskart/campus-market-api/pkg/cache"
)

func answerFor(t *testing.T, ch Challenge) string {
	t.Helper()
	var a, b int
	_, err := fmt.Sscanf(ch.Question, "What is %d + %d?", &a, &b)
	require.NoError(t, err)
	return strconv.Itoa(a + b)
}

func TestVerifyCorrectAnswer(t *testing.T) {
	svc := NewService(cache.New(time.Minute))

	ch := svc.NewChallenge()
	require.NotEmpty(t, ch.ID)

	assert.True(t, svc.Verify(ch.ID, answerFor(t, ch)))
}

func TestChallengeIsSingleUse(t *testing.T) {
	svc := NewService(cache.New(time.Minute))

	ch := svc.NewChallenge()
	answer := answerFor(t, ch)

	require.True(t, svc.Verify(ch.ID, answer))
	assert.False(t, svc.Verify(ch.ID, answer), "a consumed challenge must not verify again")
}

func TestWrongAnswerBurnsChallenge(t *testing.T) {
	svc := NewService(cache.New(time.Minute))

	ch := svc.NewChallenge()
	answer := answerFor(t, ch)

	assert.False(t, svc.Verify(ch.ID, answer+"1"))
	assert.False(t, svc.Verify(ch.ID, answer), "a failed attempt must consume the challenge")
}

func TestUnknownChallenge(t *testing.T) {
	svc := NewService(cache.New(time.Minute))
	assert.False(t, svc.Verify("no-such-id", "7"))
}
