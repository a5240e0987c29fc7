// Package captcha issues short-lived arithmetic challenges used to
// gate account registration. Challenges live in the expiring cache and
// are consumed on first verification attempt, right or wrong.
package captcha

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/campuskart/campus-market-api/pkg/cache"
	"github.com/campuskart/campus-market-api/pkg/response"
)

const challengeTTL = 10 * time.Minute

// Challenge is the client-facing half of a captcha. The answer stays
// server-side.
type Challenge struct {
	ID       string `json:"captchaId"`
	Question string `json:"question"`
}

type Service struct {
	store *cache.Cache
}

func NewService(store *cache.Cache) *Service {
	return &Service{store: store}
}

// NewChallenge mints a challenge and stores its answer for 10 minutes.
func (s *Service) NewChallenge() Challenge {
	a := rand.Intn(20) + 1
	b := rand.Intn(20) + 1

	id := uuid.New().String()
	s.store.Set(id, strconv.Itoa(a+b), challengeTTL)

	return Challenge{
		ID:       id,
		Question: fmt.Sprintf("What is %d + %d?", a, b),
	}
}

// Verify consumes the challenge and reports whether the answer matches.
// A wrong answer burns the challenge too, so it cannot be brute-forced.
func (s *Service) Verify(id, answer string) bool {
	want, ok := s.store.Take(id)
	if !ok {
		return false
	}
	return strings.TrimSpace(answer) == want.(string)
}

// ChallengeHandler handles GET requests for a fresh captcha challenge.
func (s *Service) ChallengeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ch := s.NewChallenge()
		response.OK(c, gin.H{
			"success":   true,
			"captchaId": ch.ID,
			"question":  ch.Question,
		})
	}
}
