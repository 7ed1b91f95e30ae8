package mocksource

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/engagehq/pulse/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	memberKindDivisor  = 10
)

// Member kind cases. Cases 0..6 are regular employees with a full profile;
// the remaining cases exercise the resolver's skip and classification rules.
const (
	caseRestrictedMember  = 7 // guest account, restricted flag set
	caseBotMember         = 8
	caseProfilelessMember = 9 // has an account but no profile email
)

// Activity skew: a small share of members produces most of the traffic.
const (
	heavyHitterShare   = 0.2
	heavyHitterTraffic = 0.8
	secondsPerDay      = 24 * 60 * 60
)

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, max).
func getRandomInt(max int) int {
	if max <= 0 {
		return 0
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GenerateOrg builds a synthetic organization: a member directory plus
// message and issue traffic attributed to its members.
func GenerateOrg(ctx context.Context, config *Config) *Org {
	logger.Get().Info(ctx, "generating synthetic organization",
		logger.Int("members", config.Members),
		logger.Int("messages", config.Messages),
		logger.Int("issues", config.Issues),
	)

	org := &Org{
		Members: generateMembers(config.Members),
	}
	org.Messages = generateMessages(org.Members, config.Messages, config.WindowDays)
	org.Issues = generateIssues(org.Members, config.Issues, config.WindowDays)
	return org
}

// generateMembers creates the directory. Roughly one member in ten is a
// bot, one a guest and one has no profile email, so a run against the mock
// exercises coverage gaps and role classification.
func generateMembers(n int) []member {
	members := make([]member, 0, n)
	for i := 0; i < n; i++ {
		id := "U" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:10])
		handle := fmt.Sprintf("user%03d", i)
		m := member{
			ID:       id,
			Name:     handle,
			RealName: fmt.Sprintf("Synthetic User %03d", i),
			Profile: &memberProfile{
				Email:   handle + "@example.com",
				Image48: "https://avatars.example.com/" + handle + "_48.png",
			},
		}

		switch getRandomInt(memberKindDivisor) {
		case caseRestrictedMember:
			m.IsRestricted = true
		case caseBotMember:
			m.IsBot = true
			m.Profile.Email = ""
		case caseProfilelessMember:
			m.Profile = nil
		}

		members = append(members, m)
	}
	return members
}

// generateMessages attributes n messages to members with a skewed
// distribution: a small set of heavy hitters writes most of the traffic.
func generateMessages(members []member, n, windowDays int) []message {
	if len(members) == 0 {
		return nil
	}

	heavy := int(float64(len(members)) * heavyHitterShare)
	if heavy < 1 {
		heavy = 1
	}

	now := time.Now()
	msgs := make([]message, 0, n)
	for i := 0; i < n; i++ {
		var author member
		if getRandomFloat() < heavyHitterTraffic {
			author = members[getRandomInt(heavy)]
		} else {
			author = members[getRandomInt(len(members))]
		}

		age := getRandomInt(windowDays * secondsPerDay)
		ts := now.Add(-time.Duration(age) * time.Second)
		msgs = append(msgs, message{
			Type: "message",
			User: author.ID,
			Text: fmt.Sprintf("synthetic message %d", i),
			TS:   fmt.Sprintf("%d.%06d", ts.Unix(), i%randomFloatDivisor),
		})
	}
	return msgs
}

// generateIssues attributes n completed issues to members that carry a
// profile email; bots and profileless accounts never complete issues.
func generateIssues(members []member, n, windowDays int) []issue {
	assignable := make([]member, 0, len(members))
	for _, m := range members {
		if m.Profile != nil && m.Profile.Email != "" && !m.IsBot {
			assignable = append(assignable, m)
		}
	}
	if len(assignable) == 0 {
		return nil
	}

	now := time.Now()
	issues := make([]issue, 0, n)
	for i := 0; i < n; i++ {
		assignee := assignable[getRandomInt(len(assignable))]
		age := getRandomInt(windowDays * secondsPerDay)
		issues = append(issues, issue{
			Assignee:    &issueAssignee{Email: assignee.Profile.Email},
			CompletedAt: now.Add(-time.Duration(age) * time.Second).UTC().Format(time.RFC3339),
		})
	}
	return issues
}
