package core

import (
	"strings"

	"go.uber.org/zap"
)

// Classifier decides which reply variants an inbound message should get,
// based on three configured sets: business senders, personally allowed
// senders and body keywords. All sets are expected normalized (lowercase,
// trimmed); senders must already be canonicalized with NormalizeAddress.
type Classifier struct {
	bizList   map[string]struct{}
	allowList map[string]struct{}
	keywords  []string
	logger    *zap.Logger
}

// NewClassifier creates a classifier over the configured lists. Entries are
// normalized defensively a second time so hand-edited config still matches.
func NewClassifier(bizList, allowList, keywords []string, logger *zap.Logger) *Classifier {
	c := &Classifier{
		bizList:   make(map[string]struct{}, len(bizList)),
		allowList: make(map[string]struct{}, len(allowList)),
		logger:    logger,
	}
	for _, addr := range bizList {
		if key := NormalizeAddress(addr); key != "" {
			c.bizList[key] = struct{}{}
		}
	}
	for _, addr := range allowList {
		if key := NormalizeAddress(addr); key != "" {
			c.allowList[key] = struct{}{}
		}
	}
	for _, kw := range keywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			c.keywords = append(c.keywords, kw)
		}
	}
	return c
}

// Classify produces the routing decision for one message. It is a pure
// function over the message and the configured sets; it never fails.
//
// Policy (kept exactly as deployed, including the asymmetry):
//   - business-list sender: business reply only
//   - allow-list sender: personal reply only
//   - neither list but a keyword in the body: both replies
//   - an empty body always skips, whatever the sender
func (c *Classifier) Classify(msg *InboundMessage) RoutingDecision {
	if strings.TrimSpace(msg.Body) == "" {
		return RoutingDecision{Reason: ReasonNone}
	}

	_, isBiz := c.bizList[msg.Sender]
	_, isAllowed := c.allowList[msg.Sender]
	hasKeyword := c.matchKeyword(msg.Body)

	// List memberships act independently; a sender on both lists gets both
	// variants, with the business signal winning the recorded reason.
	decision := RoutingDecision{Reason: ReasonNone}
	if isBiz {
		decision.WantsBusiness = true
		decision.Reason = ReasonBizList
	}
	if isAllowed {
		decision.WantsPersonal = true
		if decision.Reason == ReasonNone {
			decision.Reason = ReasonAllowList
		}
	}
	if !isBiz && !isAllowed && hasKeyword {
		decision.WantsBusiness = true
		decision.WantsPersonal = true
		decision.Reason = ReasonKeyword
	}

	c.logger.Debug("Classified message",
		zap.String("sender", msg.Sender),
		zap.String("reason", decision.Reason.String()),
		zap.Bool("wants_business", decision.WantsBusiness),
		zap.Bool("wants_personal", decision.WantsPersonal))

	return decision
}

func (c *Classifier) matchKeyword(body string) bool {
	lowered := strings.ToLower(body)
	for _, kw := range c.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
