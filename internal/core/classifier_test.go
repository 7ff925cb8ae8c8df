package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClassifier() *Classifier {
	return NewClassifier(
		[]string{"biz@firm.com"},
		[]string{"jdoe@gmail.com"},
		[]string{"oferta", "notariusz"},
		zap.NewNop(),
	)
}

func msg(sender, body string) *InboundMessage {
	return &InboundMessage{Sender: sender, Subject: "Hi", Body: body}
}

func TestClassifyBusinessSender(t *testing.T) {
	d := newTestClassifier().Classify(msg("biz@firm.com", "hello"))
	assert.Equal(t, ReasonBizList, d.Reason)
	assert.True(t, d.WantsBusiness)
	assert.False(t, d.WantsPersonal)
}

func TestClassifyAllowedSender(t *testing.T) {
	d := newTestClassifier().Classify(msg("jdoe@gmail.com", "hello"))
	assert.Equal(t, ReasonAllowList, d.Reason)
	assert.False(t, d.WantsBusiness)
	assert.True(t, d.WantsPersonal)
}

func TestClassifyKeywordSendsBoth(t *testing.T) {
	d := newTestClassifier().Classify(msg("stranger@example.com", "Czy notariusz przyjmuje w piątki?"))
	assert.Equal(t, ReasonKeyword, d.Reason)
	assert.True(t, d.WantsBusiness)
	assert.True(t, d.WantsPersonal)
}

func TestClassifyKeywordDoesNotOverrideLists(t *testing.T) {
	// A list member whose body also matches a keyword keeps the list policy.
	d := newTestClassifier().Classify(msg("biz@firm.com", "oferta wspolpracy"))
	assert.Equal(t, ReasonBizList, d.Reason)
	assert.True(t, d.WantsBusiness)
	assert.False(t, d.WantsPersonal)
}

func TestClassifyNoSignal(t *testing.T) {
	d := newTestClassifier().Classify(msg("stranger@example.com", "just saying hi"))
	assert.Equal(t, ReasonNone, d.Reason)
	assert.False(t, d.WantsBusiness)
	assert.False(t, d.WantsPersonal)
}

func TestClassifyEmptyBodyAlwaysSkips(t *testing.T) {
	c := newTestClassifier()
	for _, sender := range []string{"biz@firm.com", "jdoe@gmail.com", "stranger@example.com"} {
		for _, body := range []string{"", "   ", "\n\t "} {
			d := c.Classify(msg(sender, body))
			assert.Equal(t, ReasonNone, d.Reason, "sender %s body %q", sender, body)
			assert.False(t, d.WantsBusiness)
			assert.False(t, d.WantsPersonal)
		}
	}
}

func TestClassifierNormalizesListEntries(t *testing.T) {
	c := NewClassifier([]string{" B.IZ+x@Gmail.com "}, nil, []string{"  "}, zap.NewNop())
	d := c.Classify(msg("biz@gmail.com", "hello"))
	assert.Equal(t, ReasonBizList, d.Reason)
	// Blank keywords never match.
	d = c.Classify(msg("other@example.com", "anything at all"))
	assert.Equal(t, ReasonNone, d.Reason)
}

func TestClassifyKeywordCaseInsensitive(t *testing.T) {
	d := newTestClassifier().Classify(msg("stranger@example.com", "OFERTA specjalna"))
	assert.Equal(t, ReasonKeyword, d.Reason)
}
