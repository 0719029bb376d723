package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/castlemilk/taxpilot/backend/internal/scenario"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubClient_Recommend(t *testing.T) {
	c := NewStubClient()

	t.Run("flags missing deductions and high rate", func(t *testing.T) {
		recs, err := c.Recommend(context.Background(), RecommendationRequest{
			Result: scenario.Result{Breakdown: scenario.Breakdown{
				Deductions:    decimal.Zero,
				EffectiveRate: decimal.RequireFromString("0.35"),
			}},
		})
		require.NoError(t, err)
		assert.Len(t, recs, 2)
	})

	t.Run("falls back to a neutral hint", func(t *testing.T) {
		recs, err := c.Recommend(context.Background(), RecommendationRequest{
			Result: scenario.Result{Breakdown: scenario.Breakdown{
				Deductions:    decimal.NewFromInt(100),
				EffectiveRate: decimal.RequireFromString("0.1"),
			}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"No changes suggested for this scenario."}, recs)
	})
}

func TestStubClient_AnalyzeReceipt(t *testing.T) {
	c := NewStubClient()

	got, err := c.AnalyzeReceipt(context.Background(), Document{Data: []byte("x"), Filename: "uploads/Prisma.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "Prisma", got.Merchant)
	assert.Nil(t, got.Total)
	assert.Equal(t, "stub", got.Raw["source"])

	_, err = c.AnalyzeReceipt(context.Background(), Document{Filename: "empty.jpg"})
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, ErrInvalidDocument, svcErr.Code)
}

func TestStubClient_ParseTaxCardIsNotRetryable(t *testing.T) {
	_, err := NewStubClient().ParseTaxCard(context.Background(), Document{Filename: "card.pdf"})
	require.Error(t, err)
	assert.False(t, IsRetryable(err))
}

func TestStubClient_Chat(t *testing.T) {
	reply, err := NewStubClient().Chat(context.Background(), ChatRequest{Message: "  when is my deadline? "})
	require.NoError(t, err)
	assert.Contains(t, reply.Reply, `"when is my deadline?"`)
	assert.NotEmpty(t, reply.Suggestions)
}
