package ingest

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackable-ai/trackable/internal/entity"
)

func TestParseOrderCandidate(t *testing.T) {
	userID := uuid.New()

	t.Run("valid payload", func(t *testing.T) {
		payload := []byte(`{
			"merchant": {"name": "Nike", "domain": "nike.com"},
			"order": {
				"user_id": "` + userID.String() + `",
				"order_number": "NK-1001",
				"status": "shipped",
				"source_type": "email",
				"confidence_score": 0.92,
				"items": [{"name": "Air Zoom", "quantity": 1, "price": {"amount": 129.99, "currency": "USD"}}],
				"total": {"amount": 139.49, "currency": "USD"}
			}
		}`)

		c, err := ParseOrderCandidate(payload)
		require.NoError(t, err)
		assert.Equal(t, "Nike", c.Merchant.Name)
		require.NotNil(t, c.Merchant.Domain)
		assert.Equal(t, "nike.com", *c.Merchant.Domain)
		assert.Equal(t, userID, c.Order.UserID)
		assert.Equal(t, entity.StatusShipped, c.Order.Status)
		assert.Equal(t, entity.SourceEmail, c.Order.SourceType)
		require.Len(t, c.Order.Items, 1)
		require.NotNil(t, c.Order.Total)
		assert.Equal(t, 139.49, c.Order.Total.Amount)
	})

	t.Run("missing merchant name", func(t *testing.T) {
		payload := []byte(`{
			"merchant": {"domain": "nike.com"},
			"order": {"user_id": "` + userID.String() + `", "status": "shipped", "source_type": "email"}
		}`)
		_, err := ParseOrderCandidate(payload)
		assert.Error(t, err)
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		payload := []byte(`{
			"merchant": {"name": "Nike"},
			"order": {"user_id": "` + userID.String() + `", "status": "teleported", "source_type": "email"}
		}`)
		_, err := ParseOrderCandidate(payload)
		assert.Error(t, err)
	})

	t.Run("confidence out of range", func(t *testing.T) {
		payload := []byte(`{
			"merchant": {"name": "Nike"},
			"order": {"user_id": "` + userID.String() + `", "status": "shipped", "source_type": "email", "confidence_score": 1.5}
		}`)
		_, err := ParseOrderCandidate(payload)
		assert.Error(t, err)
	})

	t.Run("malformed currency", func(t *testing.T) {
		payload := []byte(`{
			"merchant": {"name": "Nike"},
			"order": {
				"user_id": "` + userID.String() + `",
				"status": "shipped",
				"source_type": "email",
				"total": {"amount": 10, "currency": "DOLLARS"}
			}
		}`)
		_, err := ParseOrderCandidate(payload)
		assert.Error(t, err)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := ParseOrderCandidate([]byte("order: NK-1001"))
		assert.Error(t, err)
	})
}
