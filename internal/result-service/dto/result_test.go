package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() DeclareResultRequest {
	return DeclareResultRequest{
		DrawID:        "gali-2026-08-31",
		Market:        "gali",
		WinningNumber: "57",
		DeclaredBy:    "operator",
	}
}

func TestDeclareResultRequest_Valid(t *testing.T) {
	req := validRequest()
	require.NoError(t, req.Validate())

	// "00" e "09" são números vencedores válidos; o zero à esquerda conta.
	for _, n := range []string{"00", "09", "99"} {
		req := validRequest()
		req.WinningNumber = n
		assert.NoError(t, req.Validate(), n)
	}
}

func TestDeclareResultRequest_RejectsBadNumbers(t *testing.T) {
	for _, n := range []string{"", "5", "123", "ab", "5a", "-1", "5.0"} {
		req := validRequest()
		req.WinningNumber = n
		assert.Error(t, req.Validate(), "winning_number %q", n)
	}
}

func TestDeclareResultRequest_RequiredFields(t *testing.T) {
	req := validRequest()
	req.DrawID = ""
	assert.Error(t, req.Validate())

	req = validRequest()
	req.Market = ""
	assert.Error(t, req.Validate())

	req = validRequest()
	req.DeclaredBy = ""
	assert.Error(t, req.Validate())
}
