package session

import (
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"checkout-gateway/internal/flags"
	"checkout-gateway/internal/model"
)

func mustQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return q
}

func TestDerive_Purchasable(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantType model.PurchasableType
		wantID   string
	}{
		{"quote", "q=quote-1&catalogItemId=cat-9", model.PurchasableQuote, "quote-1"},
		{"catalog item", "catalogItemId=cat-9", model.PurchasableCatalogItem, "cat-9"},
		{"empty quote falls back", "q=&catalogItemId=cat-9", model.PurchasableCatalogItem, "cat-9"},
		{"nothing", "", model.PurchasableCatalogItem, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Derive(mustQuery(t, tt.query), nil)
			assert.Equal(t, tt.wantType, p.PurchasableType)
			assert.Equal(t, tt.wantID, p.PurchasableID)
		})
	}
}

func TestDerive_Fields(t *testing.T) {
	p := Derive(mustQuery(t, "c=client-123&sub=math&grade=9&p=SAVE10"), nil)

	assert.Equal(t, "client-123", p.ClientID)
	assert.Equal(t, "math", p.Subject)
	assert.Equal(t, "9", p.SegmentGrade)
	assert.Equal(t, "SAVE10", p.PromoCode)
}

func TestDerive_ChurnedPromo(t *testing.T) {
	resubmission := flags.Set{
		flags.KeyLeadResubmission: true,
		flags.KeyChurnedPromo:     "WINBACK20",
	}

	tests := []struct {
		name  string
		query string
		flags flags.Set
		want  string
	}{
		{"applied to resubmission", "sub=math&c=client-123", resubmission, "WINBACK20"},
		{"existing param wins", "sub=math&c=client-123&p=EXISTING", resubmission, "EXISTING"},
		{
			"none sentinel",
			"sub=math&c=client-123",
			flags.Set{flags.KeyLeadResubmission: true, flags.KeyChurnedPromo: "none"},
			"",
		},
		{
			"empty flag value",
			"sub=math&c=client-123",
			flags.Set{flags.KeyLeadResubmission: true, flags.KeyChurnedPromo: ""},
			"",
		},
		{
			"resubmission flag off",
			"sub=math&c=client-123",
			flags.Set{flags.KeyLeadResubmission: false, flags.KeyChurnedPromo: "WINBACK20"},
			"",
		},
		{"no subject", "c=client-123", resubmission, ""},
		{"no client", "sub=math", resubmission, ""},
		{"no flags", "sub=math&c=client-123", nil, ""},
		{
			"mistyped flags fall back to defaults",
			"sub=math&c=client-123",
			flags.Set{flags.KeyLeadResubmission: "true", flags.KeyChurnedPromo: 20.0},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Derive(mustQuery(t, tt.query), tt.flags)
			assert.Equal(t, tt.want, p.PromoCode)
		})
	}
}

func TestShouldUsePromoCode(t *testing.T) {
	variant := flags.Set{flags.KeyPromoCodeExperiment: "variant"}
	control := flags.Set{flags.KeyPromoCodeExperiment: "control"}

	tests := []struct {
		name  string
		query string
		flags flags.Set
		want  bool
	}{
		{"catalog item in variant with promo", "catalogItemId=cat-1&p=SAVE10", variant, true},
		{"catalog item in control", "catalogItemId=cat-1&p=SAVE10", control, false},
		{"catalog item without promo", "catalogItemId=cat-1", variant, false},
		{"no experiment flag", "catalogItemId=cat-1&p=SAVE10", nil, false},
		{"quote in variant with promo", "q=quote-1&p=SAVE10", variant, false},
		{
			"quote with every flag set",
			"q=quote-1&sub=math&c=client-1",
			flags.Set{
				flags.KeyPromoCodeExperiment: "variant",
				flags.KeyLeadResubmission:    true,
				flags.KeyChurnedPromo:        "WINBACK20",
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Derive(mustQuery(t, tt.query), tt.flags)
			assert.Equal(t, tt.want, p.ShouldUsePromoCode())
		})
	}
}

func TestUserIDFromToken(t *testing.T) {
	signed := func(claims jwt.Claims) string {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
		require.NoError(t, err)
		return tok
	}

	t.Run("subject", func(t *testing.T) {
		tok := signed(jwt.RegisteredClaims{
			Subject:   "user-42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		})
		id, err := UserIDFromToken(tok)
		require.NoError(t, err, "expiry and signature are not checked")
		assert.Equal(t, "user-42", id)
	})

	t.Run("no subject", func(t *testing.T) {
		_, err := UserIDFromToken(signed(jwt.RegisteredClaims{Issuer: "api"}))
		assert.ErrorIs(t, err, ErrNoSubject)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := UserIDFromToken("not-a-jwt")
		assert.Error(t, err)
	})
}
