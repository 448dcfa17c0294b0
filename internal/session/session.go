// Package session derives the checkout session from URL query parameters and
// the current feature-flag snapshot.
package session

import (
	"net/url"

	"checkout-gateway/internal/flags"
	"checkout-gateway/internal/model"
)

// Query parameters read by Derive.
const (
	ParamQuoteID       = "q"
	ParamCatalogItemID = "catalogItemId"
	ParamPromoCode     = "p"
	ParamClientID      = "c"
	ParamSubject       = "sub"
	ParamSegmentGrade  = "grade"
)

// Params is the derived, read-only checkout session. Empty strings mean the
// value is absent.
type Params struct {
	ClientID        string                `json:"clientId,omitempty"`
	PurchasableID   string                `json:"purchasableId,omitempty"`
	PurchasableType model.PurchasableType `json:"purchasableType"`
	PromoCode       string                `json:"promoCode,omitempty"`
	SegmentGrade    string                `json:"segmentGrade,omitempty"`
	Subject         string                `json:"subject,omitempty"`

	flags flags.Set
}

// Derive computes the session for query under the flag snapshot fs.
func Derive(query url.Values, fs flags.Set) Params {
	p := Params{
		ClientID:     query.Get(ParamClientID),
		PromoCode:    query.Get(ParamPromoCode),
		SegmentGrade: query.Get(ParamSegmentGrade),
		Subject:      query.Get(ParamSubject),
		flags:        fs,
	}

	if quoteID := query.Get(ParamQuoteID); quoteID != "" {
		p.PurchasableType = model.PurchasableQuote
		p.PurchasableID = quoteID
	} else {
		p.PurchasableType = model.PurchasableCatalogItem
		p.PurchasableID = query.Get(ParamCatalogItemID)
	}

	if p.PromoCode == "" && p.IsLeadResubmission() {
		if promo := fs.String(flags.KeyChurnedPromo, ""); promo != "" && promo != flags.ChurnedPromoNone {
			p.PromoCode = promo
		}
	}

	return p
}

// IsLeadResubmission reports whether a returning lead is resubmitting:
// subject and client ID are both known and the resubmission flag is on.
func (p Params) IsLeadResubmission() bool {
	return p.Subject != "" && p.ClientID != "" && p.flags.Bool(flags.KeyLeadResubmission, false)
}

// ShouldUsePromoCode reports whether the promo code applies to this purchase.
// Quotes are already priced and never take a promo code.
func (p Params) ShouldUsePromoCode() bool {
	return p.PurchasableType == model.PurchasableCatalogItem &&
		p.flags.String(flags.KeyPromoCodeExperiment, "") == flags.PromoExperimentVariant &&
		p.PromoCode != ""
}
