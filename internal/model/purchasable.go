package model

// PurchasableType identifies what the checkout is buying.
type PurchasableType string

const (
	PurchasableQuote       PurchasableType = "QUOTE"
	PurchasableCatalogItem PurchasableType = "CATALOG_ITEM"
)
