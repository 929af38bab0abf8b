package constants

const (
	APP_SALESREP        = "salesrep"
	APP_CATALOG_SERVICE = "catalog-service"
	APP_CART_SERVICE    = "cart-service"
	APP_SYNC_AGENT      = "sync-agent"
)

const PLACEHOLDER_IMAGE_URL = "https://placehold.co/600x400?text=No+Image"

const (
	TABLE_PRODUCTS   = "products"
	TABLE_CATEGORIES = "categories"
	TABLE_CART_ITEMS = "cart_items"
)
