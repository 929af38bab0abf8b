package log

const (
	KeyAppName          = "app"
	KeyRequestID        = "requestId"
	KeyProcess          = "process"
	KeyTag              = "tag"
	KeyConfig           = "config"
	KeyTraceID          = "traceId"
	KeySpanID           = "spanId"
	KeyCategoryID       = "categoryId"
	KeyCustomerID       = "customerId"
	KeyProductID        = "productId"
	KeyProducts         = "products"
	KeyProductsCount    = "productsCount"
	KeyCategories       = "categories"
	KeyQuantity         = "quantity"
	KeyExistingQuantity = "existingQuantity"
	KeyStock            = "stock"
	KeyCartItems        = "cartItems"
	KeyCartItemsCount   = "cartItemsCount"
	KeyOrder            = "order"
	KeyOrderID          = "orderId"
	KeyOrderTotal       = "orderTotal"
	KeyTable            = "table"
	KeyTables           = "tables"
	KeyScope            = "scope"
	KeyStorePath        = "storePath"
	KeyURL              = "url"
	KeyStatusCode       = "statusCode"
	KeyInterval         = "interval"
	KeyScheduler        = "scheduler"
	KeyState            = "state"
	KeyQuery            = "query"
	KeyCount            = "count"
	KeyOperation        = "operation"
)
