package directory

// Attribute names for DynamoDB items.
const (
	AttrAccountEmail = "AccountEmail"
	AttrAccountID    = "AccountId"
	AttrAccountName  = "AccountName"
	AttrEnum         = "Enum"
	AttrOwnerAddress = "OwnerAddress"
)

// Global secondary index names.
const (
	AccountEnumIndex = "AccountName-Enum-Index"
	AccountIDIndex   = "AccountId-Index"
)
