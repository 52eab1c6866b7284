package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the record store.
	DatabaseBackend string

	// Condition distinguishes new from used stock of the same product.
	Condition string

	// ProfileOutcome is the terminal state of a profile reconciliation.
	ProfileOutcome string
)

// All output modes supported.
const (
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
	YAMLOut OutputMode = "yaml"
	CSVOut  OutputMode = "csv"
)

// All record store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // in-memory, lost on exit
)

// All product conditions supported.
const (
	NewCondition  Condition = "new" // default
	UsedCondition Condition = "used"
)

// All profile reconciliation outcomes.
const (
	ProfileExisting ProfileOutcome = "existing"
	ProfileCreated  ProfileOutcome = "created"
	ProfileError    ProfileOutcome = "error"
)

// Table names owned by the remote record store.
const (
	ProfilesTable  = "profiles"
	ProductsTable  = "products"
	CustomersTable = "customers"
	CartsTable     = "carts"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut: {},
	JSONOut: {},
	YAMLOut: {},
	CSVOut:  {},
}

// ValidBackends lists all valid record store backends.
var ValidBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidConditions lists all valid product conditions.
var ValidConditions = map[Condition]struct{}{
	NewCondition:  {},
	UsedCondition: {},
}

// AllTables lists every table in creation order.
var AllTables = []string{ProfilesTable, ProductsTable, CustomersTable, CartsTable}
