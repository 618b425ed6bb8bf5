package config

const (
	// EngineMySQL selects gorm.io/driver/mysql.
	EngineMySQL = "mysql"
	// EnginePostgres selects gorm.io/driver/postgres.
	EnginePostgres = "postgres"
	// EngineSQLite selects the pure Go github.com/glebarez/sqlite driver. Name is the file path.
	EngineSQLite = "sqlite"
)

// Engines lists the supported values of DB.GormEngine.
var Engines = []string{EngineMySQL, EnginePostgres, EngineSQLite} //nolint:gochecknoglobals

// DB holds the database configuration settings.
type DB struct {
	Extras       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	GormEngine   string
	MaxOpenConns int
	LogQueries   bool
}
