package config

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "ORBIT"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ORBIT_DB_DSN"
	EnvDBHost = "ORBIT_DB_HOST"
	EnvDBUser = "ORBIT_DB_USER"
	EnvDBName = "ORBIT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
