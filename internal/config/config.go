package config

type Config struct {
	Db_conn         string `mapstructure:"DB_CONN"`
	Jwt_secret      string `mapstructure:"JWT_SECRET"`
	Openlibrary_url string `mapstructure:"OPENLIBRARY_URL"`
	Host            string `mapstructure:"HOST"`
}
