package config

// LoadFromEnv reads the optional dotenv file and then the process environment.
func LoadFromEnv(envFile string) (Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return Config{}, err
	}
	return Load(FromEnviron())
}
