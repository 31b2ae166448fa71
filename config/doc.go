// Package config loads xnio configuration with Viper and godotenv.
//
// LoadConfig layers a YAML file (xnio.yml, config/xnio.yml, config.yml),
// an optional .env file and the process environment:
//
//	var cfg config.Config
//	err := config.LoadConfig("xnio", &cfg)
//
// ReadProperty is the narrow accessor the provider locator uses to read the
// single provider-selection key. It falls back to the supplied default on
// any failure.
package config
