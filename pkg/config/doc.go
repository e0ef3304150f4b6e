// Package config loads typed application configuration from the process
// environment.
//
// A `.env` file in the working directory is applied once per process through
// github.com/joho/godotenv (a missing file is not an error), and struct fields
// are then populated from `env` tags by github.com/caarlos0/env/v11.
//
// Each package that needs settings declares its own Config struct and the
// composition root loads them:
//
//	type Config struct {
//		Secret string        `env:"JWT_SECRET,required"`
//		TTL    time.Duration `env:"JWT_TTL" envDefault:"168h"`
//	}
//
//	var cfg Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
package config
