package config

import (
	"github.com/spf13/viper"
)

// Config is the environment-driven runtime configuration.
type Config struct {
	Port                  string
	AWSRegion             string
	S3Bucket              string
	MatchMinCompatibility float64
	UseMemoryStores       bool
}

// Load reads configuration from the environment with sane defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET_NAME", "")
	v.SetDefault("MATCH_MIN_COMPATIBILITY", 0.2)
	v.SetDefault("USE_MEMORY_STORES", false)

	return &Config{
		Port:                  v.GetString("PORT"),
		AWSRegion:             v.GetString("AWS_REGION"),
		S3Bucket:              v.GetString("S3_BUCKET_NAME"),
		MatchMinCompatibility: v.GetFloat64("MATCH_MIN_COMPATIBILITY"),
		UseMemoryStores:       v.GetBool("USE_MEMORY_STORES"),
	}, nil
}
